package live

import (
	"context"
	"errors"
	"time"
)

// ErrNoState returned when a socket has no stored state.
var ErrNoState = errors.New("no state found for socket ID")

// SocketState is what survives between the page load and the websocket
// connection: the rendered page and the mounted data.
type SocketState struct {
	Render []byte
	Data   any
}

// SocketStateStore keeps socket state for a limited time.
type SocketStateStore interface {
	// Claim returns the state for a socket and removes it, so that only
	// one caller ever receives it.
	Claim(SocketID) (SocketState, error)
	Set(SocketID, SocketState, time.Duration) error
	Delete(SocketID) error
}

// EvictFunc is called with state that went stale without being deleted.
type EvictFunc func(ID SocketID, state SocketState)

// MemoryStoreConfig configures a memory store.
type MemoryStoreConfig func(m *MemorySocketStateStore)

// WithJanitorFrequency sets how often stale state is looked for.
func WithJanitorFrequency(d time.Duration) MemoryStoreConfig {
	return func(m *MemorySocketStateStore) {
		m.janitorFrequency = d
	}
}

// WithEvict sets the function called for every stale entry.
func WithEvict(fn EvictFunc) MemoryStoreConfig {
	return func(m *MemorySocketStateStore) {
		m.evict = fn
	}
}

var _ SocketStateStore = &MemorySocketStateStore{}

// MemorySocketStateStore an in memory store.
type MemorySocketStateStore struct {
	janitorFrequency time.Duration
	evict            EvictFunc

	claims chan mssClaimop
	sets   chan mssSetop
	dels   chan mssDelop
	clean  chan time.Time
}

// NewMemorySocketStateStore starts a store which lives until ctx is done.
func NewMemorySocketStateStore(ctx context.Context, configs ...MemoryStoreConfig) *MemorySocketStateStore {
	m := &MemorySocketStateStore{
		janitorFrequency: 5 * time.Second,
		claims:           make(chan mssClaimop),
		sets:             make(chan mssSetop),
		dels:             make(chan mssDelop),
		clean:            make(chan time.Time),
	}
	for _, conf := range configs {
		conf(m)
	}
	go m.operate(ctx)
	go m.janitor(ctx)
	return m
}

// Claim state for a socket, taking it out of the store.
func (m *MemorySocketStateStore) Claim(ID SocketID) (SocketState, error) {
	op := mssClaimop{
		ID:   ID,
		resp: make(chan SocketState, 1),
		err:  make(chan error, 1),
	}
	m.claims <- op
	select {
	case state := <-op.resp:
		return state, nil
	case err := <-op.err:
		return SocketState{}, err
	}
}

// Set state for a socket, it is stale after ttl.
func (m *MemorySocketStateStore) Set(ID SocketID, state SocketState, ttl time.Duration) error {
	op := mssSetop{
		ID:      ID,
		State:   state,
		StaleAt: time.Now().Add(ttl),
		resp:    make(chan struct{}, 1),
	}
	m.sets <- op
	<-op.resp
	return nil
}

// Delete state for a socket. The evict function is not called.
func (m *MemorySocketStateStore) Delete(ID SocketID) error {
	op := mssDelop{
		ID:   ID,
		resp: make(chan struct{}, 1),
	}
	m.dels <- op
	<-op.resp
	return nil
}

type mss struct {
	stale time.Time
	state SocketState
}

type mssClaimop struct {
	ID SocketID

	resp chan SocketState
	err  chan error
}

type mssSetop struct {
	ID      SocketID
	State   SocketState
	StaleAt time.Time

	resp chan struct{}
}

type mssDelop struct {
	ID SocketID

	resp chan struct{}
}

func (m *MemorySocketStateStore) operate(ctx context.Context) {
	store := map[SocketID]mss{}
	for {
		select {
		case claim := <-m.claims:
			ss, ok := store[claim.ID]
			if !ok {
				claim.err <- ErrNoState
				continue
			}
			delete(store, claim.ID)
			claim.resp <- ss.state
		case set := <-m.sets:
			store[set.ID] = mss{
				stale: set.StaleAt,
				state: set.State,
			}
			set.resp <- struct{}{}
		case del := <-m.dels:
			delete(store, del.ID)
			del.resp <- struct{}{}
		case now := <-m.clean:
			stale := map[SocketID]SocketState{}
			for k, v := range store {
				if now.Before(v.stale) {
					continue
				}
				stale[k] = v.state
				delete(store, k)
			}
			if m.evict != nil && len(stale) > 0 {
				// Evict outside the loop so the callback may use the store.
				go func() {
					for k, v := range stale {
						m.evict(k, v)
					}
				}()
			}
		case <-ctx.Done():
			return
		}
	}
}

func (m *MemorySocketStateStore) janitor(ctx context.Context) {
	janitor := time.NewTicker(m.janitorFrequency)
	defer janitor.Stop()
	for {
		select {
		case now := <-janitor.C:
			select {
			case m.clean <- now:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

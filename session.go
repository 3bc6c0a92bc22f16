package live

import (
	"encoding/gob"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/rs/xid"
)

// Session what we will actually store across page loads.
type Session struct {
	ID string
}

// NewSession create a new session.
func NewSession() Session {
	return Session{ID: NewID()}
}

// ValueKey type for session keys.
type ValueKey string

// Session keys.
const (
	SessionKey ValueKey = "s"
)

// NewID returns a new ID.
func NewID() string {
	return xid.New().String()
}

// HttpSessionStore carries the session from the page load to the websocket
// connection that follows it.
type HttpSessionStore interface {
	Get(*http.Request) (Session, error)
	Save(http.ResponseWriter, *http.Request, Session) error
}

var _ HttpSessionStore = &CookieStore{}

// CookieStore a session store backed by a signed cookie.
type CookieStore struct {
	Store       *sessions.CookieStore
	sessionName string
}

// NewCookieStore create a cookie store named sessionName, signed with the
// given key pairs.
func NewCookieStore(sessionName string, keyPairs ...[]byte) *CookieStore {
	s := sessions.NewCookieStore(keyPairs...)
	s.Options.Path = "/"
	s.Options.HttpOnly = true
	s.Options.SameSite = http.SameSiteStrictMode
	return &CookieStore{
		Store:       s,
		sessionName: sessionName,
	}
}

// Get a session. A missing or unreadable cookie gives a fresh session.
func (c CookieStore) Get(r *http.Request) (Session, error) {
	session, err := c.Store.Get(r, c.sessionName)
	if err != nil {
		return NewSession(), nil
	}
	v, ok := session.Values[SessionKey]
	if !ok {
		return NewSession(), nil
	}
	sess, ok := v.(Session)
	if !ok {
		return NewSession(), nil
	}
	return sess, nil
}

// Save a session.
func (c CookieStore) Save(w http.ResponseWriter, r *http.Request, s Session) error {
	session, _ := c.Store.Get(r, c.sessionName)
	session.Values[SessionKey] = s
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("could not save session: %w", err)
	}
	return nil
}

func init() {
	gob.Register(ValueKey(""))
	gob.Register(Session{})
}

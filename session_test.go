package live

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestStore a test session store.
type TestStore struct {
	s Session
}

// NewTestStore return a new test store.
func NewTestStore(ID string) *TestStore {
	return &TestStore{
		s: Session{ID: ID},
	}
}

// Get a session.
func (t *TestStore) Get(r *http.Request) (Session, error) {
	return t.s, nil
}

// Save a session.
func (t *TestStore) Save(w http.ResponseWriter, r *http.Request, session Session) error {
	t.s = session
	return nil
}

func TestCookieStoreRoundTrip(t *testing.T) {
	store := NewCookieStore("_test", []byte("weak-secret"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := store.Save(rec, req, Session{ID: "abc"}); err != nil {
		t.Fatal(err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	s, err := store.Get(next)
	if err != nil {
		t.Fatal(err)
	}
	if s.ID != "abc" {
		t.Errorf("expected session abc, got %q", s.ID)
	}
}

func TestCookieStoreFreshSession(t *testing.T) {
	store := NewCookieStore("_test", []byte("weak-secret"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "_test", Value: "garbage"})
	s, err := store.Get(req)
	if err != nil {
		t.Fatal(err)
	}
	if s.ID == "" {
		t.Error("expected a fresh session ID")
	}
}

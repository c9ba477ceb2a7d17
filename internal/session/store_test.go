package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codr1/WarungWareg/internal/testutil"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestStore(t *testing.T, secret string, clock Clock) *Store {
	t.Helper()
	database := testutil.NewTestDB(t)
	store, err := NewStore(database.DB, secret, Options{TTL: time.Hour, Clock: clock})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

// requestWithCookies replays the Set-Cookie headers from rec onto a new request.
func requestWithCookies(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSetAndReadToken(t *testing.T) {
	store := newTestStore(t, "secret", &fakeClock{now: time.Unix(1_700_000_000, 0)})

	rec := httptest.NewRecorder()
	if err := store.SetToken(rec, httptest.NewRequest(http.MethodPost, "/login", nil), "abc.def"); err != nil {
		t.Fatalf("set token: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName {
		t.Fatalf("expected session cookie, got %+v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Fatalf("expected HttpOnly cookie")
	}
	if cookies[0].Value == "abc.def" {
		t.Fatalf("cookie must not carry the bearer token")
	}

	token, err := store.Token(requestWithCookies(rec))
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if token != "abc.def" {
		t.Fatalf("expected abc.def, got %q", token)
	}
}

func TestTokenMissingCookie(t *testing.T) {
	store := newTestStore(t, "secret", nil)

	_, err := store.Token(httptest.NewRequest(http.MethodGet, "/", nil))
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestTokenUnknownSession(t *testing.T) {
	store := newTestStore(t, "secret", nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "forged"})
	_, err := store.Token(req)
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestTokenExpires(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	store := newTestStore(t, "secret", clock)

	rec := httptest.NewRecorder()
	if err := store.SetToken(rec, nil, "tok"); err != nil {
		t.Fatalf("set token: %v", err)
	}

	clock.now = clock.now.Add(time.Hour + time.Second)
	_, err := store.Token(requestWithCookies(rec))
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken after ttl, got %v", err)
	}
}

func TestClearToken(t *testing.T) {
	store := newTestStore(t, "secret", nil)

	rec := httptest.NewRecorder()
	if err := store.SetToken(rec, nil, "tok"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	req := requestWithCookies(rec)

	clearRec := httptest.NewRecorder()
	if err := store.ClearToken(clearRec, req); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	cleared := clearRec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Fatalf("expected expired cookie, got %+v", cleared)
	}

	if _, err := store.Token(req); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken after clear, got %v", err)
	}
}

func TestSetTokenReplacesPreviousSession(t *testing.T) {
	store := newTestStore(t, "secret", nil)

	first := httptest.NewRecorder()
	if err := store.SetToken(first, nil, "old"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	oldReq := requestWithCookies(first)

	second := httptest.NewRecorder()
	if err := store.SetToken(second, oldReq, "new"); err != nil {
		t.Fatalf("set token: %v", err)
	}

	if _, err := store.Token(oldReq); !errors.Is(err, ErrNoToken) {
		t.Fatalf("old session should be gone, got %v", err)
	}
	token, err := store.Token(requestWithCookies(second))
	if err != nil || token != "new" {
		t.Fatalf("expected new token, got %q, %v", token, err)
	}
}

func TestTokenSealedUnderOtherSecret(t *testing.T) {
	database := testutil.NewTestDB(t)
	writer, err := NewStore(database.DB, "one", Options{})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	reader, err := NewStore(database.DB, "two", Options{})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	rec := httptest.NewRecorder()
	if err := writer.SetToken(rec, nil, "tok"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if _, err := reader.Token(requestWithCookies(rec)); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken with rotated secret, got %v", err)
	}
}

func TestPurgeExpired(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	store := newTestStore(t, "secret", clock)

	for i := 0; i < 3; i++ {
		if err := store.SetToken(httptest.NewRecorder(), nil, "tok"); err != nil {
			t.Fatalf("set token: %v", err)
		}
	}
	clock.now = clock.now.Add(2 * time.Hour)
	live := httptest.NewRecorder()
	if err := store.SetToken(live, nil, "live"); err != nil {
		t.Fatalf("set token: %v", err)
	}

	purged, err := store.PurgeExpired(context.Background())
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 3 {
		t.Fatalf("expected 3 purged, got %d", purged)
	}
	if token, err := store.Token(requestWithCookies(live)); err != nil || token != "live" {
		t.Fatalf("live session lost: %q, %v", token, err)
	}
}

func TestNewStoreRequiresSecret(t *testing.T) {
	database := testutil.NewTestDB(t)
	if _, err := NewStore(database.DB, "", Options{}); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestTokenContext(t *testing.T) {
	ctx := WithToken(context.Background(), "tok")
	token, ok := TokenFromContext(ctx)
	if !ok || token != "tok" {
		t.Fatalf("expected tok, got %q %v", token, ok)
	}
	if _, ok := TokenFromContext(context.Background()); ok {
		t.Fatalf("expected no token on empty context")
	}
}

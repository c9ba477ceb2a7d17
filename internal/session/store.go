// Package session keeps the backend bearer token on the server. The browser
// only carries an opaque session id cookie; the token itself is sealed with a
// key derived from APP_SECRET_KEY and stored in sqlite.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	CookieName       = "wareg_session"
	DefaultTTL       = 24 * time.Hour
	sessionIDBytes   = 32
	nonceBytes       = 24
	keyDerivationTag = "wareg session token v1"
)

var (
	// ErrNoToken is returned when the request carries no live session.
	ErrNoToken = errors.New("no session token")

	errSecretMissing = errors.New("session secret is required")
)

// TokenStore is the single place the backend token is read, written and
// cleared. Handlers depend on this interface only.
type TokenStore interface {
	Token(r *http.Request) (string, error)
	SetToken(w http.ResponseWriter, r *http.Request, token string) error
	ClearToken(w http.ResponseWriter, r *http.Request) error
}

// Clock lets tests control expiry.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type Options struct {
	TTL          time.Duration
	SecureCookie bool
	Clock        Clock
}

// Store is the sqlite-backed TokenStore.
type Store struct {
	db     *sql.DB
	key    [32]byte
	ttl    time.Duration
	secure bool
	clock  Clock
}

var _ TokenStore = (*Store)(nil)

func NewStore(db *sql.DB, secret string, opts Options) (*Store, error) {
	if db == nil {
		return nil, errors.New("session store requires a database")
	}
	if secret == "" {
		return nil, errSecretMissing
	}

	s := &Store{
		db:     db,
		ttl:    opts.TTL,
		secure: opts.SecureCookie,
		clock:  opts.Clock,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if s.clock == nil {
		s.clock = systemClock{}
	}

	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyDerivationTag))
	if _, err := io.ReadFull(kdf, s.key[:]); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return s, nil
}

// Token returns the bearer token for the request's session, or ErrNoToken.
func (s *Store) Token(r *http.Request) (string, error) {
	if r == nil {
		return "", ErrNoToken
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", ErrNoToken
	}

	var sealed []byte
	var expiresAt int64
	err = s.db.QueryRowContext(r.Context(),
		`SELECT sealed_token, expires_at FROM sessions WHERE id_hash = ?`,
		hashID(cookie.Value),
	).Scan(&sealed, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}

	if expiresAt <= s.clock.Now().Unix() {
		if err := s.delete(r.Context(), cookie.Value); err != nil {
			return "", err
		}
		return "", ErrNoToken
	}

	token, ok := s.open(sealed)
	if !ok {
		// Sealed under a different secret; treat as logged out.
		return "", ErrNoToken
	}
	return token, nil
}

// SetToken starts a fresh session for token, replacing any session the
// request already had.
func (s *Store) SetToken(w http.ResponseWriter, r *http.Request, token string) error {
	if w == nil {
		return errors.New("session requires response writer")
	}
	if token == "" {
		return errors.New("session token is empty")
	}

	ctx := context.Background()
	if r != nil {
		ctx = r.Context()
		if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
			if err := s.delete(ctx, cookie.Value); err != nil {
				return err
			}
		}
	}

	id, err := newSessionID()
	if err != nil {
		return err
	}
	sealed, err := s.seal(token)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	expiresAt := now.Add(s.ttl)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id_hash, sealed_token, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		hashID(id), sealed, now.Unix(), expiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
		MaxAge:   int(s.ttl.Seconds()),
	})
	return nil
}

// ClearToken removes the session row and expires the cookie.
func (s *Store) ClearToken(w http.ResponseWriter, r *http.Request) error {
	var err error
	if r != nil {
		if cookie, cookieErr := r.Cookie(CookieName); cookieErr == nil && cookie.Value != "" {
			err = s.delete(r.Context(), cookie.Value)
		}
	}
	if w != nil {
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
		})
	}
	return err
}

// PurgeExpired deletes every expired session and reports how many went.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, s.clock.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id_hash = ?`, hashID(id)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Store) seal(token string) ([]byte, error) {
	var nonce [nonceBytes]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("session nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], []byte(token), &nonce, &s.key), nil
}

func (s *Store) open(sealed []byte) (string, bool) {
	if len(sealed) < nonceBytes+secretbox.Overhead {
		return "", false
	}
	var nonce [nonceBytes]byte
	copy(nonce[:], sealed[:nonceBytes])
	plain, ok := secretbox.Open(nil, sealed[nonceBytes:], &nonce, &s.key)
	if !ok {
		return "", false
	}
	return string(plain), true
}

func newSessionID() (string, error) {
	id := make([]byte, sessionIDBytes)
	if _, err := rand.Read(id); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(id), nil
}

// hashID keeps raw session ids out of the database.
func hashID(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}

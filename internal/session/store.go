// Package session keeps per-client state in a signed and encrypted cookie.
package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/hkdf"

	"github.com/thebtf/webtools/pkg/models"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "session"

	habitsKey = "habits"

	hashKeyLen  = 64 // HMAC-SHA256
	blockKeyLen = 32 // AES-256
)

// ErrEmptySecret is returned by NewStore when no signing secret is configured.
var ErrEmptySecret = errors.New("session secret is empty")

// Options configures a Store.
type Options struct {
	Secret string
	MaxAge time.Duration
	Secure bool
}

// Store reads and writes the habit list held in the session cookie.
//
// Every write replaces the whole list. The cookie is re-issued with a full
// MaxAge on each write, giving a rolling expiry.
type Store struct {
	cookies *sessions.CookieStore
}

// NewStore derives the cookie keys from opts.Secret and returns a Store.
func NewStore(opts Options) (*Store, error) {
	if opts.Secret == "" {
		return nil, ErrEmptySecret
	}

	hashKey, err := deriveKey(opts.Secret, "webtools session hash", hashKeyLen)
	if err != nil {
		return nil, err
	}
	blockKey, err := deriveKey(opts.Secret, "webtools session block", blockKeyLen)
	if err != nil {
		return nil, err
	}

	cookies := sessions.NewCookieStore(hashKey, blockKey)
	cookies.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	// Sets both the cookie MaxAge and the codec's timestamp check.
	cookies.MaxAge(int(opts.MaxAge.Seconds()))

	return &Store{cookies: cookies}, nil
}

// deriveKey expands secret into a key of length n with HKDF-SHA256.
func deriveKey(secret, info string, n int) ([]byte, error) {
	key := make([]byte, n)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", info, err)
	}
	return key, nil
}

// get returns the request's session. A cookie that fails verification or
// has expired is replaced by a fresh, empty session.
func (s *Store) get(r *http.Request) *sessions.Session {
	sess, err := s.cookies.Get(r, CookieName)
	if err != nil {
		var cerr securecookie.Error
		if errors.As(err, &cerr) && cerr.IsDecode() {
			zerolog.Ctx(r.Context()).Debug().Err(err).Msg("Discarding invalid session cookie")
		} else {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Failed to read session cookie")
		}
	}
	return sess
}

// Habits returns the habit list stored in the request's session. It never
// returns nil.
func (s *Store) Habits(r *http.Request) []models.Habit {
	sess := s.get(r)

	raw, ok := sess.Values[habitsKey].(string)
	if !ok || raw == "" {
		return []models.Habit{}
	}

	var habits []models.Habit
	if err := json.Unmarshal([]byte(raw), &habits); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Discarding malformed habit list")
		return []models.Habit{}
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	return habits
}

// SaveHabits stores habits in the session and writes the cookie.
func (s *Store) SaveHabits(w http.ResponseWriter, r *http.Request, habits []models.Habit) error {
	if habits == nil {
		habits = []models.Habit{}
	}
	data, err := json.Marshal(habits)
	if err != nil {
		return fmt.Errorf("encode habits: %w", err)
	}

	sess := s.get(r)
	sess.Values[habitsKey] = string(data)
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Touch re-issues the session cookie unchanged, extending its expiry.
func (s *Store) Touch(w http.ResponseWriter, r *http.Request) error {
	if err := s.get(r).Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

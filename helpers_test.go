package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	passwordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

const (
	testAdminUser     = "zach"
	testAdminPassword = "correct horse"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Environment:       "test",
		Port:              0,
		LogLevel:          "disabled",
		ShutdownTimeout:   time.Second,
		StaticDir:         t.TempDir(),
		StorageBackend:    storageMemory,
		MaxSignatureBytes: 1024,
		AdminUsername:     testAdminUser,
		AdminPassword:     testAdminPassword,
		AdminSecret:       "test-secret",
	}
}

// fakeMailer records what would have been sent.
type fakeMailer struct {
	err  error
	sent []ContactMessage
}

func (m *fakeMailer) Send(ctx context.Context, msg ContactMessage) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newTestServer(t *testing.T, cfg *Config, store Storage) *server {
	t.Helper()
	srv, err := newServer(context.Background(), cfg, zerolog.Nop(), store, &fakeMailer{})
	require.NoError(t, err)
	return srv
}

// newBareServer skips the admin seeding, for stores that only answer the
// queries a test expects.
func newBareServer(t *testing.T, store Storage) *server {
	t.Helper()
	registerValidators()
	s := &server{
		cfg:     testConfig(t),
		log:     zerolog.Nop(),
		store:   store,
		mailer:  &fakeMailer{},
		privacy: newIPHasher(),
	}
	s.engine = s.routes()
	return s
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

// failingStore breaks every entry operation but keeps users working so the
// server can still seed its admin account.
type failingStore struct {
	*memStorage
}

var errStoreDown = errors.New("store unavailable")

func (f *failingStore) CreateEntry(ctx context.Context, draft EntryDraft) (*GuestbookEntry, error) {
	return nil, errStoreDown
}

func (f *failingStore) ListEntries(ctx context.Context) ([]*GuestbookEntry, error) {
	return nil, errStoreDown
}

func (f *failingStore) GetEntry(ctx context.Context, id int64) (*GuestbookEntry, error) {
	return nil, errStoreDown
}

// steppingClock returns start, start+step, start+2*step, ...
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(step)
		return now
	}
}

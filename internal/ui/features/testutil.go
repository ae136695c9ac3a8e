// Package features provides shared test utilities for portal handler
// tests.
package features

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/townworks/townledger/internal/auth"
	"github.com/townworks/townledger/internal/ledger"
	"github.com/townworks/townledger/internal/store"
	"github.com/townworks/townledger/internal/testutil"
	"github.com/townworks/townledger/internal/ui/features/common"
	"github.com/townworks/townledger/internal/ui/notifier"
	"github.com/townworks/townledger/internal/ui/router"
)

// TestFixture holds everything a portal handler test needs: an
// in-memory store, the ledger service over it, seeded accounts, and a
// fully routed handler.
type TestFixture struct {
	Store        *store.SQLiteStore
	Ledger       *ledger.Service
	Auth         *auth.Manager
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
	Handler      http.Handler

	t *testing.T
}

// SetupTestFixture builds a fixture with migrated in-memory storage and
// two seeded accounts: admin/admintest and clerk/clerktest.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	st := store.NewSQLiteStore(logger)
	require.NoError(t, st.Open(":memory:"))
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate())

	svc := ledger.NewService(st, ledger.Config{}, logger)
	manager := auth.NewManager(st)

	ctx := t.Context()
	_, err := manager.CreateAccount(ctx, "admin", "admintest", auth.RoleAdmin)
	require.NoError(t, err)
	_, err = manager.CreateAccount(ctx, "clerk", "clerktest", auth.RoleUser)
	require.NoError(t, err)

	sessionStore := sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
	notify := notifier.New()

	mux := chi.NewMux()
	require.NoError(t, router.SetupRoutes(mux, svc, st, manager, sessionStore, notify))

	return &TestFixture{
		Store:        st,
		Ledger:       svc,
		Auth:         manager,
		Notifier:     notify,
		SessionStore: sessionStore,
		Handler:      mux,
		t:            t,
	}
}

// SessionCookie returns a session cookie for the given account, built
// the same way a successful login builds it.
func (f *TestFixture) SessionCookie(username, role string) *http.Cookie {
	f.t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	id := common.Identity{Username: username, Role: role}
	require.NoError(f.t, common.SignIn(rec, req, f.SessionStore, id))

	cookies := rec.Result().Cookies()
	require.NotEmpty(f.t, cookies)
	return cookies[0]
}

// AdminCookie returns a session cookie for the seeded admin account.
func (f *TestFixture) AdminCookie() *http.Cookie {
	return f.SessionCookie("admin", auth.RoleAdmin)
}

// ClerkCookie returns a session cookie for the seeded read-only account.
func (f *TestFixture) ClerkCookie() *http.Cookie {
	return f.SessionCookie("clerk", auth.RoleUser)
}

// Do routes a request through the portal handler and returns the
// response.
func (f *TestFixture) Do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	f.t.Helper()
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.Handler.ServeHTTP(rec, req)
	return rec
}

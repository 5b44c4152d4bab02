package twitter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/dghubble/oauth1"
	"github.com/pysugar/social-nexus/internal/auth"
	"github.com/pysugar/social-nexus/internal/config"
	"github.com/pysugar/social-nexus/internal/connect"
	"github.com/pysugar/social-nexus/internal/db"
	"github.com/pysugar/social-nexus/internal/db/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeTwitter stands in for the request-token, access-token, and user-lookup
// endpoints.
func fakeTwitter(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/request_token", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
		fmt.Fprint(w, "oauth_token=req-token&oauth_token_secret=req-secret&oauth_callback_confirmed=true")
	})
	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
		fmt.Fprint(w, "oauth_token=access-token&oauth_token_secret=access-secret")
	})
	mux.HandleFunc("/2/users/me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"id":"tw-100","username":"test_handle"}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestConnector(t *testing.T, srv *httptest.Server) (*Connector, *gorm.DB, *connect.MemoryHandshakeStore) {
	t.Helper()
	gdb, err := db.InitDB("file::memory:")
	require.NoError(t, err)
	store := connect.NewMemoryHandshakeStore(0)
	conn := NewConnector(gdb, store, config.Twitter{
		ConsumerKey:    "consumer-key",
		ConsumerSecret: "consumer-secret",
		CallbackURL:    "http://localhost:8080/twitter/callback",
	}, "http://frontend.test")
	if srv != nil {
		conn.endpoint = oauth1.Endpoint{
			RequestTokenURL: srv.URL + "/oauth/request_token",
			AuthorizeURL:    srv.URL + "/oauth/authorize",
			AccessTokenURL:  srv.URL + "/oauth/access_token",
		}
		conn.userLookup = srv.URL + "/2/users/me"
	}
	return conn, gdb, store
}

func TestLoginHandler_StoresOnePendingEntry(t *testing.T) {
	conn, _, store := newTestConnector(t, fakeTwitter(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/twitter/login", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), "user-1"))
	conn.LoginHandler()(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AuthURL string `json:"auth_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	parsed, err := url.Parse(resp.AuthURL)
	require.NoError(t, err)
	require.Equal(t, "req-token", parsed.Query().Get("oauth_token"))
	// Only the public token rides the redirect.
	require.NotContains(t, resp.AuthURL, "req-secret")

	require.Equal(t, 1, store.Len())
	h, ok := store.Take("req-token")
	require.True(t, ok)
	require.Equal(t, "req-secret", h.Secret)
	require.Equal(t, "user-1", h.UserID)
}

func TestLoginHandler_MissingCredentials(t *testing.T) {
	conn, _, _ := newTestConnector(t, nil)
	conn.cfg = config.Twitter{}

	rec := httptest.NewRecorder()
	conn.LoginHandler()(rec, httptest.NewRequest(http.MethodGet, "/twitter/login", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "consumer credentials")
}

func redirectQuery(t *testing.T, rec *httptest.ResponseRecorder) url.Values {
	t.Helper()
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	return loc.Query()
}

func TestCallback_UnknownTokenLeavesStoreUnchanged(t *testing.T) {
	conn, gdb, store := newTestConnector(t, fakeTwitter(t))
	store.Put("issued", connect.Handshake{Secret: "s", UserID: "user-1"})

	rec := httptest.NewRecorder()
	conn.CallbackHandler()(rec, httptest.NewRequest(http.MethodGet,
		"/twitter/callback?oauth_token=never-issued&oauth_verifier=v", nil))

	q := redirectQuery(t, rec)
	require.Equal(t, "error", q.Get("twitter"))
	require.Equal(t, invalidSessionMessage, q.Get("message"))
	require.Equal(t, 1, store.Len(), "pending store must be unchanged")

	_, err := db.GetCredential(gdb, "user-1", models.ProviderTwitter)
	require.ErrorIs(t, err, db.ErrNotConnected)
}

func TestCallback_SuccessStoresCredential(t *testing.T) {
	conn, gdb, store := newTestConnector(t, fakeTwitter(t))
	store.Put("req-token", connect.Handshake{Secret: "req-secret", UserID: "user-1"})

	rec := httptest.NewRecorder()
	conn.CallbackHandler()(rec, httptest.NewRequest(http.MethodGet,
		"/twitter/callback?oauth_token=req-token&oauth_verifier=verifier-1", nil))

	q := redirectQuery(t, rec)
	require.Equal(t, "success", q.Get("twitter"))

	cred, err := db.GetCredential(gdb, "user-1", models.ProviderTwitter)
	require.NoError(t, err)
	require.Equal(t, "tw-100", cred.ProviderAccountID)
	require.Equal(t, "access-token", cred.AccessToken)
	require.Equal(t, "access-secret", cred.AccessSecret)
	require.Equal(t, "test_handle", cred.ScreenName)
}

func TestCallback_ConsumedTokenFailsDistinctly(t *testing.T) {
	conn, _, store := newTestConnector(t, fakeTwitter(t))
	store.Put("req-token", connect.Handshake{Secret: "req-secret", UserID: "user-1"})

	first := httptest.NewRecorder()
	conn.CallbackHandler()(first, httptest.NewRequest(http.MethodGet,
		"/twitter/callback?oauth_token=req-token&oauth_verifier=verifier-1", nil))
	require.Equal(t, "success", redirectQuery(t, first).Get("twitter"))

	second := httptest.NewRecorder()
	conn.CallbackHandler()(second, httptest.NewRequest(http.MethodGet,
		"/twitter/callback?oauth_token=req-token&oauth_verifier=verifier-1", nil))
	q := redirectQuery(t, second)
	require.Equal(t, "error", q.Get("twitter"))
	require.Equal(t, invalidSessionMessage, q.Get("message"))
}

func TestCallback_IdentityLookupFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
		fmt.Fprint(w, "oauth_token=access-token&oauth_token_secret=access-secret")
	})
	mux.HandleFunc("/2/users/me", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "who are you", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	conn, gdb, store := newTestConnector(t, nil)
	conn.endpoint = oauth1.Endpoint{
		RequestTokenURL: srv.URL + "/oauth/request_token",
		AuthorizeURL:    srv.URL + "/oauth/authorize",
		AccessTokenURL:  srv.URL + "/oauth/access_token",
	}
	conn.userLookup = srv.URL + "/2/users/me"
	store.Put("req-token", connect.Handshake{Secret: "req-secret", UserID: "user-1"})

	rec := httptest.NewRecorder()
	conn.CallbackHandler()(rec, httptest.NewRequest(http.MethodGet,
		"/twitter/callback?oauth_token=req-token&oauth_verifier=verifier-1", nil))

	q := redirectQuery(t, rec)
	require.Equal(t, "error", q.Get("twitter"))
	require.Contains(t, q.Get("message"), "profile")

	_, err := db.GetCredential(gdb, "user-1", models.ProviderTwitter)
	require.ErrorIs(t, err, db.ErrNotConnected)
}

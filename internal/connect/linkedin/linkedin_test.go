package linkedin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/pysugar/social-nexus/internal/auth"
	"github.com/pysugar/social-nexus/internal/config"
	"github.com/pysugar/social-nexus/internal/db"
	"github.com/pysugar/social-nexus/internal/db/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

const testRedirectURL = "http://localhost:8080/linkedin/callback"

func newTestConnector(t *testing.T) (*Connector, *gorm.DB, *auth.Issuer) {
	t.Helper()
	gdb, err := db.InitDB("file::memory:")
	require.NoError(t, err)
	issuer := auth.NewIssuer("test-secret")
	conn := NewConnector(gdb, issuer, config.LinkedIn{
		ClientID:     "client-123",
		ClientSecret: "secret-456",
		RedirectURL:  testRedirectURL,
	}, "http://frontend.test")
	return conn, gdb, issuer
}

func authedRequest(t *testing.T, issuer *auth.Issuer, userID, target string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return req.WithContext(auth.WithUserID(req.Context(), userID))
}

func TestLoginHandler_AuthURLShape(t *testing.T) {
	conn, _, issuer := newTestConnector(t)

	rec := httptest.NewRecorder()
	conn.LoginHandler()(rec, authedRequest(t, issuer, "user-1", "/linkedin/login"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AuthURL string `json:"auth_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	parsed, err := url.Parse(resp.AuthURL)
	require.NoError(t, err)
	q := parsed.Query()
	require.Equal(t, "client-123", q.Get("client_id"))
	require.Equal(t, testRedirectURL, q.Get("redirect_uri"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "openid profile w_member_social", q.Get("scope"))
	require.Equal(t, "login", q.Get("prompt"))

	// redirect_uri is percent-encoded in the raw URL.
	require.Contains(t, resp.AuthURL,
		"redirect_uri="+url.QueryEscape(testRedirectURL))

	// The state parameter carries the requesting user, signed.
	userID, err := issuer.ParseState(q.Get("state"))
	require.NoError(t, err)
	require.Equal(t, "user-1", userID)
}

func TestLoginHandler_MissingCredentials(t *testing.T) {
	gdb, err := db.InitDB("file::memory:")
	require.NoError(t, err)
	issuer := auth.NewIssuer("test-secret")
	conn := NewConnector(gdb, issuer, config.LinkedIn{}, "http://frontend.test")

	rec := httptest.NewRecorder()
	conn.LoginHandler()(rec, authedRequest(t, issuer, "user-1", "/linkedin/login"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "client credentials")
}

// fakeProvider stands in for LinkedIn's token and userinfo endpoints.
func fakeProvider(t *testing.T, tokenStatus int, tokenBody string, userinfoBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/accessToken", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "authorization_code", r.FormValue("grant_type"))
		require.Equal(t, testRedirectURL, r.FormValue("redirect_uri"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(tokenStatus)
		fmt.Fprint(w, tokenBody)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, userinfoBody)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func pointAtFake(conn *Connector, srv *httptest.Server) {
	conn.endpoint = oauth2.Endpoint{
		AuthURL:  srv.URL + "/authorization",
		TokenURL: srv.URL + "/accessToken",
	}
	conn.userinfo = srv.URL + "/userinfo"
}

func callbackRequest(t *testing.T, issuer *auth.Issuer, userID string) *http.Request {
	t.Helper()
	state, err := issuer.IssueState(userID)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodGet,
		"/linkedin/callback?code=auth-code&state="+url.QueryEscape(state), nil)
}

func TestCallback_Success(t *testing.T) {
	conn, gdb, issuer := newTestConnector(t)
	srv := fakeProvider(t, http.StatusOK,
		`{"access_token":"li-token","expires_in":3600,"token_type":"Bearer"}`,
		`{"sub":"li-member-1","name":"Test Member"}`)
	pointAtFake(conn, srv)

	rec := httptest.NewRecorder()
	conn.CallbackHandler()(rec, callbackRequest(t, issuer, "user-1"))

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	require.Equal(t, "http://frontend.test?linkedin=success", rec.Header().Get("Location"))

	cred, err := db.GetCredential(gdb, "user-1", models.ProviderLinkedIn)
	require.NoError(t, err)
	require.Equal(t, "li-member-1", cred.ProviderAccountID)
	require.Equal(t, "li-token", cred.AccessToken)
}

func TestCallback_ReauthorizeReplacesToken(t *testing.T) {
	conn, gdb, issuer := newTestConnector(t)

	for _, token := range []string{"tokenA", "tokenB"} {
		srv := fakeProvider(t, http.StatusOK,
			fmt.Sprintf(`{"access_token":%q,"token_type":"Bearer"}`, token),
			`{"sub":"li-member-1"}`)
		pointAtFake(conn, srv)
		rec := httptest.NewRecorder()
		conn.CallbackHandler()(rec, callbackRequest(t, issuer, "user-1"))
		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	}

	var count int64
	gdb.Model(&models.SocialAccount{}).Count(&count)
	require.EqualValues(t, 1, count)

	cred, err := db.GetCredential(gdb, "user-1", models.ProviderLinkedIn)
	require.NoError(t, err)
	require.Equal(t, "tokenB", cred.AccessToken)
}

func TestCallback_TokenExchangeFailure(t *testing.T) {
	conn, _, issuer := newTestConnector(t)
	srv := fakeProvider(t, http.StatusBadRequest,
		`{"error":"invalid_grant"}`, `{}`)
	pointAtFake(conn, srv)

	rec := httptest.NewRecorder()
	conn.CallbackHandler()(rec, callbackRequest(t, issuer, "user-1"))

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	require.Equal(t, "http://frontend.test?linkedin=error&message=token_failed",
		rec.Header().Get("Location"))
}

func TestCallback_MissingMemberID(t *testing.T) {
	conn, gdb, issuer := newTestConnector(t)
	srv := fakeProvider(t, http.StatusOK,
		`{"access_token":"li-token","token_type":"Bearer"}`, `{}`)
	pointAtFake(conn, srv)

	rec := httptest.NewRecorder()
	conn.CallbackHandler()(rec, callbackRequest(t, issuer, "user-1"))

	require.Equal(t, "http://frontend.test?linkedin=error&message=no_user_id",
		rec.Header().Get("Location"))

	_, err := db.GetCredential(gdb, "user-1", models.ProviderLinkedIn)
	require.ErrorIs(t, err, db.ErrNotConnected)
}

func TestCallback_ForgedState(t *testing.T) {
	conn, _, _ := newTestConnector(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/linkedin/callback?code=auth-code&state=forged", nil)
	conn.CallbackHandler()(rec, req)

	require.Equal(t, "http://frontend.test?linkedin=error&message=invalid_state",
		rec.Header().Get("Location"))
}

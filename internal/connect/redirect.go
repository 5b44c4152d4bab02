package connect

import (
	"net/http"
	"net/url"
)

// Handshake outcomes are always delivered to the frontend through the
// redirect channel, never as HTTP errors: the browser is mid-OAuth-dance and
// an error page would strand the user outside the app.

// RedirectSuccess sends the browser back to the frontend with
// ?<provider>=success.
func RedirectSuccess(w http.ResponseWriter, r *http.Request, frontendURL, provider string) {
	http.Redirect(w, r, frontendURL+"?"+provider+"=success", http.StatusTemporaryRedirect)
}

// RedirectError sends the browser back to the frontend with
// ?<provider>=error&message=<reason>.
func RedirectError(w http.ResponseWriter, r *http.Request, frontendURL, provider, message string) {
	target := frontendURL + "?" + provider + "=error&message=" + url.QueryEscape(message)
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/battleship-go/internal/model"
)

type contextKey string

const credentialsContextKey contextKey = "credentials"

// Header and query parameter names carrying player credentials
const (
	PlayerIDHeader = "X-Player-ID"
	PlayerIDParam  = "player_id"
	TokenParam     = "token"
)

// Credentials are the caller's claimed identity. They are not verified here;
// every game operation authenticates them itself.
type Credentials struct {
	PlayerID model.PlayerID
	Token    string
}

// ExtractCredentials extracts the caller's credentials into the request context
func ExtractCredentials(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), credentialsContextKey, extractCredentials(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractCredentials reads headers first, then falls back to query parameters
// for clients such as EventSource that cannot set headers
func extractCredentials(r *http.Request) Credentials {
	creds := Credentials{PlayerID: model.PlayerID(r.Header.Get(PlayerIDHeader))}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		creds.Token = strings.TrimPrefix(authHeader, "Bearer ")
	}

	query := r.URL.Query()
	if creds.PlayerID == "" {
		creds.PlayerID = model.PlayerID(query.Get(PlayerIDParam))
	}
	if creds.Token == "" {
		creds.Token = query.Get(TokenParam)
	}
	return creds
}

// GetCredentials returns the credentials from the request context. A request
// that did not pass through ExtractCredentials yields empty credentials.
func GetCredentials(ctx context.Context) Credentials {
	creds, _ := ctx.Value(credentialsContextKey).(Credentials)
	return creds
}

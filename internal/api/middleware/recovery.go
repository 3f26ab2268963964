package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/battleship-go/internal/api/apierr"
	"github.com/mcoot/battleship-go/internal/middleware"
)

// Recovery turns handler panics into a JSON INTERNAL_ERROR response
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}

// Logging writes access logs tagged with the matched route template and,
// for game routes, the game id.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	base := logger.With(slog.String("component", "api"))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := base
			if route := mux.CurrentRoute(r); route != nil {
				if tmpl, err := route.GetPathTemplate(); err == nil {
					l = l.With(slog.String("route", tmpl))
				}
			}
			if id, ok := mux.Vars(r)["id"]; ok {
				l = l.With(slog.String("resource_id", id))
			}
			middleware.Logging(l)(next).ServeHTTP(w, r)
		})
	}
}

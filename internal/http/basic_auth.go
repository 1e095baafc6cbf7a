package http

import (
	"crypto/sha256"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/bornholm/go-x/slogx"
	httpCtx "github.com/bornholm/weekplan/internal/http/context"
)

func (s *Server) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if ok {
			usernameHash := sha256.Sum256([]byte(username))
			passwordHash := sha256.Sum256([]byte(password))

			expectedUsername := sha256.Sum256([]byte(s.opts.BasicAuth.Username))
			expectedPassword := sha256.Sum256([]byte(s.opts.BasicAuth.Password))

			usernameMatch := (subtle.ConstantTimeCompare(usernameHash[:], expectedUsername[:]) == 1)
			passwordMatch := (subtle.ConstantTimeCompare(passwordHash[:], expectedPassword[:]) == 1)

			if usernameMatch && passwordMatch {
				ctx := httpCtx.SetUsername(r.Context(), username)
				ctx = slogx.WithAttrs(ctx, slog.String("user", username))

				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}

		w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	})
}

package middleware

import (
	"net/http"
	"strings"

	"movie-booking/pkg/utils"

	chimw "github.com/go-chi/chi/v5/middleware"
)

const CorrelationHeader = "X-Correlation-ID"

// Correlation id request diteruskan ke context, lalu ikut ke metadata event bus.
// Pakai header client kalau ada, kalau tidak pakai request id dari chi.
func Correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(CorrelationHeader))
		if id == "" {
			id = chimw.GetReqID(r.Context())
		}
		if id == "" {
			id = utils.GenerateCorrelationID()
		}

		w.Header().Set(CorrelationHeader, id)
		next.ServeHTTP(w, r.WithContext(utils.SetCorrelationID(r.Context(), id)))
	})
}

// CORS untuk SPA di origin lain
func CORS() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, "+CorrelationHeader)
			h.Set("Access-Control-Expose-Headers", CorrelationHeader)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

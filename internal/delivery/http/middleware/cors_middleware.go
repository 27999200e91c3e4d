package middleware

import "net/http"

type CORSMiddleware struct {
	allowedOrigin string
}

func NewCORSMiddleware(allowedOrigin string) *CORSMiddleware {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return &CORSMiddleware{allowedOrigin: allowedOrigin}
}

func (m *CORSMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", m.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "X-Trace-Id")

		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, req)
	})
}

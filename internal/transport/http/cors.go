package http

import "net/http"

// corsMiddleware は許可オリジンに対してCORSヘッダーを設定
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handleCORS(w, r)
		next.ServeHTTP(w, r)
	})
}

// handleCORS はCORSヘッダーを設定
func (s *Server) handleCORS(w http.ResponseWriter, r *http.Request) {
	if len(s.config.CORSOrigins) == 0 {
		return
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}

	allowed := false
	for _, allowedOrigin := range s.config.CORSOrigins {
		if origin == allowedOrigin || allowedOrigin == "*" {
			allowed = true
			break
		}
	}
	if !allowed {
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Vary", "Origin")
}

package analysis

import (
	"log/slog"
	"net/http"
)

// Server handles HTTP requests for bill analysis
type Server struct {
	service        *Service
	mux            *http.ServeMux
	maxUploadBytes int64
}

// NewServer creates a new Server with default mux
func NewServer(service *Service) *Server {
	return NewServerWithMux(service, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, mux *http.ServeMux) *Server {
	s := &Server{
		service:        service,
		mux:            mux,
		maxUploadBytes: defaultMaxUploadBytes,
	}
	s.registerRoutes()
	return s
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		// Handle preflight OPTIONS requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

// registerRoutes registers all routes on the server's mux.
// Routes must be registered from most specific to least specific to avoid conflicts.
func (s *Server) registerRoutes() {
	// Static assets
	s.mux.HandleFunc("GET /static/app.css", s.handleStaticCSS)
	s.mux.HandleFunc("GET /static/app.js", s.handleStaticJS)

	// API endpoints
	s.mux.HandleFunc("POST /api/bills", s.handleUploadBill)
	s.mux.HandleFunc("GET /download/{filetype}/{filename}", s.handleDownload)

	// Static HTML interface (register last as it's the catch-all)
	s.mux.HandleFunc("GET /index.html", s.handleIndex)
	s.mux.HandleFunc("GET /", s.handleIndex)
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	return http.ListenAndServe(addr, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			s.mux.ServeHTTP(w, r)
		})(w, r)
	}))
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

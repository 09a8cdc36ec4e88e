package pantry

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// defaultUserID namespaces pantry data when basic auth is not configured
const defaultUserID = "default"

// Server handles HTTP requests for the pantry API
type Server struct {
	service   *Service
	basicAuth BasicAuth
	mux       *http.ServeMux
}

// BasicAuth holds basic authentication credentials. The authenticated
// username doubles as the pantry namespace.
type BasicAuth struct {
	Username string
	Password string
}

// NewServer creates a new Server with default mux
func NewServer(service *Service, basicAuth BasicAuth) *Server {
	return NewServerWithMux(service, basicAuth, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, basicAuth BasicAuth, mux *http.ServeMux) *Server {
	s := &Server{
		service:   service,
		basicAuth: basicAuth,
		mux:       mux,
	}
	s.registerRoutes()
	return s
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	if s.basicAuth.Username == "" && s.basicAuth.Password == "" {
		return true // No auth required if not configured
	}

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
	if err != nil {
		return false
	}

	credentials := strings.SplitN(string(decoded), ":", 2)
	if len(credentials) != 2 {
		return false
	}

	return credentials[0] == s.basicAuth.Username && credentials[1] == s.basicAuth.Password
}

// userID returns the pantry namespace for a request: the basic auth
// username when present, defaultUserID otherwise
func (s *Server) userID(r *http.Request) string {
	if username, _, ok := r.BasicAuth(); ok && username != "" {
		return username
	}
	return defaultUserID
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Pantry Tracker"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// registerRoutes registers all API routes on the server's mux.
// Routes must be registered from most specific to least specific.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /api/receipts/scan", s.requireAuth(s.handleScanReceipt))

	s.mux.HandleFunc("GET /api/pantry/{id}", s.requireAuth(s.handleGetPantryItem))
	s.mux.HandleFunc("PUT /api/pantry/{id}", s.requireAuth(s.handleUpdatePantryItem))
	s.mux.HandleFunc("DELETE /api/pantry/{id}", s.requireAuth(s.handleDeletePantryItem))
	s.mux.HandleFunc("GET /api/pantry", s.requireAuth(s.handleListPantryItems))
	s.mux.HandleFunc("POST /api/pantry", s.requireAuth(s.handleAddPantryItem))

	s.mux.HandleFunc("GET /api/meal-plans/{id}", s.requireAuth(s.handleGetMealPlan))
	s.mux.HandleFunc("DELETE /api/meal-plans/{id}", s.requireAuth(s.handleDeleteMealPlan))
	s.mux.HandleFunc("GET /api/meal-plans", s.requireAuth(s.handleListMealPlans))
	s.mux.HandleFunc("POST /api/meal-plans", s.requireAuth(s.handleGenerateMealPlan))

	s.mux.HandleFunc("GET /health", s.handleHealth)
}

// corsHandler wraps the mux with permissive CORS for browser clients
func (s *Server) corsHandler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         3600,
	}).Handler(s.mux)
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	return http.ListenAndServe(addr, s.corsHandler())
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.corsHandler().ServeHTTP(w, r)
}

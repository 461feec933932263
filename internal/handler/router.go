package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// RouterOptions configure cross-cutting behavior of the router.
type RouterOptions struct {
	AllowedOrigins []string
	// Auth wraps every /api/v1 route when set.
	Auth func(http.Handler) http.Handler
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(
	operations *OperationHandler,
	security *SecurityHandler,
	files *FileHandler,
	jobs *JobHandler,
	opts RouterOptions,
) http.Handler {
	router := mux.NewRouter()

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", health).Methods(http.MethodGet)

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", health).Methods(http.MethodGet)

	protected := api.PathPrefix("").Subrouter()
	if opts.Auth != nil {
		protected.Use(opts.Auth)
	}

	// Merge and split
	protected.HandleFunc("/merge", operations.Merge).Methods(http.MethodPost)
	protected.HandleFunc("/merge/ordered", operations.MergeOrdered).Methods(http.MethodPost)
	protected.HandleFunc("/split/count", operations.SplitByCount).Methods(http.MethodPost)
	protected.HandleFunc("/split/ranges", operations.SplitByRanges).Methods(http.MethodPost)
	protected.HandleFunc("/split/extract", operations.Extract).Methods(http.MethodPost)

	// Conversion
	protected.HandleFunc("/convert/images", operations.ToImages).Methods(http.MethodPost)
	protected.HandleFunc("/convert/pdf", operations.ToPDF).Methods(http.MethodPost)
	protected.HandleFunc("/convert/text", operations.ToText).Methods(http.MethodPost)
	protected.HandleFunc("/compress", operations.Compress).Methods(http.MethodPost)

	// Security
	protected.HandleFunc("/security/encrypt", security.Encrypt).Methods(http.MethodPost)
	protected.HandleFunc("/security/decrypt", security.Decrypt).Methods(http.MethodPost)
	protected.HandleFunc("/security/remove-password", security.RemovePassword).Methods(http.MethodPost)
	protected.HandleFunc("/security/status", security.Status).Methods(http.MethodGet)
	protected.HandleFunc("/security/info", security.EncryptionInfo).Methods(http.MethodGet)
	protected.HandleFunc("/documents/info", security.DocumentInfo).Methods(http.MethodGet)

	// Workspace files
	protected.HandleFunc("/files", files.Upload).Methods(http.MethodPost)
	protected.HandleFunc("/files", files.List).Methods(http.MethodGet)
	protected.HandleFunc("/files/{name:.+}", files.Download).Methods(http.MethodGet)

	// Jobs
	protected.HandleFunc("/jobs", jobs.ListJobs).Methods(http.MethodGet)
	protected.HandleFunc("/jobs/{id}", jobs.GetJob).Methods(http.MethodGet)

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-CSRF-Token",
		},
		ExposedHeaders: []string{
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "pdf-toolbox"})
}

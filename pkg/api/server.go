package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"prefroute/pkg/graph"
	"prefroute/pkg/routing"
	"prefroute/pkg/user"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	MaxConcurrent int
	CORSOrigin    string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(addr string) ServerConfig {
	return ServerConfig{
		Addr:          addr,
		ReadTimeout:   5 * time.Second,
		WriteTimeout:  5 * time.Second,
		MaxConcurrent: runtime.NumCPU() * 2,
		CORSOrigin:    "",
	}
}

// Handlers holds the HTTP handlers and their dependencies: the read-only
// graph (shared by reference across every worker, no locking needed) and
// the mutex-guarded user store. qsPool hands out a routing.QueryState per
// request and returns it afterward, exactly as the teacher's engine pools
// its own per-query state.
type Handlers struct {
	graph  *graph.Graph
	store  *user.Store
	tags   []string
	qsPool sync.Pool
}

// NewHandlers creates handlers backed by g and store. tags names each cost
// dimension in index order (config's edge_cost_tags) and is echoed
// alongside alpha vectors in responses so a caller can label them without
// hardcoding the dimension order itself.
func NewHandlers(g *graph.Graph, store *user.Store, tags []string) *Handlers {
	h := &Handlers{graph: g, store: store, tags: tags}
	h.qsPool.New = func() any {
		return routing.NewQueryState(g.NumNodes())
	}
	return h
}

func (h *Handlers) checkoutQueryState() *routing.QueryState {
	return h.qsPool.Get().(*routing.QueryState)
}

func (h *Handlers) releaseQueryState(qs *routing.QueryState) {
	h.qsPool.Put(qs)
}

// NewServer creates an HTTP server with all routes and middleware.
func NewServer(cfg ServerConfig, handlers *Handlers) *http.Server {
	mux := http.NewServeMux()

	sem := make(chan struct{}, cfg.MaxConcurrent)
	wrap := func(handler http.HandlerFunc, auth bool) http.HandlerFunc {
		h := withMiddleware(handler, sem, cfg)
		if auth {
			h = requireAuth(h, handlers.store)
		}
		return h
	}

	mux.HandleFunc("POST /register", wrap(handlers.HandleRegister, false))
	mux.HandleFunc("POST /login", wrap(handlers.HandleLogin, false))
	mux.HandleFunc("GET /routing/closest", wrap(handlers.HandleClosest, true))
	mux.HandleFunc("POST /routing/fsp", wrap(handlers.HandleFindPath, true))
	mux.HandleFunc("POST /routing/find_preference", wrap(handlers.HandleFindPreference, true))
	mux.HandleFunc("GET /routing/preference", wrap(handlers.HandleGetPreference, true))
	mux.HandleFunc("POST /routing/preference", wrap(handlers.HandleSetPreference, true))
	mux.HandleFunc("GET /routing/routes", wrap(handlers.HandleRoutes, true))
	mux.HandleFunc("POST /routing/reset", wrap(handlers.HandleReset, true))

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// ListenAndServe starts the server and blocks until shutdown signal.
func ListenAndServe(srv *http.Server) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Printf("Received %s, shutting down...", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

// withMiddleware wraps a handler with logging, recovery, security headers,
// and concurrency limiting.
func withMiddleware(handler http.HandlerFunc, sem chan struct{}, cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")

		if cfg.CORSOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSOrigin)
		}

		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
		default:
			w.Header().Set("Retry-After", "1")
			http.Error(w, `{"error":"service_unavailable"}`, http.StatusServiceUnavailable)
			return
		}

		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic: %v", rec)
				http.Error(w, `{"error":"internal_error"}`, http.StatusInternalServerError)
			}
		}()

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		start := time.Now()
		handler(w, r.WithContext(ctx))
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start).Round(time.Microsecond))
	}
}

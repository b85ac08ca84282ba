package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Tmacphee13/hello-server/internal/server"

// Options configures a Server. A nil Routes uses DefaultRoutes.
type Options struct {
	Routes    []Route
	StaticDir string
	Logger    *slog.Logger
}

type Server struct {
	routes    []Route
	assets    *os.Root
	logger    *slog.Logger
	responses metric.Int64Counter
}

// New validates the route table and opens the static root.
func New(opts Options) (*Server, error) {
	routes := opts.Routes
	if routes == nil {
		routes = DefaultRoutes
	}
	routes, err := validateRoutes(routes)
	if err != nil {
		return nil, err
	}

	assets, err := os.OpenRoot(opts.StaticDir)
	if err != nil {
		return nil, fmt.Errorf("server: open static dir %q: %w", opts.StaticDir, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	responses, err := otel.Meter(instrumentationName).Int64Counter("dispatcher.responses",
		metric.WithDescription("Responses written by the dispatcher, by kind"),
		metric.WithUnit("{response}"))
	if err != nil {
		assets.Close()
		return nil, fmt.Errorf("server: create counter: %w", err)
	}

	return &Server{
		routes:    routes,
		assets:    assets,
		logger:    logger,
		responses: responses,
	}, nil
}

// Close releases the static root.
func (s *Server) Close() error {
	return s.assets.Close()
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	for _, route := range s.routes {
		mux.Handle(route.pattern(), s.routeHandler(route))
	}

	// liveness probe
	mux.HandleFunc("GET "+healthPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Status":"ok"}`))
	})

	// everything else resolves against the static root
	mux.Handle("GET /", http.HandlerFunc(s.serveStatic))

	var h http.Handler = mux
	h = rejectTraversal(h)
	h = logRequests(s.logger, h)
	h = withRequestID(h)
	return otelhttp.NewHandler(h, "dispatcher")
}

func (s *Server) count(r *http.Request, kind string) {
	s.responses.Add(r.Context(), 1, metric.WithAttributes(attribute.String("kind", kind)))
}

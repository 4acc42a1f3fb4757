package restserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/chrissnell/feedercast/internal/forecast"
	"github.com/chrissnell/feedercast/internal/log"
	"github.com/chrissnell/feedercast/pkg/config"
	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Controller represents the REST server controller
type Controller struct {
	ctx          context.Context
	wg           *sync.WaitGroup
	serverConfig config.ServerData
	Server       http.Server
	Pipeline     *forecast.Pipeline
	MealsConfig  config.MealsData
	MealsEnabled bool
	Timestamps   config.TimestampData
	logger       *zap.SugaredLogger
	handlers     *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, cfg *config.ConfigData, logger *zap.SugaredLogger) (*Controller, error) {
	if cfg == nil {
		return nil, fmt.Errorf("no configuration provided")
	}

	sc := cfg.Server
	ctrl := &Controller{
		ctx:          ctx,
		wg:           wg,
		serverConfig: sc,
		Pipeline:     forecast.NewPipeline(cfg.Refill, cfg.Timestamps),
		MealsConfig:  cfg.Meals,
		MealsEnabled: cfg.Meals.Model != "",
		Timestamps:   cfg.Timestamps,
		logger:       logger,
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if sc.ListenAddr == "" {
		logger.Infof("server.listen-addr not provided; defaulting to %s (all interfaces)", config.DefaultListenAddr)
		ctrl.serverConfig.ListenAddr = config.DefaultListenAddr
	}

	if sc.Port == 0 {
		logger.Infof("server.port not provided; defaulting to %d", config.DefaultPort)
		ctrl.serverConfig.Port = config.DefaultPort
	}

	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", ctrl.serverConfig.ListenAddr, ctrl.serverConfig.Port)
	ctrl.Server.Handler = ctrl.Handler()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// Handler returns the full middleware-wrapped HTTP handler
func (c *Controller) Handler() http.Handler {
	origins := c.serverConfig.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Accept", RequestIDHeader}),
	)

	logged := handlers.CustomLoggingHandler(io.Discard, cors(c.setupRouter()), c.logRequest)
	return c.requestIDMiddleware(logged)
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Infof("Starting REST server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.serverConfig.Cert != "" && c.serverConfig.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.serverConfig.Cert, c.serverConfig.Key); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/predict", c.handlers.Predict).Methods(http.MethodPost)
	router.HandleFunc("/healthz", c.handlers.Health).Methods(http.MethodGet)

	// We only enable the /meals endpoint if a meal-time model has been configured.
	if c.MealsEnabled {
		router.HandleFunc("/meals", c.handlers.GetMeals).Methods(http.MethodGet)
	}

	// Front-end build, with index.html as the fallback for client-side routes
	if c.serverConfig.StaticDir != "" {
		router.PathPrefix("/").HandlerFunc(c.handlers.ServeSPA).Methods(http.MethodGet, http.MethodHead)
	}

	router.NotFoundHandler = http.HandlerFunc(c.handlers.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(c.handlers.MethodNotAllowed)

	return router
}

// requestIDMiddleware tags every request with an id, reusing one supplied by the client
func (c *Controller) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), requestIDContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// logRequest is the gorilla/handlers log formatter; it sends access logs to zap
func (c *Controller) logRequest(_ io.Writer, p handlers.LogFormatterParams) {
	c.logger.Infow("http request",
		"method", p.Request.Method,
		"path", p.URL.Path,
		"status", p.StatusCode,
		"size", p.Size,
		"duration", time.Since(p.TimeStamp),
		"remote_addr", p.Request.RemoteAddr,
		"request_id", p.Request.Header.Get(RequestIDHeader),
	)
}

// requestID returns the id assigned by requestIDMiddleware
func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDContextKey).(string); ok {
		return id
	}
	return ""
}

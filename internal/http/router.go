package httpx

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/liftsplit/liftsplit/internal/service/auth"
	"github.com/liftsplit/liftsplit/internal/service/split"
	"github.com/liftsplit/liftsplit/internal/service/workout"
	"github.com/liftsplit/liftsplit/internal/validation"
)

// Router wires HTTP endpoints to services.
type Router struct {
	mux       *mux.Router
	handler   http.Handler
	logger    *slog.Logger
	auth      auth.Service
	splits    split.Service
	workouts  workout.Service
	validator *validation.Validator
	dbHealth  func(context.Context) error

	metricsOnce        sync.Once
	metricsInitialized bool
	requestTotal       *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
}

const (
	serviceName        = "liftsplit"
	healthCheckTimeout = 2 * time.Second
	maxBodyBytes       = 1 << 20
	requestIDHeader    = "X-Request-ID"
)

// NewRouter assembles routes with dependencies. allowedOrigins configures CORS;
// an empty slice allows every origin.
func NewRouter(logger *slog.Logger, authSvc auth.Service, splitSvc split.Service, workoutSvc workout.Service, validator *validation.Validator, allowedOrigins []string, dbHealth func(context.Context) error) *Router {
	r := &Router{
		mux:       mux.NewRouter(),
		logger:    logger,
		auth:      authSvc,
		splits:    splitSvc,
		workouts:  workoutSvc,
		validator: validator,
		dbHealth:  dbHealth,
	}
	r.initMetrics()
	r.register()

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", requestIDHeader}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger: logger}),
		handlers.PrintRecoveryStack(true),
	)
	r.handler = recovery(cors(r.mux))
	return r
}

// ServeHTTP delegates to the wrapped mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Router) register() {
	r.mux.NotFoundHandler = r.audit(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.mux.MethodNotAllowedHandler = r.audit(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.mux.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.mux.HandleFunc("/", r.audit(r.handleRoot)).Methods(http.MethodGet)
	r.mux.HandleFunc("/health", r.audit(r.handleHealth)).Methods(http.MethodGet)

	r.mux.HandleFunc("/auth/register", r.audit(r.handleRegister)).Methods(http.MethodPost)
	r.mux.HandleFunc("/auth/login", r.audit(r.handleLogin)).Methods(http.MethodPost)
	r.mux.HandleFunc("/auth/me", r.audit(r.requireAuth(r.handleMe))).Methods(http.MethodGet)

	r.mux.HandleFunc("/splits", r.audit(r.requireAuth(r.handleCreateSplit))).Methods(http.MethodPost)
	r.mux.HandleFunc("/splits", r.audit(r.requireAuth(r.handleListSplits))).Methods(http.MethodGet)
	r.mux.HandleFunc("/splits/{id}", r.audit(r.requireAuth(r.handleGetSplit))).Methods(http.MethodGet)
	r.mux.HandleFunc("/splits/{id}", r.audit(r.requireAuth(r.handleUpdateSplit))).Methods(http.MethodPut)
	r.mux.HandleFunc("/splits/{id}", r.audit(r.requireAuth(r.handleDeleteSplit))).Methods(http.MethodDelete)

	r.mux.HandleFunc("/splits/{id}/workouts", r.audit(r.requireAuth(r.handleCreateWorkout))).Methods(http.MethodPost)
	r.mux.HandleFunc("/splits/{id}/workouts", r.audit(r.requireAuth(r.handleListWorkouts))).Methods(http.MethodGet)
	r.mux.HandleFunc("/splits/{id}/workouts/{workout_id}", r.audit(r.requireAuth(r.handleGetWorkout))).Methods(http.MethodGet)
	r.mux.HandleFunc("/splits/{id}/workouts/{workout_id}", r.audit(r.requireAuth(r.handleUpdateWorkout))).Methods(http.MethodPut)
	r.mux.HandleFunc("/splits/{id}/workouts/{workout_id}", r.audit(r.requireAuth(r.handleDeleteWorkout))).Methods(http.MethodDelete)
}

func (r *Router) handleRoot(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "hello world",
		"service": serviceName,
	})
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	components := make(map[string]any)
	status := "ok"
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			status = "degraded"
			components["database"] = map[string]any{
				"status": "down",
				"error":  err.Error(),
			}
		} else {
			components["database"] = map[string]any{"status": "up"}
		}
	}
	payload := map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, payload)
}

func (r *Router) audit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		reqID := strings.TrimSpace(req.Header.Get(requestIDHeader))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)

		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		ctx := recorder.ctx
		if ctx == nil {
			ctx = req.Context()
		}
		duration := time.Since(start)
		route := routeTemplate(req)
		r.recordRequestMetrics(req.Method, route, status, duration)

		actor := "anonymous"
		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"route", route,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", duration.Milliseconds(),
			"request_id", reqID,
		}
		if ip := clientIP(req); ip != "" {
			fields = append(fields, "ip", ip)
		}
		if info, ok := authInfoFromContext(ctx); ok {
			actor = "user"
			fields = append(fields, "user_id", info.UserID)
		}
		fields = append(fields, "actor", actor)

		switch {
		case status >= http.StatusInternalServerError:
			r.logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			r.logger.Warn("http_request", fields...)
		default:
			r.logger.Info("http_request", fields...)
		}
	}
}

func routeTemplate(req *http.Request) string {
	if route := mux.CurrentRoute(req); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	ctx    context.Context
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) SetContext(ctx context.Context) {
	sr.ctx = ctx
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := sr.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("hijacker not supported")
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

// recoveryLogger routes panics caught by gorilla/handlers into slog.
type recoveryLogger struct {
	logger *slog.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.logger.Error("panic recovered", "detail", strings.TrimSpace(fmt.Sprintln(v...)))
}

package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/infection-report-service/internal/bot"
)

// Handler answers chat requests.
type Handler interface {
	Handle(ctx context.Context, req bot.Request) (bot.Reply, error)
}

// Server exposes health, readiness, metrics, and the chat endpoints.
type Server struct {
	httpServer *http.Server
	handler    Handler
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, the
// /api query routes, and the /ws chat bridge.
func NewServer(addr string, ready sharedobs.ReadinessChecker, handler Handler, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		handler: handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /api/report", gzhttp.GzipHandler(http.HandlerFunc(s.handleReport)))
	mux.Handle("GET /api/trend", gzhttp.GzipHandler(http.HandlerFunc(s.handleTrend)))
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
// Hijacked websocket connections are not tracked and end with the process.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type replyBody struct {
	RequestID string `json:"request_id"`
	Kind      string `json:"kind,omitempty"`
	Text      string `json:"text"`
	Image     []byte `json:"image,omitempty"`
	Failed    bool   `json:"failed"`
}

type errorBody struct {
	Error string `json:"error"`
}

func toReplyBody(reply bot.Reply) replyBody {
	return replyBody{
		RequestID: reply.RequestID,
		Kind:      string(reply.Kind),
		Text:      reply.Text,
		Image:     reply.Image,
		Failed:    reply.Failed,
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q, ok := query(w, r)
	if !ok {
		return
	}
	reply, err := s.handler.Handle(r.Context(), bot.Request{Kind: bot.KindReport, Text: q})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, toReplyBody(reply))
		return
	}
	status := http.StatusOK
	if reply.Failed {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, toReplyBody(reply))
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	q, ok := query(w, r)
	if !ok {
		return
	}
	reply, err := s.handler.Handle(r.Context(), bot.Request{Kind: bot.KindTrend, Text: q})
	switch {
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, toReplyBody(reply))
	case reply.Failed:
		writeJSON(w, http.StatusUnprocessableEntity, toReplyBody(reply))
	default:
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("X-Request-ID", reply.RequestID)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(reply.Image); err != nil {
			s.logger.Warn("write chart response", "request_id", reply.RequestID, "error", err)
		}
	}
}

type wsRequest struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	for {
		var msg wsRequest
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket closed unexpectedly", "error", err)
			}
			return
		}

		// Handler errors are already logged and the reply carries the
		// generic failure text.
		reply, _ := s.handler.Handle(r.Context(), bot.Request{Kind: bot.Kind(msg.Kind), Text: msg.Text})
		if err := conn.WriteJSON(toReplyBody(reply)); err != nil {
			s.logger.Warn("websocket write failed", "request_id", reply.RequestID, "error", err)
			return
		}
	}
}

func query(w http.ResponseWriter, r *http.Request) (string, bool) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing query parameter q"})
		return "", false
	}
	return q, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

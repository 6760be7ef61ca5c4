package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/LeJamon/programtest/internal/banks"
	"github.com/LeJamon/programtest/internal/core/genesis"
)

// maxBodySize bounds a request body; a wire transaction is at most 1232
// bytes, so this leaves ample room for the envelope.
const maxBodySize = 64 << 10

// Server handles HTTP JSON-RPC requests against one ledger.
type Server struct {
	registry *MethodRegistry
	client   banks.Client
	warper   banks.Warper
	scanner  banks.Scanner
	genesis  genesis.Config
	timeout  time.Duration
	log      zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithTimeout bounds the time a single method may take.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// WithLogger sets the server logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l.With().Str("component", "rpc").Logger() }
}

// NewServer creates a server exposing client and warper. cfg is reported by
// getGenesis. getProgramAccounts is served only when client is also a
// banks.Scanner.
func NewServer(client banks.Client, warper banks.Warper, cfg genesis.Config, opts ...Option) *Server {
	s := &Server{
		registry: NewMethodRegistry(),
		client:   client,
		warper:   warper,
		genesis:  cfg,
		timeout:  30 * time.Second,
		log:      zerolog.Nop(),
	}
	if sc, ok := client.(banks.Scanner); ok {
		s.scanner = sc
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerAllMethods()
	return s
}

// Methods lists the registered RPC methods.
func (s *Server) Methods() []string { return s.registry.List() }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeResponse(w, "", nil, RpcErrorInternal("Failed to read request body"))
		return
	}
	defer r.Body.Close()

	var request Request
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeResponse(w, "", nil, NewRpcError(RpcPARSE_ERROR, "jsonInvalid", "Invalid JSON: "+err.Error()))
		return
	}
	if request.Method == "" {
		s.writeResponse(w, "", nil, NewRpcError(RpcJSON_RPC, "missingCommand", "Missing method field"))
		return
	}

	var params json.RawMessage
	if len(request.Params) > 0 {
		params = request.Params[0]
	}

	ctx := &RpcContext{Context: r.Context(), ClientIP: getClientIP(r)}
	result, rpcErr := s.executeMethod(request.Method, params, ctx)
	s.writeResponse(w, request.Method, result, rpcErr)
}

func (s *Server) executeMethod(method string, params json.RawMessage, rctx *RpcContext) (any, *RpcError) {
	handler, ok := s.registry.Get(method)
	if !ok {
		return nil, RpcErrorMethodNotFound(method)
	}

	if s.timeout > 0 {
		ctx, cancel := context.WithTimeout(rctx.Context, s.timeout)
		defer cancel()
		rctx = &RpcContext{Context: ctx, ClientIP: rctx.ClientIP}
	}

	start := time.Now()
	result, rpcErr := handler.Handle(rctx, params)
	ev := s.log.Debug()
	if rpcErr != nil {
		ev = ev.Str("error", rpcErr.ErrorString).Int("error_code", rpcErr.Code)
	}
	ev.Str("method", method).
		Str("client", rctx.ClientIP).
		Dur("elapsed", time.Since(start)).
		Msg("rpc call")
	return result, rpcErr
}

// writeResponse writes {"result": {"status": ..., ...}}. Errors put the
// error fields inside result; successes put the payload under data.
func (s *Server) writeResponse(w http.ResponseWriter, method string, result any, rpcErr *RpcError) {
	var body any
	if rpcErr != nil {
		body = struct {
			Status string `json:"status"`
			*RpcError
		}{"error", rpcErr}
	} else {
		body = struct {
			Status string `json:"status"`
			Data   any    `json:"data"`
		}{"success", result}
	}

	data, err := json.Marshal(map[string]any{"result": body})
	if err != nil {
		s.log.Error().Err(err).Str("method", method).Msg("failed to marshal response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.log.Debug().Err(err).Str("method", method).Msg("failed to write response")
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// Package httpserver exposes the state of a party over HTTP, for diagnostics
// and scripting.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.dedis.ch/mpcmul/peer"
	"go.dedis.ch/mpcmul/peer/impl/mpc"
	"go.dedis.ch/mpcmul/zp"
	"golang.org/x/xerrors"
)

// InputRequest is the body of POST /input: the private inputs of the party,
// submitted at once.
type InputRequest struct {
	Values []uint64 `json:"Values"`
}

// ResultResponse is the body returned by GET /result.
type ResultResponse struct {
	Value   uint64 `json:"Value"`
	Modulus uint64 `json:"Modulus"`
}

type errorResponse struct {
	Error string `json:"Error"`
}

// Server serves the diagnostics routes of a party.
type Server struct {
	peer   peer.Peer
	srv    *http.Server
	router chi.Router
}

// NewServer creates the server of a party. It is not listening until Start
// is called.
func NewServer(p peer.Peer) *Server {
	s := &Server{peer: p}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/status", s.statusHandler)
	r.Get("/result", s.resultHandler)
	r.Get("/participants", s.participantsHandler)
	r.Post("/input", s.inputHandler)
	r.Post("/advance", s.advanceHandler)
	r.Handle("/metrics", promhttp.Handler())

	s.router = r

	return s
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr and serves in the background. It returns the address
// actually used.
func (s *Server) Start(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", xerrors.Errorf("failed to listen on %s: %v", addr, err)
	}

	s.srv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: time.Second * 5,
	}

	go func() {
		err := s.srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
		}
	}()

	log.Info().Str("addr", ln.Addr().String()).Msg("http server started")

	return ln.Addr().String(), nil
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.peer.Status())
}

func (s *Server) participantsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.peer.Participants())
}

func (s *Server) resultHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.peer.ReconstructedResult()
	if errors.Is(err, zp.ErrInsufficientShares) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, ResultResponse{Value: res.Value(), Modulus: res.Modulus()})
}

func (s *Server) inputHandler(w http.ResponseWriter, r *http.Request) {
	var req InputRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, xerrors.Errorf("invalid input request: %v", err))
		return
	}

	err = s.peer.SubmitInputs(req.Values...)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}

	writeJSON(w, http.StatusAccepted, req)
}

func (s *Server) advanceHandler(w http.ResponseWriter, r *http.Request) {
	err := s.peer.AdvanceMultiplication()
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, mpc.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, mpc.ErrInputSubmitted), errors.Is(err, mpc.ErrChainComplete):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

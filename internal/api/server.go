// Package api exposes the insight and report chains over HTTP.
package api

// #region imports
import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/pipeline"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/service"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/stages"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #endregion

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// #region server

// Runner executes a named chain. service.Service satisfies it.
type Runner interface {
	Run(ctx context.Context, chain string, seed state.State, observers ...pipeline.Observer) (service.Outcome, error)
}

// Server routes run requests to a Runner.
type Server struct {
	runner          Runner
	logger          *zap.Logger
	defaultLanguage string
	router          chi.Router
}

// NewServer builds the router. defaultLanguage applies to requests that
// carry no language of their own.
func NewServer(runner Runner, defaultLanguage string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		runner:          runner,
		logger:          logger.Named("api"),
		defaultLanguage: defaultLanguage,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/insights", s.runChain(stages.InsightChainName))
		r.Post("/reports", s.runChain(stages.ReportChainName))
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		<-errCh
		return nil
	}
}

// #endregion

// #region handlers

// RunRequest is the body of POST /v1/insights and POST /v1/reports.
type RunRequest struct {
	Countries []string             `json:"countries"`
	Segment   string               `json:"segment"`
	Language  string               `json:"language,omitempty"`
	Company   state.CompanyProfile `json:"company"`
	Firm      state.FirmProfile    `json:"firm"`
	Rules     state.Rules          `json:"rules"`
}

// RunResponse carries the chain's hand-off artifact: insights for the
// insight chain, the report package for the report chain.
type RunResponse struct {
	RunID    string          `json:"run_id,omitempty"`
	Chain    string          `json:"chain"`
	Retried  bool            `json:"retried"`
	Insights []state.Insight `json:"insights,omitempty"`
	Report   *state.Report   `json:"report,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) runChain(chain string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RunRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
		seed, err := s.seed(req)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		out, err := s.runner.Run(r.Context(), chain, seed)
		if err != nil {
			s.logger.Error("run failed",
				zap.String("chain", chain),
				zap.String("run_id", out.RunID),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.Error(err),
			)
			writeError(w, r, http.StatusInternalServerError, "run_failed", err.Error())
			return
		}

		resp := RunResponse{RunID: out.RunID, Chain: chain, Retried: out.Retried()}
		switch chain {
		case stages.InsightChainName:
			resp.Insights = out.State.Insights
		case stages.ReportChainName:
			resp.Report = out.State.Report
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// seed validates req and converts it to the initial state.
func (s *Server) seed(req RunRequest) (state.State, error) {
	countries := make([]string, 0, len(req.Countries))
	for _, c := range req.Countries {
		if c = strings.TrimSpace(c); c != "" {
			countries = append(countries, c)
		}
	}
	if len(countries) == 0 {
		return state.State{}, errors.New("countries must not be empty")
	}
	if req.Rules.MinEvidence < 0 {
		return state.State{}, errors.New("rules.min_evidence must be >= 0")
	}
	lang := req.Language
	if lang == "" {
		lang = s.defaultLanguage
	}
	return state.State{
		Countries: countries,
		Segment:   strings.TrimSpace(req.Segment),
		Language:  lang,
		Company:   req.Company,
		Firm:      req.Firm,
		Rules:     req.Rules,
	}, nil
}

// #endregion

// #region middleware

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("latency", time.Since(start)),
		)
	})
}

// #endregion

// #region responses

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	payload := map[string]any{
		"error":   code,
		"message": message,
		"status":  status,
	}
	if id := middleware.GetReqID(r.Context()); id != "" {
		payload["request_id"] = id
	}
	writeJSON(w, status, payload)
}

// #endregion

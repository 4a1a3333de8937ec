package server

import (
	"PredictLedger/internal/event"
	"PredictLedger/internal/ingestion"
	"PredictLedger/internal/observability"
	"PredictLedger/internal/persistence"
	"PredictLedger/internal/projection"
	"PredictLedger/internal/query"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// GRPCServer wraps the gRPC server and the gateway HTTP mux. The gateway
// mux runs in standalone mode: JSON endpoints are registered directly via
// HandlePath and served against the query/ingest services.
type GRPCServer struct {
	grpcServer    *grpc.Server
	httpServer    *http.Server
	grpcAddr      string
	httpAddr      string
	deps          *ServerDeps
	healthChecker *observability.HealthChecker
	logger        zerolog.Logger
}

// ServerDeps holds all dependencies needed by the API services.
type ServerDeps struct {
	DB            *sql.DB
	QueryService  *query.QueryService
	IngestService *ingestion.GRPCIngestService
	SnapshotMgr   *persistence.SnapshotManager
	Metrics       *observability.Metrics
	StartTime     time.Time
	HealthChecker *observability.HealthChecker
}

// NewGRPCServer creates a new gRPC server with health and reflection
// registered.
func NewGRPCServer(grpcAddr, httpAddr string, deps *ServerDeps) *GRPCServer {
	grpcServer := grpc.NewServer()

	// Health check
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// Reflection for grpcurl / grpcui
	reflection.Register(grpcServer)

	return &GRPCServer{
		grpcServer:    grpcServer,
		grpcAddr:      grpcAddr,
		httpAddr:      httpAddr,
		deps:          deps,
		healthChecker: deps.HealthChecker,
		logger:        observability.NewLogger("server"),
	}
}

// StartGRPC starts the gRPC server (blocking).
func (s *GRPCServer) StartGRPC(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.grpcAddr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	go func() {
		<-ctx.Done()
		log.Println("INFO: gRPC server shutting down...")
		s.grpcServer.GracefulStop()
	}()

	log.Printf("INFO: gRPC server listening on %s", s.grpcAddr)
	return s.grpcServer.Serve(lis)
}

// StartHTTPGateway starts the HTTP/JSON API (blocking). HTTP/JSON is the
// primary query surface for tooling, dashboards, and curl.
func (s *GRPCServer) StartHTTPGateway(ctx context.Context) error {
	mux := runtime.NewServeMux()

	if err := s.registerQueryRoutes(mux); err != nil {
		return fmt.Errorf("register query routes: %w", err)
	}
	if err := s.registerAdminRoutes(mux); err != nil {
		return fmt.Errorf("register admin routes: %w", err)
	}

	// Health endpoints
	httpMux := http.NewServeMux()
	if s.healthChecker != nil {
		httpMux.HandleFunc("/healthz", s.healthChecker.LivenessHandler)
		httpMux.HandleFunc("/readyz", s.healthChecker.ReadinessHandler)
	} else {
		httpMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, `{"status":"ok"}`)
		})
	}
	httpMux.Handle("/", mux)

	s.httpServer = &http.Server{
		Addr:    s.httpAddr,
		Handler: httpMux,
	}

	go func() {
		<-ctx.Done()
		log.Println("INFO: HTTP gateway shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	log.Printf("INFO: HTTP gateway listening on %s (gRPC on %s)", s.httpAddr, s.grpcAddr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// ============================================================================
// Query routes
// ============================================================================

func (s *GRPCServer) registerQueryRoutes(mux *runtime.ServeMux) error {
	qs := s.deps.QueryService

	if err := mux.HandlePath("GET", "/v1/markets", s.instrumented("list_markets",
		func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
			includeResolved := r.URL.Query().Get("include_resolved") == "true"
			markets, err := qs.GetMarkets(r.Context(), includeResolved)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, map[string]interface{}{"markets": markets})
		})); err != nil {
		return err
	}

	if err := mux.HandlePath("GET", "/v1/markets/{market_id}", s.instrumented("get_market",
		func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
			m, err := qs.GetMarket(r.Context(), pathParams["market_id"])
			if err != nil {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeJSON(w, m)
		})); err != nil {
		return err
	}

	if err := mux.HandlePath("GET", "/v1/markets/{market_id}/history", s.instrumented("market_history",
		func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
			limit := parseLimit(r, 100, 1000)
			afterSeq := parseAfterSequence(r)
			history, err := qs.GetMarketHistory(r.Context(), pathParams["market_id"], limit, afterSeq)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, map[string]interface{}{"history": history})
		})); err != nil {
		return err
	}

	if err := mux.HandlePath("GET", "/v1/markets/{market_id}/account", s.instrumented("market_account",
		func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
			acct, err := qs.GetMarketAccount(r.Context(), pathParams["market_id"])
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, acct)
		})); err != nil {
		return err
	}

	if err := mux.HandlePath("GET", "/v1/players/{player_id}/balance", s.instrumented("get_balance",
		func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
			playerID, err := uuid.Parse(pathParams["player_id"])
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid player_id")
				return
			}
			bal, err := qs.GetBalance(r.Context(), playerID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, bal)
		})); err != nil {
		return err
	}

	if err := mux.HandlePath("GET", "/v1/players/{player_id}/positions", s.instrumented("list_positions",
		func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
			playerID, err := uuid.Parse(pathParams["player_id"])
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid player_id")
				return
			}
			positions, err := qs.GetPositions(r.Context(), playerID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, map[string]interface{}{"positions": positions})
		})); err != nil {
		return err
	}

	if err := mux.HandlePath("GET", "/v1/players/{player_id}/journals", s.instrumented("list_journals",
		func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
			playerID, err := uuid.Parse(pathParams["player_id"])
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid player_id")
				return
			}
			limit := parseLimit(r, 100, 500)
			afterSeq := parseAfterSequence(r)
			entries, err := qs.GetJournalHistory(r.Context(), playerID, limit, afterSeq)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, map[string]interface{}{"journals": entries})
		})); err != nil {
		return err
	}

	return mux.HandlePath("GET", "/v1/operator/fees", s.instrumented("operator_fees",
		func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
			fees, err := qs.GetOperatorFees(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, fees)
		}))
}

// ============================================================================
// Admin routes
// ============================================================================

func (s *GRPCServer) registerAdminRoutes(mux *runtime.ServeMux) error {
	if err := mux.HandlePath("GET", "/v1/admin/integrity", s.instrumented("verify_integrity",
		func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
			report, err := s.deps.QueryService.VerifyIntegrity(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, report)
		})); err != nil {
		return err
	}

	if err := mux.HandlePath("GET", "/v1/admin/event-log", s.instrumented("event_log_info",
		func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
			latestSeq, err := s.deps.SnapshotMgr.GetLatestSequence(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, map[string]interface{}{"last_sequence": latestSeq})
		})); err != nil {
		return err
	}

	if err := mux.HandlePath("POST", "/v1/admin/rebuild-projections", s.instrumented("rebuild_projections",
		func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
			if err := projection.RebuildProjections(r.Context(), s.deps.DB); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, map[string]interface{}{"started": true})
		})); err != nil {
		return err
	}

	if err := s.registerAdminIngestRoutes(mux); err != nil {
		return err
	}

	// Raw event injection for admin tooling and backfill. The payload uses
	// the same snake_case wire format as the NATS subjects.
	return mux.HandlePath("POST", "/v1/admin/events", s.instrumented("inject_event",
		func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
			var body struct {
				EventType string          `json:"event_type"`
				Payload   json.RawMessage `json:"payload"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}

			raw := ingestion.RawEvent{
				Subject: body.EventType,
				Data:    body.Payload,
			}
			evt, err := ingestion.ParseRawEvent(raw, body.EventType)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}

			select {
			case s.deps.IngestService.EventChan() <- evt:
				writeJSON(w, map[string]interface{}{"accepted": true})
			case <-r.Context().Done():
				writeError(w, http.StatusRequestTimeout, "context cancelled")
			}
		}))
}

// registerAdminIngestRoutes exposes the typed admin command surface.
// These inject events directly into the core's ingest channel; the admin
// identity is validated by the engine, not here.
func (s *GRPCServer) registerAdminIngestRoutes(mux *runtime.ServeMux) error {
	svc := s.deps.IngestService

	if err := mux.HandlePath("POST", "/v1/admin/deposits", s.instrumented("inject_deposit",
		func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
			var body struct {
				AdminID  string `json:"admin_id"`
				PlayerID string `json:"player_id"`
				Amount   uint64 `json:"amount"`
				Sequence int64  `json:"sequence"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			adminID, err := uuid.Parse(body.AdminID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid admin_id")
				return
			}
			playerID, err := uuid.Parse(body.PlayerID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid player_id")
				return
			}
			if err := svc.InjectDeposit(r.Context(), adminID, playerID, body.Amount, body.Sequence); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeJSON(w, map[string]interface{}{"accepted": true})
		})); err != nil {
		return err
	}

	if err := mux.HandlePath("POST", "/v1/admin/withdrawals", s.instrumented("inject_withdrawal",
		func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
			var body struct {
				PlayerID string `json:"player_id"`
				Amount   uint64 `json:"amount"`
				Sequence int64  `json:"sequence"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			playerID, err := uuid.Parse(body.PlayerID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid player_id")
				return
			}
			if err := svc.InjectWithdrawal(r.Context(), playerID, body.Amount, body.Sequence); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeJSON(w, map[string]interface{}{"accepted": true})
		})); err != nil {
		return err
	}

	if err := mux.HandlePath("POST", "/v1/admin/markets", s.instrumented("inject_market_create",
		func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
			var body struct {
				AdminID        string `json:"admin_id"`
				Title          string `json:"title"`
				Description    string `json:"description"`
				StartTime      uint64 `json:"start_time"`
				EndTime        uint64 `json:"end_time"`
				ResolutionTime uint64 `json:"resolution_time"`
				Sequence       int64  `json:"sequence"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			adminID, err := uuid.Parse(body.AdminID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid admin_id")
				return
			}
			if err := svc.InjectMarketCreate(r.Context(), adminID, body.Title, body.Description,
				body.StartTime, body.EndTime, body.ResolutionTime, body.Sequence); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeJSON(w, map[string]interface{}{"accepted": true})
		})); err != nil {
		return err
	}

	if err := mux.HandlePath("POST", "/v1/admin/markets/{market_id}/resolve", s.instrumented("inject_resolve",
		func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
			var body struct {
				AdminID  string `json:"admin_id"`
				Outcome  string `json:"outcome"`
				Sequence int64  `json:"sequence"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			adminID, err := uuid.Parse(body.AdminID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid admin_id")
				return
			}
			var outcome event.Side
			switch body.Outcome {
			case "yes":
				outcome = event.SideYes
			case "no":
				outcome = event.SideNo
			default:
				writeError(w, http.StatusBadRequest, "outcome must be yes or no")
				return
			}
			if err := svc.InjectMarketResolve(r.Context(), adminID, pathParams["market_id"], outcome, body.Sequence); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeJSON(w, map[string]interface{}{"accepted": true})
		})); err != nil {
		return err
	}

	if err := mux.HandlePath("POST", "/v1/admin/markets/{market_id}/fees/withdraw", s.instrumented("inject_fee_withdrawal",
		func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
			var body struct {
				AdminID  string `json:"admin_id"`
				Sequence int64  `json:"sequence"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			adminID, err := uuid.Parse(body.AdminID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid admin_id")
				return
			}
			if err := svc.InjectFeeWithdrawal(r.Context(), adminID, pathParams["market_id"], body.Sequence); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeJSON(w, map[string]interface{}{"accepted": true})
		})); err != nil {
		return err
	}

	return mux.HandlePath("POST", "/v1/admin/ticks", s.instrumented("inject_tick",
		func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
			var body struct {
				Counter uint64 `json:"counter"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if err := svc.InjectTick(r.Context(), body.Counter); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeJSON(w, map[string]interface{}{"accepted": true})
		}))
}

// ============================================================================
// Helpers
// ============================================================================

// instrumented wraps a handler with request/latency metrics and a
// structured access log.
func (s *GRPCServer) instrumented(endpoint string, h runtime.HandlerFunc) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
		start := time.Now()
		h(w, r, pathParams)
		elapsed := time.Since(start)

		if s.deps.Metrics != nil {
			s.deps.Metrics.QueryRequests.WithLabelValues(endpoint, "ok").Inc()
			s.deps.Metrics.QueryDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
		}

		s.logger.Debug().
			Str("endpoint", endpoint).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", elapsed).
			Msg("request handled")
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func parseLimit(r *http.Request, def, max int) int {
	limit := def
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > max {
		limit = max
	}
	return limit
}

func parseAfterSequence(r *http.Request) *int64 {
	if v := r.URL.Query().Get("after_sequence"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return &n
		}
	}
	return nil
}

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"fieldsync/internal/dto"
	"fieldsync/internal/observability/middleware"
	"fieldsync/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	RateLimitRPM int
}

func NewRouter(sync *service.SyncService, zones *service.ZoneReader, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	if cfg.RateLimitRPM > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitRPM, time.Minute))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Post("/sync/events", func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.RequestIDFromContext(r.Context())
		traceID := middleware.TraceIDFromContext(r.Context())

		var req dto.SyncRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			slog.Warn("sync decode failed", "error", err, "request_id", reqID, "trace_id", traceID)
			return
		}
		// Fail fast on a malformed top-level shape, before any processing.
		if req.DeviceID == "" || req.DeviceTimeAtSend.IsZero() {
			http.Error(w, "missing device_id or device_time_at_send", http.StatusBadRequest)
			slog.Warn("sync request rejected", "device_id", req.DeviceID, "request_id", reqID, "trace_id", traceID)
			return
		}

		res, err := sync.ProcessBatch(r.Context(), req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			slog.Error("sync batch failed", "error", err, "device_id", req.DeviceID, "request_id", reqID, "trace_id", traceID)
			return
		}

		slog.Info("sync batch processed",
			"device_id", req.DeviceID,
			"events", len(req.Events),
			"synced", res.SyncedCount,
			"failed", len(res.Errors),
			"request_id", reqID,
			"trace_id", traceID,
		)
		// Per-event failures surface only in the errors list; the call
		// itself stays 200 so partial success is preserved.
		writeJSON(w, http.StatusOK, res)
	})

	r.Get("/v1/zones", func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.RequestIDFromContext(r.Context())
		traceID := middleware.TraceIDFromContext(r.Context())

		var siteID *int64
		if raw := r.URL.Query().Get("site_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				http.Error(w, "invalid site_id", http.StatusBadRequest)
				return
			}
			siteID = &id
		}

		res, err := zones.List(r.Context(), siteID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			slog.Error("zone list failed", "error", err, "request_id", reqID, "trace_id", traceID)
			return
		}
		writeJSON(w, http.StatusOK, res)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package compliance

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	internalauthz "github.com/Yi-Jacob/mentalspace-ehr-sub008/internal/authz"
	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/authz"
	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/logger"
)

// Handlers provides the HTTP surface for compliance report generation
type Handlers struct {
	monitor   *Monitor
	evaluator *internalauthz.Evaluator
	logger    *logger.Logger
}

// NewHandlers creates a new instance of the compliance handlers
func NewHandlers(monitor *Monitor, evaluator *internalauthz.Evaluator, log *logger.Logger) *Handlers {
	return &Handlers{
		monitor:   monitor,
		evaluator: evaluator,
		logger:    log,
	}
}

// RegisterRoutes registers the compliance routes with the router
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/compliance/report", h.GenerateReport).Methods("GET")
}

// GenerateReport produces a compliance report over the requested window.
// Query parameters start and end are RFC 3339 timestamps; end defaults to
// now and start to thirty days earlier.
func (h *Handlers) GenerateReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := internalauthz.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "no authenticated actor")
		return
	}

	if !h.evaluator.CanGenerateComplianceReports(actor.Roles) {
		h.writeError(w, http.StatusForbidden, "insufficient privileges")
		return
	}

	end := time.Now().UTC()
	if raw := r.URL.Query().Get("end"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid end timestamp")
			return
		}
		end = parsed
	}

	start := end.AddDate(0, 0, -30)
	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid start timestamp")
			return
		}
		start = parsed
	}

	if !start.Before(end) {
		h.writeError(w, http.StatusBadRequest, "start must precede end")
		return
	}

	report, err := h.monitor.GenerateReport(r.Context(), start, end)
	if err != nil {
		if errors.Is(err, authz.ErrDataUnavailable) {
			h.writeError(w, http.StatusServiceUnavailable, "report data unavailable")
			return
		}
		h.logger.WithError(err).Error("Failed to generate compliance report")
		h.writeError(w, http.StatusInternalServerError, "failed to generate report")
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

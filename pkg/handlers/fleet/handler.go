package fleet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jconover/hyperion-fleet-manager/pkg/models/api"
	"github.com/jconover/hyperion-fleet-manager/pkg/models/domain"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/engine"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/publisher"
)

// CycleRunner runs one aggregation cycle for a fleet.
type CycleRunner interface {
	RunCycle(ctx context.Context, fleet, environment string) (domain.CycleResult, error)
}

type Handler struct {
	engine      CycleRunner
	environment string
}

func NewHandler(engine CycleRunner, environment string) *Handler {
	return &Handler{
		engine:      engine,
		environment: environment,
	}
}

// RunCycle triggers a synchronous aggregation cycle for the fleet in the
// URL and reports its outcome.
func (h *Handler) RunCycle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	fleet := chi.URLParam(r, "fleet")

	result, err := h.engine.RunCycle(ctx, fleet, h.environment)
	if err != nil {
		logger.Error().
			Err(err).
			Str("fleet", fleet).
			Msg("aggregation cycle failed")
		writeJSON(w, logger, statusFor(err), api.ErrorResponse{
			Message: "metric aggregation failed",
			Error:   err.Error(),
		})
		return
	}

	writeJSON(w, logger, http.StatusOK, api.CycleResponse{
		Message:            "metric aggregation completed successfully",
		FleetName:          fleet,
		Environment:        h.environment,
		InstancesProcessed: result.InstancesProcessed,
		RunningInstances:   result.RunningInstances,
		MetricsPublished:   result.MetricsPublished,
		FleetHealthScore:   result.HealthScore,
		ComplianceScore:    result.ComplianceScore,
	})
}

func statusFor(err error) int {
	var sinkErr *publisher.SinkError
	if errors.Is(err, engine.ErrSourceUnavailable) || errors.As(err, &sinkErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, logger *zerolog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

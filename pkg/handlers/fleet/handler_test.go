package fleet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jconover/hyperion-fleet-manager/pkg/models/api"
	"github.com/jconover/hyperion-fleet-manager/pkg/models/domain"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/engine"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/publisher"
)

type mockCycleRunner struct {
	mock.Mock
}

func (m *mockCycleRunner) RunCycle(ctx context.Context, fleet, environment string) (domain.CycleResult, error) {
	args := m.Called(ctx, fleet, environment)
	return args.Get(0).(domain.CycleResult), args.Error(1)
}

func newTestRouter(runner CycleRunner) http.Handler {
	handler := NewHandler(runner, "dev")
	router := chi.NewRouter()
	router.Post("/api/v1/fleets/{fleet}/cycles", handler.RunCycle)
	return router
}

func TestRunCycle_Success(t *testing.T) {
	runner := new(mockCycleRunner)
	runner.On("RunCycle", mock.Anything, "hyperion-fleet", "dev").
		Return(domain.CycleResult{
			InstancesProcessed: 5,
			RunningInstances:   3,
			MetricsPublished:   13,
			HealthScore:        87.5,
			ComplianceScore:    100,
		}, nil).Once()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/v1/fleets/hyperion-fleet/cycles", nil)
	newTestRouter(runner).ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

	var body api.CycleResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "metric aggregation completed successfully", body.Message)
	assert.Equal(t, "hyperion-fleet", body.FleetName)
	assert.Equal(t, "dev", body.Environment)
	assert.Equal(t, 5, body.InstancesProcessed)
	assert.Equal(t, 3, body.RunningInstances)
	assert.Equal(t, 13, body.MetricsPublished)
	assert.Equal(t, 87.5, body.FleetHealthScore)
	assert.Equal(t, 100.0, body.ComplianceScore)
	runner.AssertExpectations(t)
}

func TestRunCycle_SourceUnavailableIsBadGateway(t *testing.T) {
	runner := new(mockCycleRunner)
	runner.On("RunCycle", mock.Anything, "hyperion-fleet", "dev").
		Return(domain.CycleResult{}, fmt.Errorf("%w: inventory: timeout", engine.ErrSourceUnavailable)).Once()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/v1/fleets/hyperion-fleet/cycles", nil)
	newTestRouter(runner).ServeHTTP(recorder, request)

	require.Equal(t, http.StatusBadGateway, recorder.Code)

	var body api.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "metric aggregation failed", body.Message)
	assert.Contains(t, body.Error, "inventory")
}

func TestRunCycle_SinkErrorIsBadGateway(t *testing.T) {
	runner := new(mockCycleRunner)
	runner.On("RunCycle", mock.Anything, "hyperion-fleet", "dev").
		Return(domain.CycleResult{}, &publisher.SinkError{
			BatchIndex: 0,
			Code:       "AccessDenied",
			Message:    "not authorized",
		}).Once()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/v1/fleets/hyperion-fleet/cycles", nil)
	newTestRouter(runner).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadGateway, recorder.Code)
}

func TestRunCycle_UnexpectedErrorIsInternal(t *testing.T) {
	runner := new(mockCycleRunner)
	runner.On("RunCycle", mock.Anything, "hyperion-fleet", "dev").
		Return(domain.CycleResult{}, errors.New("snapshot validation failed")).Once()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/v1/fleets/hyperion-fleet/cycles", nil)
	newTestRouter(runner).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

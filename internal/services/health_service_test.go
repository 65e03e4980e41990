package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bedep/internal/shared/testutil"
	"bedep/pkg/contracts"
	"bedep/pkg/contracts/domain"
)

type mockDatasetStatus struct {
	mock.Mock
}

func (m *mockDatasetStatus) Loaded() bool {
	return m.Called().Bool(0)
}

func (m *mockDatasetStatus) Stats(ctx context.Context) (*domain.DatasetStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DatasetStats), args.Error(1)
}

func TestHealthService_Readiness(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(m *mockDatasetStatus)
		wantStatus  string
		wantDataset string
	}{
		{
			name: "dataset loaded",
			setup: func(m *mockDatasetStatus) {
				m.On("Loaded").Return(true)
				m.On("Stats", mock.Anything).Return(&domain.DatasetStats{Records: 8}, nil)
			},
			wantStatus:  "ready",
			wantDataset: "ready",
		},
		{
			name: "dataset missing",
			setup: func(m *mockDatasetStatus) {
				m.On("Loaded").Return(false)
			},
			wantStatus:  "not_ready",
			wantDataset: "not_ready",
		},
		{
			name: "stats failing",
			setup: func(m *mockDatasetStatus) {
				m.On("Loaded").Return(true)
				m.On("Stats", mock.Anything).Return(nil, errors.New("boom"))
			},
			wantStatus:  "not_ready",
			wantDataset: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			ds := &mockDatasetStatus{}
			tt.setup(ds)

			hs := NewHealthService("1.2.3", ds, logger)
			status := hs.ReadinessCheck(context.Background())

			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, tt.wantDataset, status.Services["dataset"].Status)
			assert.Equal(t, tt.wantStatus == "ready", hs.IsReady(context.Background()))
			ds.AssertExpectations(t)
		})
	}
}

func TestHealthService_HealthCheckDegradedWithoutDataset(t *testing.T) {
	ds := &mockDatasetStatus{}
	ds.On("Loaded").Return(false)

	status := NewHealthService("1.2.3", ds, nil).HealthCheck(context.Background())

	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
}

func TestHealthService_WithDashboardService(t *testing.T) {
	svc := newLoadedService(t)
	hs := NewHealthService("", svc, nil)

	assert.Equal(t, "ok", hs.HealthCheck(context.Background()).Status)
	assert.True(t, hs.IsReady(context.Background()))
}

func TestHealthService_Liveness(t *testing.T) {
	status := NewHealthService("1.2.3", nil, nil).LivenessCheck(context.Background())

	assert.Equal(t, "alive", status.Status)
	if assert.NotNil(t, status.Runtime) {
		assert.Positive(t, status.Runtime.Goroutines)
		assert.Positive(t, status.Runtime.CPUCount)
	}
}

func TestHealthService_Version(t *testing.T) {
	assert.Equal(t, "9.9.9", NewHealthService("9.9.9", nil, nil).Version().Version)
	assert.Equal(t, contracts.Version, NewHealthService("", nil, nil).Version().Version)
}

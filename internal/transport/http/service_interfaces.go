package http

import (
	"context"

	api "bedep/pkg/contracts/api/v1"
	"bedep/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations served over HTTP
type DashboardServiceInterface interface {
	Render(ctx context.Context, req api.DashboardRequest) (*domain.DashboardView, error)
	Areas() []domain.AreaInfo
	Levels() []domain.LevelInfo
	Schools(ctx context.Context) (*domain.SchoolList, error)
	Branches(ctx context.Context, school string) (*domain.BranchList, error)
	Stats(ctx context.Context) (*domain.DatasetStats, error)
}

package service

import (
	"context"
	"time"

	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/domain"
	"restaurant-floor/internal/ledger"
	"restaurant-floor/internal/summary"
)

// Publisher ships floor events and refreshed daily summaries out of the
// process.
type Publisher interface {
	PublishEvent(ctx context.Context, ev domain.FloorEvent) error
	PublishSummary(ctx context.Context, r summary.Report) error
}

type Service struct {
	FloorService FloorServiceInterface
}

func New(l *ledger.Ledger, pub Publisher, lg *logger.Logger, loc *time.Location) *Service {
	return &Service{
		FloorService: NewFloorService(l, pub, lg, loc),
	}
}

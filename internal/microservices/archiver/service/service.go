package service

import (
	"time"

	"restaurant-floor/internal/common/clock"
	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/microservices/archiver/repository"
)

type Service struct {
	ArchiverService ArchiverServiceInterface
}

func New(repo *repository.Repository, consumer Consumer, c clock.Clock, lg *logger.Logger, loc *time.Location) *Service {
	return &Service{
		ArchiverService: NewArchiverService(repo.ArchiveRepo, consumer, c, lg, loc),
	}
}

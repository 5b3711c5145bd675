package handlers

import "restaurant-floor/internal/microservices/archiver/service"

type Handler struct {
	ReportHandler *ReportHandler
}

func New(svc *service.Service, names func(menuItemID int) string) *Handler {
	return &Handler{
		ReportHandler: NewReportHandler(svc.ArchiverService, names),
	}
}

package handlers

import "restaurant-floor/internal/microservices/floor/service"

type Handler struct {
	FloorHandler *FloorHandler
}

func New(svc *service.Service) *Handler {
	return &Handler{
		FloorHandler: NewFloorHandler(svc.FloorService),
	}
}

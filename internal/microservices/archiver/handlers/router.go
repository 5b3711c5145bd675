package handlers

import "net/http"

func Router(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.ReportHandler.Health)
	mux.HandleFunc("GET /reports/daily", h.ReportHandler.Daily)
	return mux
}

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"restaurant-floor/internal/common/httpx"
	"restaurant-floor/internal/microservices/archiver/service"
	"restaurant-floor/internal/summary"
)

type ReportHandler struct {
	service service.ArchiverServiceInterface
	names   func(menuItemID int) string
}

func NewReportHandler(svc service.ArchiverServiceInterface, names func(menuItemID int) string) *ReportHandler {
	return &ReportHandler{service: svc, names: names}
}

func (h *ReportHandler) Health(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// Daily serves the archived report for ?date=YYYY-MM-DD, today by default.
func (h *ReportHandler) Daily(w http.ResponseWriter, r *http.Request) {
	today := h.service.Today()
	date := today
	if q := r.URL.Query().Get("date"); q != "" {
		d, err := time.ParseInLocation(summary.DateLayout, q, today.Location())
		if err != nil {
			httpx.WriteProblem(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("date %q: want YYYY-MM-DD", q))
			return
		}
		date = d
	}
	s, ok, err := h.service.DailyReport(r.Context(), date)
	if err != nil {
		httpx.WriteProblem(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if !ok {
		httpx.WriteProblem(w, http.StatusNotFound, "no_sales", "no closed orders on "+date.Format(summary.DateLayout))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, summary.NewReport(s, h.names))
}

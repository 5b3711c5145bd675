package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"restaurant-floor/internal/common/httpx"
	"restaurant-floor/internal/domain"
	"restaurant-floor/internal/ledger"
	"restaurant-floor/internal/microservices/floor/service"
	"restaurant-floor/internal/summary"
)

const maxBody = 1 << 20

type FloorHandler struct {
	service service.FloorServiceInterface
}

func NewFloorHandler(svc service.FloorServiceInterface) *FloorHandler {
	return &FloorHandler{service: svc}
}

func (h *FloorHandler) Health(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "time": h.service.Today()})
}

func (h *FloorHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.service.Tables(r.Context()))
}

func (h *FloorHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	t, err := h.service.Table(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

func (h *FloorHandler) SetTableStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var req domain.SetTableStatusRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := h.service.SetTableStatus(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

func (h *FloorHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	o, err := h.service.CurrentOrder(r.Context(), id)
	if errors.Is(err, ledger.ErrNoOpenOrder) {
		httpx.WriteProblem(w, http.StatusNotFound, "no_open_order", err.Error())
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeOrder(w, http.StatusOK, o)
}

func (h *FloorHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var req domain.AddItemRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.service.AddItem(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeOrder(w, http.StatusOK, o)
}

func (h *FloorHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathInt(w, r, "item_id")
	if !ok {
		return
	}
	var req domain.UpdateQuantityRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.service.UpdateQuantity(r.Context(), id, itemID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeOrder(w, http.StatusOK, o)
}

func (h *FloorHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathInt(w, r, "item_id")
	if !ok {
		return
	}
	o, removed, err := h.service.RemoveItem(r.Context(), id, itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	if removed {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeOrder(w, http.StatusOK, o)
}

func (h *FloorHandler) CloseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var req domain.CloseOrderRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.service.CloseOrder(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeOrder(w, http.StatusOK, o)
}

func (h *FloorHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	o, err := h.service.CancelOrder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeOrder(w, http.StatusOK, o)
}

func (h *FloorHandler) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var req domain.SetOrderStatusRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.service.SetOrderStatus(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeOrder(w, http.StatusOK, o)
}

func (h *FloorHandler) AnnotateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var req domain.AnnotateOrderRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.service.AnnotateOrder(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeOrder(w, http.StatusOK, o)
}

func (h *FloorHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders := h.service.Orders(r.Context())
	out := make([]domain.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, domain.NewOrderResponse(o, h.service.MenuItemName))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *FloorHandler) ListMenu(w http.ResponseWriter, r *http.Request) {
	menu := h.service.Menu(r.Context())
	out := make([]domain.MenuItemResponse, 0, len(menu))
	for _, m := range menu {
		out = append(out, domain.NewMenuItemResponse(m))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *FloorHandler) AddMenuItem(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateMenuItemRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := h.service.AddMenuItem(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, domain.NewMenuItemResponse(m))
}

// GetSummary reports on ?date=YYYY-MM-DD, today by default, in the floor's
// time zone.
func (h *FloorHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
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
	s, ok := h.service.Summary(r.Context(), date)
	if !ok {
		httpx.WriteProblem(w, http.StatusNotFound, "no_sales", "no closed orders on "+date.Format(summary.DateLayout))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, summary.NewReport(s, h.service.MenuItemName))
}

func (h *FloorHandler) writeOrder(w http.ResponseWriter, code int, o domain.Order) {
	httpx.WriteJSON(w, code, domain.NewOrderResponse(o, h.service.MenuItemName))
}

// writeError maps ledger errors onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		httpx.WriteProblem(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ledger.ErrNoOpenOrder):
		httpx.WriteProblem(w, http.StatusConflict, "no_open_order", err.Error())
	case errors.Is(err, ledger.ErrNoActiveTable):
		httpx.WriteProblem(w, http.StatusConflict, "no_active_table", err.Error())
	case errors.Is(err, ledger.ErrInvalidQuantity):
		httpx.WriteProblem(w, http.StatusUnprocessableEntity, "invalid_quantity", err.Error())
	case errors.Is(err, ledger.ErrInvalidPaymentMethod):
		httpx.WriteProblem(w, http.StatusUnprocessableEntity, "invalid_payment_method", err.Error())
	case errors.Is(err, ledger.ErrInvalidStatus):
		httpx.WriteProblem(w, http.StatusUnprocessableEntity, "invalid_status", err.Error())
	case errors.Is(err, ledger.ErrInvalidAmount):
		httpx.WriteProblem(w, http.StatusUnprocessableEntity, "invalid_amount", err.Error())
	case errors.Is(err, ledger.ErrInvalidMenuItem):
		httpx.WriteProblem(w, http.StatusUnprocessableEntity, "invalid_menu_item", err.Error())
	default:
		httpx.WriteProblem(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "bad_request", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func pathInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	n, err := strconv.Atoi(r.PathValue(key))
	if err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("%s must be an integer", key))
		return 0, false
	}
	return n, true
}

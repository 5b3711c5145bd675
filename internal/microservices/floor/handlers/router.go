package handlers

import "net/http"

func Router(h *Handler) *http.ServeMux {
	f := h.FloorHandler
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", f.Health)

	mux.HandleFunc("GET /tables", f.ListTables)
	mux.HandleFunc("GET /tables/{id}", f.GetTable)
	mux.HandleFunc("PUT /tables/{id}/status", f.SetTableStatus)

	mux.HandleFunc("GET /tables/{id}/order", f.GetOrder)
	mux.HandleFunc("PATCH /tables/{id}/order", f.AnnotateOrder)
	mux.HandleFunc("PUT /tables/{id}/order/status", f.SetOrderStatus)
	mux.HandleFunc("POST /tables/{id}/order/items", f.AddItem)
	mux.HandleFunc("PATCH /tables/{id}/order/items/{item_id}", f.UpdateQuantity)
	mux.HandleFunc("DELETE /tables/{id}/order/items/{item_id}", f.RemoveItem)
	mux.HandleFunc("POST /tables/{id}/order/close", f.CloseOrder)
	mux.HandleFunc("POST /tables/{id}/order/cancel", f.CancelOrder)

	mux.HandleFunc("GET /orders", f.ListOrders)
	mux.HandleFunc("GET /menu", f.ListMenu)
	mux.HandleFunc("POST /menu", f.AddMenuItem)
	mux.HandleFunc("GET /summary", f.GetSummary)
	return mux
}

package v1

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/internal/domain"
	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/internal/usecase"
	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/pkg/utils"
)

// OrderHandler is the staff-facing JSON surface over the sync engine.
type OrderHandler struct {
	engine *usecase.Engine
	store  domain.OrderStore
}

func NewOrderHandler(engine *usecase.Engine, store domain.OrderStore) *OrderHandler {
	return &OrderHandler{engine: engine, store: store}
}

// ListOrders serves the local mirror, optionally filtered by status
// (either vocabulary) and/or a free-text search query. A cold mirror
// triggers one refresh first.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orders, err := h.engine.Search(r.Context(), q.Get("search"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if status := q.Get("status"); status != "" && status != domain.OrderStatusAny {
		filtered := make([]domain.Order, 0, len(orders))
		for _, o := range orders {
			if domain.StatusMatches(o.Status, status) {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"orders": orders,
		"count":  len(orders),
	})
}

// RefreshOrders forces a pull from the remote API.
func (h *OrderHandler) RefreshOrders(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	var (
		orders []domain.Order
		err    error
	)
	if status == "" {
		orders, err = h.engine.Refresh(r.Context())
	} else {
		orders, err = h.engine.RefreshByStatus(r.Context(), status)
	}
	if err != nil {
		writeEngineError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"orders": orders,
		"count":  len(orders),
	})
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	order, err := h.engine.GetByID(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if order == nil {
		utils.WriteError(w, http.StatusNotFound, "order not found")
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	order, err := h.engine.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if order == nil {
		utils.WriteError(w, http.StatusNotFound, "order not found")
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) MarkPrinted(w http.ResponseWriter, r *http.Request) {
	h.mark(w, r, h.engine.MarkPrinted)
}

func (h *OrderHandler) MarkUnprinted(w http.ResponseWriter, r *http.Request) {
	h.mark(w, r, h.engine.MarkUnprinted)
}

func (h *OrderHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	h.mark(w, r, h.engine.MarkNotificationShown)
}

type markManyReadReq struct {
	IDs []int64 `json:"ids"`
}

func (h *OrderHandler) MarkManyRead(w http.ResponseWriter, r *http.Request) {
	var req markManyReadReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.engine.MarkManyNotificationsShown(r.Context(), req.IDs); err != nil {
		writeEngineError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *OrderHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.MarkAllNotificationsShown(r.Context()); err != nil {
		writeEngineError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UnreadOrders lists ids of orders whose arrival has not been
// surfaced yet.
func (h *OrderHandler) UnreadOrders(w http.ResponseWriter, r *http.Request) {
	ids, err := h.store.GetUnreadIDs(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"unread": ids})
}

func (h *OrderHandler) mark(w http.ResponseWriter, r *http.Request, op func(context.Context, int64) error) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := op(r.Context(), id); err != nil {
		writeEngineError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathID parses the {id} path segment; a non-numeric id is a 400.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.WriteError(w, http.StatusBadRequest, "invalid order id")
		return 0, false
	}
	return id, true
}

// writeEngineError maps the engine's error taxonomy onto HTTP codes:
// bad input is the caller's fault, a missing or unreachable remote is
// an upstream problem.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrConfigInvalid):
		utils.WriteError(w, http.StatusServiceUnavailable, "remote API is not configured")
	case errors.Is(err, domain.ErrRemoteRejected):
		utils.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrRemoteUnavailable):
		utils.WriteError(w, http.StatusBadGateway, "remote API unavailable")
	case errors.Is(err, domain.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, "order not found")
	default:
		utils.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

package v1

import (
	"net/http"

	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/internal/domain"
	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/internal/usecase"
	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/pkg/utils"
)

type SystemHandler struct {
	engine *usecase.Engine
}

func NewSystemHandler(engine *usecase.Engine) *SystemHandler {
	return &SystemHandler{engine: engine}
}

// TestConnection probes the remote API with a minimal request so the
// staff UI can tell credential problems from network problems.
func (h *SystemHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.TestConnection(r.Context()); err != nil {
		writeEngineError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "connected"})
}

// Statuses exports the status vocabulary so the UI can render both
// the canonical value and its display label.
func (h *SystemHandler) Statuses(w http.ResponseWriter, r *http.Request) {
	type status struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}
	out := make([]status, 0, len(domain.OrderStatuses))
	for _, s := range domain.OrderStatuses {
		out = append(out, status{Value: s, Label: domain.LocalizeStatus(s)})
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"statuses": out})
}

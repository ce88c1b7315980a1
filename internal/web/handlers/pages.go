package handlers

import (
	"log/slog"
	"net/http"

	"github.com/JoshBaneyCS/betanito/internal/auth"
	"github.com/JoshBaneyCS/betanito/internal/logging"
	"github.com/JoshBaneyCS/betanito/internal/web/view"
)

// PagesHandler serves the public informational pages.
type PagesHandler struct {
	renderer *view.Renderer
	logger   *slog.Logger
}

func NewPagesHandler(renderer *view.Renderer, logger *slog.Logger) *PagesHandler {
	return &PagesHandler{renderer: renderer, logger: logger}
}

// Page returns a handler rendering the named page. The username cookie is
// passed through for the header only.
func (h *PagesHandler) Page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := view.Data{DisplayName: auth.DisplayName(r)}
		if err := h.renderer.Render(w, http.StatusOK, name, data); err != nil {
			logging.ForRequest(h.logger, r).Error("render page", "page", name, "error", err)
			WriteFragment(w, http.StatusInternalServerError, MsgInternal)
		}
	}
}

package customer

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/acmefin/dashboard-core/internal/customer/entity"
	"github.com/acmefin/dashboard-core/internal/viewcache"
	"github.com/acmefin/dashboard-core/internal/web"
)

// Handler serves the customers table page.
type Handler struct {
	svc      *Service
	renderer *web.Renderer
	views    *viewcache.Cache
	logger   *zap.SugaredLogger
}

func NewHandler(svc *Service, renderer *web.Renderer, views *viewcache.Cache, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, renderer: renderer, views: views, logger: logger}
}

type tablePage struct {
	Title string
	Query string
	Rows  []entity.TableRow
}

// Table renders the filtered customers table with invoice aggregates.
func (h *Handler) Table(w http.ResponseWriter, r *http.Request) {
	key := r.URL.RequestURI()
	if body, ok := h.views.Get(key); ok {
		web.WriteHTML(w, http.StatusOK, body)
		return
	}
	query := r.URL.Query().Get("query")
	rows, err := h.svc.Table(r.Context(), query)
	if err != nil {
		h.logger.Errorw("list customers", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	body, err := h.renderer.Page("customers.html", tablePage{Title: "Customers", Query: query, Rows: rows})
	if err != nil {
		h.logger.Errorw("render customers", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.views.Set(key, body)
	web.WriteHTML(w, http.StatusOK, body)
}

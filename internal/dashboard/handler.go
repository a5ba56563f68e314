package dashboard

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/acmefin/dashboard-core/internal/invoice"
	invoiceentity "github.com/acmefin/dashboard-core/internal/invoice/entity"
	"github.com/acmefin/dashboard-core/internal/viewcache"
	"github.com/acmefin/dashboard-core/internal/web"
)

// Handler serves the dashboard overview page.
type Handler struct {
	svc      *Service
	invoices *invoice.Service
	renderer *web.Renderer
	views    *viewcache.Cache
	logger   *zap.SugaredLogger
}

func NewHandler(svc *Service, invoices *invoice.Service, renderer *web.Renderer, views *viewcache.Cache, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, invoices: invoices, renderer: renderer, views: views, logger: logger}
}

type overviewPage struct {
	Title  string
	Cards  *Cards
	Latest []invoiceentity.Row
}

// Overview renders the cards and latest invoices. The rendered page is
// cached until an invoice mutation invalidates it.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	key := r.URL.RequestURI()
	if body, ok := h.views.Get(key); ok {
		web.WriteHTML(w, http.StatusOK, body)
		return
	}
	cards, err := h.svc.Cards(r.Context())
	if err != nil {
		h.serverError(w, "fetch card data", err)
		return
	}
	latest, err := h.invoices.Latest(r.Context())
	if err != nil {
		h.serverError(w, "fetch latest invoices", err)
		return
	}
	body, err := h.renderer.Page("dashboard.html", overviewPage{Title: "Dashboard", Cards: cards, Latest: latest})
	if err != nil {
		h.serverError(w, "render dashboard", err)
		return
	}
	h.views.Set(key, body)
	web.WriteHTML(w, http.StatusOK, body)
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Errorw(op, "err", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

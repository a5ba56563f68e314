package invoice

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/acmefin/dashboard-core/internal/customer"
	customerentity "github.com/acmefin/dashboard-core/internal/customer/entity"
	"github.com/acmefin/dashboard-core/internal/forms"
	"github.com/acmefin/dashboard-core/internal/viewcache"
	"github.com/acmefin/dashboard-core/internal/web"
)

// Handler serves the invoice pages and form submissions.
type Handler struct {
	svc       *Service
	customers *customer.Service
	renderer  *web.Renderer
	views     *viewcache.Cache
	logger    *zap.SugaredLogger
}

func NewHandler(svc *Service, customers *customer.Service, renderer *web.Renderer, views *viewcache.Cache, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, customers: customers, renderer: renderer, views: views, logger: logger}
}

type listPage struct {
	Title string
	Page  *Page
}

func (p listPage) PrevPage() int { return p.Page.Number - 1 }
func (p listPage) NextPage() int { return p.Page.Number + 1 }

// List renders the filtered, paginated invoices table. Rendered pages are
// cached by request URI until a mutation invalidates them.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	key := r.URL.RequestURI()
	if body, ok := h.views.Get(key); ok {
		web.WriteHTML(w, http.StatusOK, body)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	result, err := h.svc.List(r.Context(), r.URL.Query().Get("query"), page)
	if err != nil {
		h.serverError(w, "list invoices", err)
		return
	}
	body, err := h.renderer.Page("invoices.html", listPage{Title: "Invoices", Page: result})
	if err != nil {
		h.serverError(w, "render invoices", err)
		return
	}
	h.views.Set(key, body)
	web.WriteHTML(w, http.StatusOK, body)
}

type formPage struct {
	Title     string
	Action    string
	Submit    string
	Values    FormInput
	Errors    forms.FieldErrors
	Customers []customerentity.Customer
}

// CreateForm renders the empty invoice form.
func (h *Handler) CreateForm(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		h.serverError(w, "list customers", err)
		return
	}
	h.renderer.Write(w, http.StatusOK, "invoice_form.html", formPage{
		Title:     "Create Invoice",
		Action:    "/dashboard/invoices/create",
		Submit:    "Create Invoice",
		Customers: customers,
	})
}

// Create handles the create-invoice submission: validation failures
// re-render the form with per-field messages, success redirects to the
// invoice list.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	in := FormInput{
		CustomerID: r.PostForm.Get("customerId"),
		Amount:     r.PostForm.Get("amount"),
		Status:     r.PostForm.Get("status"),
	}
	if _, err := h.svc.Create(r.Context(), in); err != nil {
		var verr *forms.ValidationError
		if errors.As(err, &verr) {
			customers, cerr := h.customers.List(r.Context())
			if cerr != nil {
				h.serverError(w, "list customers", cerr)
				return
			}
			h.renderer.Write(w, http.StatusUnprocessableEntity, "invoice_form.html", formPage{
				Title:     "Create Invoice",
				Action:    "/dashboard/invoices/create",
				Submit:    "Create Invoice",
				Values:    in,
				Errors:    verr.Fields,
				Customers: customers,
			})
			return
		}
		h.serverError(w, "create invoice", err)
		return
	}
	http.Redirect(w, r, "/dashboard/invoices", http.StatusSeeOther)
}

// EditForm renders the form pre-filled with the invoice being edited.
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.serverError(w, "fetch invoice", err)
		return
	}
	customers, err := h.customers.List(r.Context())
	if err != nil {
		h.serverError(w, "list customers", err)
		return
	}
	h.renderer.Write(w, http.StatusOK, "invoice_form.html", formPage{
		Title:  "Edit Invoice",
		Action: "/dashboard/invoices/" + id + "/edit",
		Submit: "Save Changes",
		Values: FormInput{
			CustomerID: inv.CustomerID,
			Amount:     strconv.FormatFloat(float64(inv.Amount)/100, 'f', 2, 64),
			Status:     inv.Status,
		},
		Customers: customers,
	})
}

// Edit handles the edit-invoice submission.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	id := r.PathValue("id")
	in := FormInput{
		CustomerID: r.PostForm.Get("customerId"),
		Amount:     r.PostForm.Get("amount"),
		Status:     r.PostForm.Get("status"),
	}
	if err := h.svc.Edit(r.Context(), id, in); err != nil {
		var verr *forms.ValidationError
		if errors.As(err, &verr) {
			customers, cerr := h.customers.List(r.Context())
			if cerr != nil {
				h.serverError(w, "list customers", cerr)
				return
			}
			h.renderer.Write(w, http.StatusUnprocessableEntity, "invoice_form.html", formPage{
				Title:     "Edit Invoice",
				Action:    "/dashboard/invoices/" + id + "/edit",
				Submit:    "Save Changes",
				Values:    in,
				Errors:    verr.Fields,
				Customers: customers,
			})
			return
		}
		h.serverError(w, "update invoice", err)
		return
	}
	http.Redirect(w, r, "/dashboard/invoices", http.StatusSeeOther)
}

// Delete handles the delete-invoice submission. Deleting twice lands on the
// same redirect both times.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		var verr *forms.ValidationError
		if errors.As(err, &verr) {
			http.Error(w, verr.Error(), http.StatusBadRequest)
			return
		}
		h.serverError(w, "delete invoice", err)
		return
	}
	http.Redirect(w, r, "/dashboard/invoices", http.StatusSeeOther)
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Errorw(op, "err", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

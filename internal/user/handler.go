package user

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/acmefin/dashboard-core/internal/forms"
	"github.com/acmefin/dashboard-core/internal/session"
	"github.com/acmefin/dashboard-core/internal/web"
)

// Handler serves the login and signup pages and their form submissions.
type Handler struct {
	svc      *Service
	sessions *session.Manager
	renderer *web.Renderer
	logger   *zap.SugaredLogger
}

func NewHandler(svc *Service, sessions *session.Manager, renderer *web.Renderer, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, sessions: sessions, renderer: renderer, logger: logger}
}

type loginPage struct {
	Title   string
	Email   string
	Message string
}

// LoginForm renders the login page.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Write(w, http.StatusOK, "login.html", loginPage{Title: "Log in"})
}

// Login verifies credentials and establishes a session. Every rejection
// shows the same generic message.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	email := r.PostForm.Get("email")
	u, err := h.svc.Authenticate(r.Context(), email, r.PostForm.Get("password"))
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			h.renderer.Write(w, http.StatusUnauthorized, "login.html", loginPage{
				Title:   "Log in",
				Email:   email,
				Message: "Invalid credentials.",
			})
			return
		}
		h.logger.Errorw("login", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if err := h.sessions.Issue(w, u); err != nil {
		h.logger.Errorw("issue session", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

type signupPage struct {
	Title  string
	Name   string
	Email  string
	Errors forms.FieldErrors
}

// SignupForm renders the signup page.
func (h *Handler) SignupForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Write(w, http.StatusOK, "signup.html", signupPage{Title: "Sign up"})
}

// Signup creates an account and redirects to the login page.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	in := SignupInput{
		Name:            r.PostForm.Get("name"),
		Email:           r.PostForm.Get("email"),
		Password:        r.PostForm.Get("password"),
		Confirm:         r.PostForm.Get("confirmPassword"),
		ConfirmProvided: r.PostForm.Has("confirmPassword"),
	}
	if _, err := h.svc.Signup(r.Context(), in); err != nil {
		var verr *forms.ValidationError
		if errors.As(err, &verr) {
			h.renderer.Write(w, http.StatusUnprocessableEntity, "signup.html", signupPage{
				Title:  "Sign up",
				Name:   in.Name,
				Email:  in.Email,
				Errors: verr.Fields,
			})
			return
		}
		h.logger.Errorw("signup", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Logout clears the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

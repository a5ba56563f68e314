package router

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/acmefin/dashboard-core/internal/customer"
	"github.com/acmefin/dashboard-core/internal/dashboard"
	"github.com/acmefin/dashboard-core/internal/invoice"
	"github.com/acmefin/dashboard-core/internal/session"
	"github.com/acmefin/dashboard-core/internal/user"
	"github.com/acmefin/dashboard-core/internal/viewcache"
	"github.com/acmefin/dashboard-core/internal/web"
	"github.com/acmefin/dashboard-core/pkg/utilities"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := utilities.NewSnowflakeID()
			w.Header().Set("X-Request-Id", reqID)
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"request_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RegisterRoutes wires services and handlers onto the standard library's
// http.ServeMux. Everything under /dashboard requires a valid session.
func RegisterRoutes(logger *zap.SugaredLogger, db *sqlx.DB, renderer *web.Renderer, views *viewcache.Cache, sessions *session.Manager) http.Handler {
	mux := http.NewServeMux()

	customerSvc := customer.NewService(db, nil)
	invoiceSvc := invoice.NewService(db, nil, views)
	userSvc := user.NewService(db, nil, nil)
	dashboardSvc := dashboard.NewService(db)

	invoiceHandler := invoice.NewHandler(invoiceSvc, customerSvc, renderer, views, logger)
	customerHandler := customer.NewHandler(customerSvc, renderer, views, logger)
	userHandler := user.NewHandler(userSvc, sessions, renderer, logger)
	dashboardHandler := dashboard.NewHandler(dashboardSvc, invoiceSvc, renderer, views, logger)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})

	mux.HandleFunc("GET /login", userHandler.LoginForm)
	mux.HandleFunc("POST /login", userHandler.Login)
	mux.HandleFunc("GET /signup", userHandler.SignupForm)
	mux.HandleFunc("POST /signup", userHandler.Signup)
	mux.HandleFunc("POST /logout", userHandler.Logout)

	guard := func(h http.HandlerFunc) http.Handler { return sessions.Require(h) }

	mux.Handle("GET /dashboard", guard(dashboardHandler.Overview))
	mux.Handle("GET /dashboard/invoices", guard(invoiceHandler.List))
	mux.Handle("GET /dashboard/invoices/create", guard(invoiceHandler.CreateForm))
	mux.Handle("POST /dashboard/invoices/create", guard(invoiceHandler.Create))
	mux.Handle("GET /dashboard/invoices/{id}/edit", guard(invoiceHandler.EditForm))
	mux.Handle("POST /dashboard/invoices/{id}/edit", guard(invoiceHandler.Edit))
	mux.Handle("POST /dashboard/invoices/{id}/delete", guard(invoiceHandler.Delete))
	mux.Handle("GET /dashboard/customers", guard(customerHandler.Table))

	return LoggingMiddleware(logger)(SecurityHeadersMiddleware()(mux))
}

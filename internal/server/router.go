package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/auth"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/handlers"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/httpx"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/mailer"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/models"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/numbering"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/rates"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, m *mailer.Mailer) http.Handler {
	mux := http.NewServeMux()

	// RequireAuth double-checks that the session's user still exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	authHandler := handlers.NewAuthHandler(db)
	authHandler.Register(mux)

	provider := rates.NewGormProvider(db)
	alloc := numbering.New(numbering.NewGormStore(db))
	quoteSvc := services.NewQuoteService(db, provider, alloc)

	qh := handlers.NewQuoteHandler(db, quoteSvc, m)
	mux.Handle("/quotes", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			qh.List(w, r)
		case http.MethodPost:
			qh.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})))
	mux.Handle("/quotes/preview-number", protect(http.HandlerFunc(qh.PreviewNumber)))
	mux.Handle("/quotes/finalize", protect(http.HandlerFunc(qh.Finalize)))
	mux.Handle("/quotes/pdf", protect(http.HandlerFunc(qh.PDF)))
	mux.Handle("/quotes/email", protect(http.HandlerFunc(qh.Email)))

	ch := handlers.NewCustomerHandler(db)
	mux.Handle("/customers", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ch.List(w, r)
		case http.MethodPost:
			ch.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})))

	rh := handlers.NewRateHandler(db, provider)
	mux.Handle("/rates", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			rh.List(w, r)
		case http.MethodPost:
			rh.Upsert(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})))

	return withRecover(withLogging(mux))
}

func protect(next http.Handler) http.Handler {
	return auth.Middleware(auth.RequireAuth(next))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

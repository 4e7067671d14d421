package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/gdg-garage/convention-booking/internal/auth"
	"github.com/gdg-garage/convention-booking/internal/config"
	"github.com/gdg-garage/convention-booking/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// Handlers bundles everything RegisterRoutes mounts. Media is nil when files
// are not served from the local disk.
type Handlers struct {
	Store        *store.Store
	Auth         *auth.AuthHandler
	Events       *EventHandler
	Bookings     *BookingHandler
	Transactions *TransactionHandler
	APIKeys      *APIKeyHandler
	GraphQL      http.Handler
	Media        http.Handler
}

// RequestLogger logs one line per request once it has been served.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		entry := logrus.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     status,
			"duration":   time.Since(start),
			"client_ip":  r.RemoteAddr,
			"user_agent": r.UserAgent(),
			"request_id": middleware.GetReqID(r.Context()),
		})
		if status >= 400 {
			entry.Error("Request failed")
		} else {
			entry.Info("Request processed")
		}
	})
}

func created(o *huma.Operation) {
	secured(o)
	o.DefaultStatus = http.StatusCreated
}

func deleted(o *huma.Operation) {
	secured(o)
	o.DefaultStatus = http.StatusNoContent
}

func RegisterRoutes(r *chi.Mux, cfg *config.Config, h Handlers) {
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	if cfg.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-KEY"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(h.Auth.OptionalMiddleware)

	humaConfig := huma.DefaultConfig("Convention Booking API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.CookieName,
		},
		"apiKeyAuth": {
			Type: "apiKey",
			In:   "header",
			Name: "X-API-KEY",
		},
	}
	api := humachi.New(r, humaConfig)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := h.Store.DB().DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			logrus.WithError(err).Error("Health check failed")
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("OK"))
	})

	r.Get("/auth/discord/login", h.Auth.HandleLogin)
	r.Get("/auth/discord/callback", h.Auth.HandleCallback)
	huma.Get(api, "/me", h.Auth.HandleMe, secured)

	r.Handle("/graphql", h.GraphQL)
	if h.Media != nil {
		r.Handle("/media/*", http.StripPrefix("/media/", h.Media))
	}

	// Events and their configuration
	huma.Get(api, "/admin/events", h.Events.HandleList, secured)
	huma.Post(api, "/admin/events", h.Events.HandleCreate, created)
	huma.Get(api, "/admin/events/{id}", h.Events.HandleGet, secured)
	huma.Put(api, "/admin/events/{id}", h.Events.HandleUpdate, secured)
	huma.Delete(api, "/admin/events/{id}", h.Events.HandleDelete, deleted)
	huma.Put(api, "/admin/events/{id}/logo", h.Events.HandleUploadLogo, secured)

	huma.Post(api, "/admin/events/{id}/days", h.Events.HandleAddDay, created)
	huma.Delete(api, "/admin/days/{id}", h.Events.HandleDeleteDay, deleted)
	huma.Post(api, "/admin/events/{id}/disciplines", h.Events.HandleAddDiscipline, created)
	huma.Delete(api, "/admin/disciplines/{id}", h.Events.HandleDeleteDiscipline, deleted)
	huma.Post(api, "/admin/events/{id}/rates", h.Events.HandleAddRate, created)
	huma.Delete(api, "/admin/rates/{id}", h.Events.HandleDeleteRate, deleted)
	huma.Post(api, "/admin/rates/{id}/prices", h.Events.HandleAddPrice, created)
	huma.Post(api, "/admin/events/{id}/products", h.Events.HandleAddProduct, created)
	huma.Delete(api, "/admin/products/{id}", h.Events.HandleDeleteProduct, deleted)
	huma.Post(api, "/admin/events/{id}/documents", h.Events.HandleAddDocument, created)
	huma.Delete(api, "/admin/documents/{id}", h.Events.HandleDeleteDocument, deleted)
	huma.Get(api, "/admin/pages", h.Events.HandleListPages, secured)
	huma.Post(api, "/admin/events/{id}/pages", h.Events.HandleAddPage, created)
	huma.Delete(api, "/admin/pages/{id}", h.Events.HandleDeletePage, deleted)

	// Bookings
	huma.Get(api, "/admin/bookings", h.Bookings.HandleList, secured)
	huma.Get(api, "/admin/bookings.csv", h.Bookings.HandleExport, secured)
	huma.Post(api, "/admin/bookings/checkin", h.Bookings.HandleCheckIn, secured)
	huma.Get(api, "/admin/bookings/{id}", h.Bookings.HandleGet, secured)
	huma.Put(api, "/admin/bookings/{id}", h.Bookings.HandleUpdate, secured)
	huma.Put(api, "/admin/bookings/{id}/state", h.Bookings.HandleSetState, secured)
	huma.Delete(api, "/admin/bookings/{id}", h.Bookings.HandleDelete, deleted)
	huma.Get(api, "/admin/bookings/{id}/attachments", h.Bookings.HandleListAttachments, secured)
	huma.Post(api, "/admin/bookings/{id}/attachments", h.Bookings.HandleUploadAttachment, created)
	huma.Delete(api, "/admin/attachments/{id}", h.Bookings.HandleDeleteAttachment, deleted)

	// Transactions
	huma.Get(api, "/admin/transactions", h.Transactions.HandleList, secured)
	huma.Get(api, "/admin/transactions.csv", h.Transactions.HandleExport, secured)
	huma.Post(api, "/admin/transactions", h.Transactions.HandleCreate, created)
	huma.Delete(api, "/admin/transactions/{id}", h.Transactions.HandleDelete, deleted)

	// API keys
	huma.Get(api, "/api-keys", h.APIKeys.HandleList, secured)
	huma.Post(api, "/api-keys", h.APIKeys.HandleCreate, created)
	huma.Delete(api, "/api-keys/{id}", h.APIKeys.HandleDelete, deleted)
}

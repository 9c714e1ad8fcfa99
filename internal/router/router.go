package router

import (
	"net/http"

	"photo-market/internal/handler"
	"photo-market/internal/middleware"
	"photo-market/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers bundles the HTTP handlers the router mounts.
type Handlers struct {
	Gallery  *handler.GalleryHandler
	Cart     *handler.CartHandler
	Coupon   *handler.CouponHandler
	Order    *handler.OrderHandler
	Download *handler.DownloadHandler
	Webhook  *handler.WebhookHandler
}

// New creates an HTTP router with all routes and middleware configured.
func New(h Handlers, apiKey string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(apiKey, logger))
	r.Use(middleware.Identity)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Webhooks authenticate themselves by signature, not by API key.
	r.Post("/webhooks/payment", h.Webhook.HandlePayment)

	r.Route("/api", func(r chi.Router) {
		// Public browsing
		r.Get("/albums", h.Gallery.ListAlbums)
		r.Get("/albums/{id}", h.Gallery.GetAlbum)
		r.Post("/photos/face-search", h.Gallery.SearchByFace)

		// Photographer content management
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(model.RolePhotographer))
			r.Post("/albums", h.Gallery.CreateAlbum)
			r.Post("/albums/{id}/photos", h.Gallery.UploadPhoto)
			r.Post("/albums/{id}/videos", h.Gallery.UploadVideo)
			r.Patch("/albums/{id}/archive", h.Gallery.ArchiveAlbum)
			r.Patch("/photos/{id}/archive", h.Gallery.ArchivePhoto)
			r.Post("/coupons", h.Coupon.Create)
			r.Get("/coupons", h.Coupon.List)
			r.Get("/sales", h.Order.ListSales)
		})

		// Customer commerce
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(model.RoleCustomer))
			r.Get("/cart", h.Cart.Get)
			r.Post("/cart/items", h.Cart.AddItem)
			r.Delete("/cart/items/{id}", h.Cart.RemoveItem)
			r.Post("/cart/coupon", h.Cart.ApplyCoupon)
			r.Post("/checkout", h.Order.Checkout)
			r.Get("/orders", h.Order.ListPurchases)
			r.Get("/orders/{id}", h.Order.GetByID)
			r.Get("/photos/{id}/download", h.Download.Get)
		})
	})

	return r
}

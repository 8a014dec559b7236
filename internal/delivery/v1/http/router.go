package http

import (
	"net/http"

	_ "github.com/DRSN-tech/insumos-backend/docs" // регистрация swagger-спецификации
	"github.com/DRSN-tech/insumos-backend/internal/usecase"
	"github.com/DRSN-tech/insumos-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// UseCases собирает зависимости HTTP-слоя.
type UseCases struct {
	Product usecase.ProductUC
	Catalog usecase.CatalogUC
	Cart    usecase.CartUC
	Auth    usecase.AuthUC
}

type Options struct {
	SecureCookie  bool
	MaxImageBytes int64
}

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(uc UseCases, opts Options) {
	r.router.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.router.Get("/ping", ping)
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		catalogHandler := NewCatalogHandler(uc.Catalog, uc.Product, r.logger)
		cartHandler := NewCartHandler(uc.Cart, r.logger)
		authHandler := NewAuthHandler(uc.Auth, r.logger, opts.SecureCookie)
		productHandler := NewProductHandler(uc.Product, uc.Catalog, r.logger, opts.MaxImageBytes)

		registerCatalogRoutes(v1, catalogHandler)
		registerCartRoutes(v1, cartHandler, opts.SecureCookie)
		registerAuthRoutes(v1, authHandler)
		registerAdminRoutes(v1, productHandler, uc.Auth, r.logger)
	})
}

func registerCatalogRoutes(router chi.Router, h *CatalogHandler) {
	router.Get("/catalog", h.listCatalog)
	router.Get("/catalog/stream", h.streamCatalog)
	router.Get("/products/{id}", h.getProduct)
}

func registerCartRoutes(router chi.Router, h *CartHandler, secure bool) {
	router.Route("/cart", func(cart chi.Router) {
		cart.Use(CartSession(secure))
		cart.Get("/", h.viewCart)
		cart.Post("/items", h.addItem)
		cart.Patch("/items/{productId}", h.setQuantity)
		cart.Delete("/items/{productId}", h.removeItem)
		cart.Post("/checkout", h.checkout)
	})
}

func registerAuthRoutes(router chi.Router, h *AuthHandler) {
	router.Route("/auth", func(auth chi.Router) {
		auth.Post("/login", h.login)
		auth.Post("/logout", h.logout)
		auth.Get("/me", h.me)
		auth.Get("/stream", h.streamSession)
	})
}

func registerAdminRoutes(router chi.Router, h *ProductHandler, auth usecase.AuthUC, log logger.Logger) {
	router.Route("/admin/products", func(admin chi.Router) {
		admin.Use(RequireAdmin(auth, log))
		admin.Post("/", h.registerNewProduct)
		admin.Get("/", h.productTable)
		admin.Patch("/{id}", h.updateProduct)
		admin.Delete("/{id}", h.deleteProduct)
	})
}

// ping
//
//	@Summary	Проверка доступности
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/ping [get]
func ping(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	_ "github.com/procesos/product-directory/docs" // регистрирует swagger-спецификацию
	"github.com/procesos/product-directory/internal/usecase"
	"github.com/procesos/product-directory/pkg/e"
	"github.com/procesos/product-directory/pkg/logger"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Handler() http.Handler {
	return r.router
}

// Init регистрирует middleware и маршруты. Чтение открыто, изменения требуют токен.
func (r *Router) Init(prUC usecase.ProductUC, authenticator RequestAuthenticator, swaggerHost string) {
	r.router.Use(RequestID, Recoverer(r.logger), AccessLog(r.logger))

	r.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, e.ErrRouteNotFound)
	})
	r.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteSuccess(w, http.StatusMethodNotAllowed, NewErrorResponse(http.StatusMethodNotAllowed, "method not allowed"))
	})

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://"+swaggerHost+"/swagger/doc.json"),
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(Authenticate(authenticator))
		prHandler := NewProductHandler(prUC, r.logger)
		registerProductRoutes(v1, prHandler)
	})
}

func registerProductRoutes(router chi.Router, prHandler *ProductHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", prHandler.listProducts)
		pr.Get("/{id}", prHandler.getProduct)

		pr.Group(func(protected chi.Router) {
			protected.Use(RequirePrincipal)
			protected.Post("/", prHandler.createProduct)
			protected.Post("/import", prHandler.importAllProducts)
			protected.Post("/import/{id}", prHandler.importProduct)
			protected.Put("/{id}", prHandler.updateProduct)
		})
	})
}

package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "horoscope/docs"
)

// RegisterSwaggerRoutes serves the generated OpenAPI document and its UI.
func RegisterSwaggerRoutes(r chi.Router) {
	toIndex := http.RedirectHandler("/swagger/index.html", http.StatusMovedPermanently)
	r.Handle("/swagger", toIndex)
	r.Handle("/swagger/", toIndex)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(false),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
		httpSwagger.PersistAuthorization(true),
	))
}

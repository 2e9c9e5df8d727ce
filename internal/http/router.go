package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/finco/internal/config"
	"github.com/MrJamesThe3rd/finco/internal/http/advisor"
	"github.com/MrJamesThe3rd/finco/internal/http/ledger"
	"github.com/MrJamesThe3rd/finco/internal/http/transaction"
	"github.com/MrJamesThe3rd/finco/internal/http/transfer"
)

func New(
	cfg config.Server,
	ledgerV1 *ledger.Handler,
	transactionsV1 *transaction.Handler,
	transferV1 *transfer.Handler,
	advisorV1 *advisor.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/ledger", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			ledgerV1.Routes(r)
		})

		r.Route("/bills", ledgerV1.BillRoutes)

		r.Route("/goals", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			ledgerV1.GoalRoutes(r)
		})

		r.Get("/dashboard", ledgerV1.Dashboard)

		r.Route("/transactions", transactionsV1.Routes)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			transferV1.Routes(r)
		})

		r.Route("/advisor", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			advisorV1.Routes(r)
		})
	})

	return router
}

package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/arthapay/payroll-backend-go/internal/handler/http/middleware"
	"github.com/arthapay/payroll-backend-go/internal/pkg/jwt"
)

func NewRouter(jwtService jwt.Service, payrollHandler PayrollHandler, statutoryHandler StatutoryHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "arthapay-payroll"),
		slog.String("version", "v1.0.0"),
		slog.String("env", "development"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/payroll", func(r chi.Router) {
				r.Route("/runs", func(r chi.Router) {
					r.Post("/", payrollHandler.CreateRun)
					r.Get("/", payrollHandler.ListRuns)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", payrollHandler.GetRun)
						r.Get("/records", payrollHandler.ListRecords)
						r.Post("/finalize", payrollHandler.FinalizeRun)
						r.Post("/revert", payrollHandler.RevertRun)

						// Statutory artifacts generated from this run
						r.Get("/ecr", statutoryHandler.GenerateECR)
						r.Get("/esi-challan", statutoryHandler.GenerateESIChallan)
						r.Get("/files", statutoryHandler.ListRunFiles)
					})
				})

				r.Get("/summary", payrollHandler.GetSummary)
			})

			r.Route("/statutory", func(r chi.Router) {
				r.Route("/slabs", func(r chi.Router) {
					r.Get("/", statutoryHandler.ListSlabs)

					// Admin only
					r.Group(func(r chi.Router) {
						r.Use(middleware.AdminOnly)
						r.Post("/", statutoryHandler.CreateSlab)
						r.Delete("/{id}", statutoryHandler.DeactivateSlab)
					})
				})

				r.Get("/form24q", statutoryHandler.GenerateForm24Q)

				r.Route("/form16/{employeeID}", func(r chi.Router) {
					r.Get("/", statutoryHandler.GetForm16)
					r.Get("/pdf", statutoryHandler.DownloadForm16PDF)
				})

				r.Get("/files/{id}/download", statutoryHandler.DownloadFile)

				r.Route("/deadlines", func(r chi.Router) {
					r.Get("/", statutoryHandler.ListDeadlines)
					r.Post("/{id}/file", statutoryHandler.MarkDeadlineFiled)
				})
			})
		})
	})
	return r
}

package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/natours-api/internal/api"
	apiMiddleware "github.com/phrazzld/natours-api/internal/api/middleware"
	"github.com/phrazzld/natours-api/internal/api/shared"
	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/fault"
)

// securityHeaders are set on every response.
var securityHeaders = map[string]string{
	"Content-Security-Policy":           "default-src 'self'",
	"Cross-Origin-Opener-Policy":        "same-origin",
	"Cross-Origin-Resource-Policy":      "same-origin",
	"Referrer-Policy":                   "no-referrer",
	"Strict-Transport-Security":         "max-age=15552000; includeSubDomains",
	"X-Content-Type-Options":            "nosniff",
	"X-DNS-Prefetch-Control":            "off",
	"X-Download-Options":                "noopen",
	"X-Frame-Options":                   "SAMEORIGIN",
	"X-Permitted-Cross-Domain-Policies": "none",
	"X-XSS-Protection":                  "0",
}

// setupRouter builds the router with every route and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()
	rsp := app.responder

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.metrics.Middleware)
	r.Use(apiMiddleware.Trace(app.logger))
	r.Use(apiMiddleware.Recoverer(rsp))
	for name, value := range securityHeaders {
		r.Use(middleware.SetHeader(name, value))
	}
	if app.config.IsDevelopment() {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.RequestSize(shared.MaxBodyBytes))

	limiter := apiMiddleware.NewRateLimiter(app.config.RateLimit.Requests, app.config.RateLimit.Window(), rsp)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.authService, rsp)

	tourHandler := api.NewTourHandler(app.tourService)
	userHandler := api.NewUserHandler(app.userService)
	authHandler := api.NewAuthHandler(app.authService)

	r.Route("/api", func(r chi.Router) {
		r.Use(limiter.Middleware)

		r.Route("/v1/tours", func(r chi.Router) {
			r.With(authMiddleware.Protect).Get("/", rsp.Handle(tourHandler.ListTours))
			r.Post("/", rsp.Handle(tourHandler.CreateTour))
			r.Get("/top-5-cheap", rsp.Handle(tourHandler.TopCheapTours))
			r.Get("/tour-stats", rsp.Handle(tourHandler.TourStats))
			r.Get("/monthly-plan/{year}", rsp.Handle(tourHandler.MonthlyPlan))
			r.Get("/{id}", rsp.Handle(tourHandler.GetTour))
			r.Patch("/{id}", rsp.Handle(tourHandler.UpdateTour))
			r.With(
				authMiddleware.Protect,
				authMiddleware.RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide),
			).Delete("/{id}", rsp.Handle(tourHandler.DeleteTour))
		})

		r.Route("/v1/users", func(r chi.Router) {
			r.Post("/signup", rsp.Handle(authHandler.Signup))
			r.Post("/login", rsp.Handle(authHandler.Login))
			r.Post("/forgotPassword", rsp.Handle(authHandler.ForgotPassword))
			r.Patch("/resetPassword/{token}", rsp.Handle(authHandler.ResetPassword))

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Protect)
				r.Get("/me", rsp.Handle(userHandler.GetMe))
				r.Patch("/updateMyPassword", rsp.Handle(authHandler.UpdatePassword))
				r.Patch("/updateMe", rsp.Handle(userHandler.UpdateMe))
				r.Delete("/deleteMe", rsp.Handle(userHandler.DeleteMe))

				r.Group(func(r chi.Router) {
					r.Use(authMiddleware.RestrictTo(domain.RoleAdmin))
					r.Get("/", rsp.Handle(userHandler.ListUsers))
					r.Get("/{id}", rsp.Handle(userHandler.GetUser))
					r.Patch("/{id}", rsp.Handle(userHandler.UpdateUser))
					r.Delete("/{id}", rsp.Handle(userHandler.DeleteUser))
				})
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	notFound := rsp.Handle(func(w http.ResponseWriter, r *http.Request) error {
		return fault.Errorf(http.StatusNotFound, "Can't find %s on this server!", r.URL.Path)
	})
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	return r
}

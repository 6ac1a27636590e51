package main

import (
	"net/http"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/api"
	apiMiddleware "github.com/alexa-mart-pipe/sword-be-challenge/internal/api/middleware"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/service/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)

	authHandler := api.NewAuthHandler(app.userService, app.tokens, app.logger)
	userHandler := api.NewUserHandler(app.userService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.tokens)

	// Public endpoints
	r.Post("/login", authHandler.Login)
	r.Post("/user", userHandler.CreateUser)
	r.Get("/health", api.Health)

	// Protected routes
	r.Route("/task", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.With(authMiddleware.Require(auth.TechniciansOnly)).Post("/", taskHandler.CreateTask)
		r.With(authMiddleware.Require(auth.TaskUsers)).Get("/all", taskHandler.ListTasks)
		r.With(authMiddleware.Require(auth.TechniciansOnly)).Patch("/{"+api.TaskIDParam+"}", taskHandler.UpdateTask)
		r.With(authMiddleware.Require(auth.ManagersOnly)).Delete("/{"+api.TaskIDParam+"}", taskHandler.DeleteTask)
	})

	return r
}

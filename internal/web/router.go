// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

// Package web exposes the authentication flows over HTTP.
//
// Sign-in endpoints answer every failure with 401 and an empty JSON object,
// so a caller learns nothing about which step failed. The cause is logged
// with its error code instead.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/drivent/drivent/internal/auth"
	"github.com/drivent/drivent/internal/observability"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// AuthService is the subset of *auth.Service the handlers call.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*auth.Result, error)
	LoginWithGitHub(ctx context.Context, code string) (*auth.Result, error)
	SignUp(ctx context.Context, email, password string) (*auth.PublicUser, error)
}

// Deps are the collaborators of the router.
type Deps struct {
	Auth    AuthService
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

type handler struct {
	auth    AuthService
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewRouter builds the public HTTP API.
func NewRouter(deps Deps) http.Handler {
	h := &handler{auth: deps.Auth, metrics: deps.Metrics, logger: deps.Logger}
	if h.logger == nil {
		h.logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger, h.metrics))
	r.Use(recoverer(h.logger))

	r.Get("/health", h.health)
	r.Post("/auth/sign-in", h.signIn)
	r.Post("/auth/github", h.gitHub)
	r.Post("/users", h.signUp)

	return r
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package api, in this file, wraps internal/platform/authn.Service with a
// hand-written HTTP surface. Token issuance/rotation isn't a ModelSpec-backed
// entity — it has no REST CRUD shape corebase.Controller maps onto — so it
// gets its own small handler in the same style as the liveness/readiness
// probes in health.go, rather than forcing it through the generic Controller.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corebase/corebase/internal/demo/account"
	"github.com/corebase/corebase/internal/platform/apperr"
	"github.com/corebase/corebase/internal/platform/authn"
	"github.com/corebase/corebase/internal/platform/respond"
	requestutil "github.com/corebase/corebase/internal/platform/request"
	"github.com/corebase/corebase/internal/platform/sec"
	"github.com/corebase/corebase/pkg/corebase"
)

// AuthHandler implements the login/refresh/logout endpoints, resolving an
// account by email (system-scoped, across every tenant) before handing off
// to authn.Service for token issuance.
type AuthHandler struct {
	accounts *corebase.MultiTenantService[account.Account]
	tokens   *authn.Service
	logger   *slog.Logger
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(accounts *corebase.MultiTenantService[account.Account], tokens *authn.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type logoutRequest struct {
	UserID string `json:"userId"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterRoutes mounts /login, /refresh and /logout under router.
func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/login", h.login)
	router.Post("/refresh", h.refresh)
	router.Post("/logout", h.logout)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := requestutil.DecodeJSON(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}

	acc, err := h.findByEmail(r.Context(), body.Email)
	if err != nil {
		respond.Error(w, r, apperr.Unauthorized("invalid email or password"))
		return
	}
	if !sec.CheckPasswordHash(body.Password, acc.PasswordHash) {
		respond.Error(w, r, apperr.Unauthorized("invalid email or password"))
		return
	}

	pair, err := h.tokens.IssueTokens(r.Context(), acc.Id.String(), acc.OrgId.String(), sec.RoleMember)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var body refreshRequest
	if err := requestutil.DecodeJSON(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}
	pair, err := h.tokens.Rotate(r.Context(), body.RefreshToken, sec.RoleMember)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	var body logoutRequest
	if err := requestutil.DecodeJSON(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := h.tokens.Logout(r.Context(), body.UserID); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

// findByEmail looks an account up across every tenant, using the system
// context so the tenant scoper's org filter doesn't apply — login happens
// before the caller's org is known.
func (h *AuthHandler) findByEmail(ctx context.Context, email string) (account.Account, error) {
	uc := corebase.SystemUserContext()
	found, err := h.accounts.FindOne(ctx, uc, corebase.QueryOptions{
		Filters: map[string]corebase.Predicate{"email": corebase.Eq(email)},
	})
	if err != nil {
		return account.Account{}, err
	}
	if found == nil {
		return account.Account{}, apperr.NotFound("Account")
	}
	return *found, nil
}

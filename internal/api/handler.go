// Package api exposes the accounts service over HTTP with gin.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Wang-tianhao/vibrant-accounts/internal/models"
	"github.com/Wang-tianhao/vibrant-accounts/jwtauth"
)

// Accounts is the business layer behind the handlers.
type Accounts interface {
	Authenticate(ctx context.Context, email, plaintext string) (*models.User, error)
	Register(ctx context.Context, email, name, plaintext string) (*models.User, error)
	List(ctx context.Context, after int64, limit int) ([]models.User, error)
}

// Pinger reports storage reachability for the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the HTTP API.
type Handler struct {
	accounts Accounts
	issuer   *jwtauth.Issuer
	pinger   Pinger
	log      zerolog.Logger
	now      func() time.Time
}

// NewHandler creates a Handler issuing tokens with issuer.
func NewHandler(accounts Accounts, issuer *jwtauth.Issuer, pinger Pinger, log zerolog.Logger) *Handler {
	return &Handler{
		accounts: accounts,
		issuer:   issuer,
		pinger:   pinger,
		log:      log,
		now:      time.Now,
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// tokenRequest only rejects absent keys; empty values reach Authenticate
// and fail as invalid credentials.
type tokenRequest struct {
	Email    *string `json:"email" binding:"required"`
	Password *string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type listRequest struct {
	Limit int   `form:"limit"`
	After int64 `form:"after"`
}

type listResponse struct {
	Users []models.User `json:"users"`
}

// Register handles POST /user.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Token handles POST /auth/token.
func (h *Handler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	user, err := h.accounts.Authenticate(c.Request.Context(), *req.Email, *req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, err := h.issuer.Issue(user.Email, h.now())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tokenResponse{Token: token})
}

// List handles GET /users. The Gate runs first, so claims are always present.
func (h *Handler) List(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if claims, ok := jwtauth.GetClaims(c.Request.Context()); ok {
		h.logger(c).Debug().Str("subject", claims.Subject).Msg("listing users")
	}

	users, err := h.accounts.List(c.Request.Context(), req.After, req.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listResponse{Users: users})
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	if h.pinger != nil {
		if err := h.pinger.Ping(c.Request.Context()); err != nil {
			h.logger(c).Error().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) logger(c *gin.Context) *zerolog.Logger {
	l := h.log
	if id, ok := jwtauth.GetRequestID(c.Request.Context()); ok {
		l = l.With().Str("request_id", id).Logger()
	}
	return &l
}

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Wang-tianhao/vibrant-accounts/internal/accounts"
	"github.com/Wang-tianhao/vibrant-accounts/internal/common"
)

// Reasons reported to clients. Anything not listed is an internal error.
const (
	ReasonInvalidCredentials = "Invalid credentials"
	ReasonAlreadyExists      = "Resource already exists"
	ReasonInternal           = "Internal server error"
)

// ErrorPayload is the body of every error response.
type ErrorPayload struct {
	Reason string `json:"reason"`
}

// respondError maps err to a status and a fixed reason. Details only go to the log.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, accounts.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorPayload{Reason: ReasonInvalidCredentials})
	case errors.Is(err, common.ErrAlreadyExists):
		h.logger(c).Warn().Err(err).Msg("cannot register the user")
		c.AbortWithStatusJSON(http.StatusConflict, ErrorPayload{Reason: ReasonAlreadyExists})
	default:
		h.logger(c).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("responding with internal error")
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorPayload{Reason: ReasonInternal})
	}
}

// respondBadRequest reports a request that could not be decoded.
func respondBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorPayload{Reason: err.Error()})
}

package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	licensedomain "github.com/starter-spark/kitclaim/internal/license/domain"
	"github.com/starter-spark/kitclaim/internal/observability/logger"
	productdomain "github.com/starter-spark/kitclaim/internal/product/domain"
)

type apiError struct {
	Status  int
	Code    string
	Message string
}

func (e *apiError) Error() string { return e.Code }

var (
	ErrUnauthorized = &apiError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "authentication required"}
	ErrNotFound     = &apiError{Status: http.StatusNotFound, Code: "not_found", Message: "resource not found"}
	ErrRateLimited  = &apiError{Status: http.StatusTooManyRequests, Code: "rate_limited", Message: "too many requests, slow down"}
)

func invalidRequestError() error {
	return &apiError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "request body could not be parsed"}
}

func newValidationError(field, code, message string) error {
	return &apiError{Status: http.StatusBadRequest, Code: field + "." + code, Message: message}
}

// conflictMessages map the terminal-state sentinels to the copy users see.
// The self/other distinction is deliberate so the UI can soften the former.
var conflictMessages = map[error]string{
	licensedomain.ErrAlreadyClaimedBySelf:  "you already claimed this kit",
	licensedomain.ErrAlreadyClaimedByOther: "this license was already claimed by another account",
	licensedomain.ErrAlreadyRejected:       "this license was rejected and can no longer be claimed",
	licensedomain.ErrAlreadyProcessed:      "this license was just processed by another request",
}

// AbortWithError maps a domain error onto an HTTP response. Unknown errors
// are logged with context and surfaced as a generic 500 so storage internals
// never leak.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr.Message})
		return
	}

	switch {
	case licensedomain.IsValidation(err):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
	case errors.Is(err, licensedomain.ErrInvalidActor):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, licensedomain.ErrNotFound), errors.Is(err, productdomain.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "license not found"})
	case errors.Is(err, licensedomain.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "this license belongs to a different purchase email"})
	case licensedomain.IsConflict(err):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": conflictMessages[flattenConflict(err)]})
	default:
		logger.FromContext(c.Request.Context()).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "something went wrong, please try again"})
	}
}

func flattenConflict(err error) error {
	for sentinel := range conflictMessages {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return licensedomain.ErrAlreadyProcessed
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, licensedomain.ErrInvalidID):
		return "invalid license id"
	case errors.Is(err, licensedomain.ErrInvalidCode):
		return "invalid activation code"
	case errors.Is(err, licensedomain.ErrInvalidToken):
		return "invalid claim link"
	case errors.Is(err, licensedomain.ErrInvalidAction):
		return "action must be claim or reject"
	case errors.Is(err, licensedomain.ErrEmptyBatch):
		return "licenseIds must not be empty"
	case errors.Is(err, licensedomain.ErrDuplicateBatch):
		return "licenseIds must not contain duplicates"
	default:
		return "invalid request"
	}
}

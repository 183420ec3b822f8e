package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/linksense/domain"
	"github.com/satriahrh/linksense/domain/repositories"
	"github.com/satriahrh/linksense/internal/auth"
)

const (
	remediationSwitchCredential = "switch_credential"
	remediationSelectCredential = "select_credential"
)

// errorStatus maps an error from the services to a status and response body.
func errorStatus(err error) (int, ErrorResponse) {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()}
	case errors.Is(err, domain.ErrNoCredential):
		return http.StatusBadRequest, ErrorResponse{
			Error:       "no_credential",
			Message:     err.Error(),
			Remediation: remediationSelectCredential,
		}
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, ErrorResponse{Error: "invalid_token", Message: "Invalid or expired media token"}
	case errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()}
	case errors.Is(err, domain.ErrTeaserFailed):
		return http.StatusBadGateway, ErrorResponse{
			Error:       "teaser_failed",
			Message:     domain.ErrTeaserFailed.Error(),
			Remediation: remediationSwitchCredential,
		}
	}

	switch domain.KindOf(err) {
	case domain.KindRateLimited:
		return http.StatusTooManyRequests, ErrorResponse{
			Error:       string(domain.KindRateLimited),
			Message:     err.Error(),
			Remediation: remediationSwitchCredential,
		}
	case domain.KindInvalidRequest:
		return http.StatusBadRequest, ErrorResponse{Error: string(domain.KindInvalidRequest), Message: err.Error()}
	case domain.KindModelUnavailable:
		return http.StatusNotFound, ErrorResponse{Error: string(domain.KindModelUnavailable), Message: err.Error()}
	case domain.KindParseFailure, domain.KindEmptyResponse:
		return http.StatusBadGateway, ErrorResponse{Error: string(domain.KindOf(err)), Message: err.Error()}
	}

	return http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: err.Error()}
}

func (h *Handler) fail(c echo.Context, err error) error {
	status, body := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err))
	} else {
		h.logger.Warn("Request rejected",
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err))
	}
	return c.JSON(status, body)
}

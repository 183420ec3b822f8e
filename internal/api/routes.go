package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/linksense/domain/repositories"
	"github.com/satriahrh/linksense/internal/auth"
	"github.com/satriahrh/linksense/internal/websocket"
	"github.com/satriahrh/linksense/usecase"
)

// Handler serves the HTTP API
type Handler struct {
	summaries *usecase.SummaryService
	teasers   *usecase.TeaserService
	creds     repositories.CredentialSelector
	signer    *auth.Signer
	hub       *websocket.Hub
	logger    *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(
	summaries *usecase.SummaryService,
	teasers *usecase.TeaserService,
	creds repositories.CredentialSelector,
	signer *auth.Signer,
	hub *websocket.Hub,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		summaries: summaries,
		teasers:   teasers,
		creds:     creds,
		signer:    signer,
		hub:       hub,
		logger:    logger,
	}
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, h *Handler) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "linksense",
		})
	})

	v1 := e.Group("/api/v1")

	v1.POST("/summaries", h.createSummaries)
	v1.GET("/summaries/:id", h.getSummaries)
	v1.GET("/summaries/:id/results/:index/export", h.exportSummary)

	v1.POST("/teasers", h.createTeaser)
	v1.GET("/media/:id", h.getMedia)

	v1.GET("/credentials", h.listCredentials)
	v1.POST("/credentials/select", h.selectCredential)

	e.GET("/ws/voice", func(c echo.Context) error {
		return websocket.HandleVoice(h.hub, c, h.logger)
	})
}

func (h *Handler) createSummaries(c echo.Context) error {
	var req SummarizeRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error("Failed to bind summarize request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	batch, err := h.summaries.Run(c.Request().Context(), req.URLs, req.Style, req.Language)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, newBatchResponse(batch))
}

func (h *Handler) getSummaries(c echo.Context) error {
	batch, err := h.summaries.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, newBatchResponse(batch))
}

func (h *Handler) exportSummary(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "index must be an integer",
		})
	}

	text, filename, err := h.summaries.Export(c.Request().Context(), c.Param("id"), index)
	if err != nil {
		return h.fail(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

func (h *Handler) createTeaser(c echo.Context) error {
	var req TeaserRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error("Failed to bind teaser request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	teaser, err := h.teasers.Create(c.Request().Context(), usecase.TeaserRequest{
		BatchID: req.BatchID,
		Index:   req.Index,
		Text:    req.Text,
	})
	if err != nil {
		return h.fail(c, err)
	}

	token, expiresAt, err := h.signer.Issue(teaser.MediaID)
	if err != nil {
		return h.fail(c, fmt.Errorf("failed to sign media token: %w", err))
	}

	return c.JSON(http.StatusCreated, TeaserResponse{
		MediaID:   teaser.MediaID,
		MediaURL:  "/api/v1/media/" + url.PathEscape(teaser.MediaID) + "?token=" + url.QueryEscape(token),
		MIMEType:  teaser.MIMEType,
		Size:      teaser.Size,
		ExpiresAt: expiresAt,
	})
}

func (h *Handler) getMedia(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.signer.Validate(c.QueryParam("token"), id); err != nil {
		return h.fail(c, err)
	}

	rc, contentType, err := h.teasers.Media(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	defer rc.Close()

	return c.Stream(http.StatusOK, contentType, rc)
}

func (h *Handler) listCredentials(c echo.Context) error {
	ctx := c.Request().Context()
	resp := CredentialsResponse{
		Available:   h.creds.Available(ctx),
		HasSelected: h.creds.HasSelected(ctx),
	}
	if resp.HasSelected {
		if cred, err := h.creds.Current(ctx); err == nil {
			resp.Selected = cred.Name
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) selectCredential(c echo.Context) error {
	var req SelectCredentialRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Credential name is required",
		})
	}

	if err := h.creds.Select(c.Request().Context(), req.Name); err != nil {
		return h.fail(c, err)
	}

	h.logger.Info("Credential switched", zap.String("name", req.Name))
	return h.listCredentials(c)
}

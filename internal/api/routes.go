package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/notetaker/domain"
	"github.com/satriahrh/notetaker/domain/entities"
	"github.com/satriahrh/notetaker/internal/auth"
	"github.com/satriahrh/notetaker/internal/report"
	"github.com/satriahrh/notetaker/internal/transcript"
)

// Analyzer is the pipeline as seen by the HTTP handlers
type Analyzer interface {
	ProcessTranscript(ctx context.Context, transcript string, includeSOAP bool) *entities.AnalysisReport
	ProcessQuickSummary(ctx context.Context, transcript string) *entities.QuickReport
}

const clientIDKey = "client_id"

type handler struct {
	analyzer    Analyzer
	includeSOAP bool
	logger      *zap.Logger
}

// InitRoutes initializes all API routes. includeSOAP is the default for
// requests that do not say whether they want a SOAP note. With a nil
// authenticator the /api/v1 routes are open.
func InitRoutes(e *echo.Echo, analyzer Analyzer, authenticator *auth.Authenticator, includeSOAP bool, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{analyzer: analyzer, includeSOAP: includeSOAP, logger: logger}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "notetaker",
		})
	})

	v1 := e.Group("/api/v1")
	if authenticator != nil {
		v1.Use(requireToken(authenticator, logger))
	}
	v1.POST("/analyze", h.analyze)
	v1.POST("/quick", h.quick)
	v1.POST("/segments", h.segments)
}

func (h *handler) analyze(c echo.Context) error {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error("Failed to bind analyze request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	if strings.TrimSpace(req.Transcript) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Transcript is required",
		})
	}

	format, err := parseFormat(req.Format)
	if err != nil {
		return invalidFormat(c, err)
	}

	includeSOAP := h.includeSOAP
	if req.IncludeSOAP != nil {
		includeSOAP = *req.IncludeSOAP
	}

	result := h.analyzer.ProcessTranscript(c.Request().Context(), req.Transcript, includeSOAP)

	h.logger.Info("Transcript analyzed",
		zap.String("request_id", requestID(c)),
		zap.String("client_id", clientID(c)),
		zap.String("report_id", result.ID),
		zap.String("format", string(format)))

	if format == report.FormatJSON {
		return c.JSON(http.StatusOK, result)
	}
	out, err := report.Export(result, format)
	if err != nil {
		return h.renderFailed(c, err)
	}
	return c.Blob(http.StatusOK, format.ContentType(), []byte(out))
}

func (h *handler) quick(c echo.Context) error {
	var req QuickRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error("Failed to bind quick request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	if strings.TrimSpace(req.Transcript) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Transcript is required",
		})
	}

	format, err := parseFormat(req.Format)
	if err != nil {
		return invalidFormat(c, err)
	}

	result := h.analyzer.ProcessQuickSummary(c.Request().Context(), req.Transcript)

	h.logger.Info("Quick summary produced",
		zap.String("request_id", requestID(c)),
		zap.String("client_id", clientID(c)),
		zap.String("report_id", result.ID))

	if format == report.FormatJSON {
		return c.JSON(http.StatusOK, result)
	}
	out, err := report.ExportQuick(result, format)
	if err != nil {
		return h.renderFailed(c, err)
	}
	return c.Blob(http.StatusOK, format.ContentType(), []byte(out))
}

func (h *handler) segments(c echo.Context) error {
	var req SegmentsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	if strings.TrimSpace(req.Transcript) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Transcript is required",
		})
	}

	return c.JSON(http.StatusOK, SegmentsResponse{
		Segments:        transcript.Segments(req.Transcript),
		PatientSegments: transcript.PatientSegments(req.Transcript),
	})
}

func (h *handler) renderFailed(c echo.Context, err error) error {
	h.logger.Error("Failed to render report", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "render_failed",
		Message: err.Error(),
	})
}

func parseFormat(name string) (report.Format, error) {
	if name == "" {
		return report.FormatJSON, nil
	}
	return report.ParseFormat(name)
}

func invalidFormat(c echo.Context, err error) error {
	var formatErr *domain.InvalidFormatError
	if !errors.As(err, &formatErr) {
		return err
	}
	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid_format",
		Message: formatErr.Error(),
	})
}

// requireToken rejects requests without a valid client bearer token
func requireToken(authenticator *auth.Authenticator, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Extract JWT token from Authorization header only
			token, found := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				logger.Warn("Request rejected: missing token", zap.String("path", c.Path()))
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "missing_token",
					Message: "JWT token is required in Authorization header",
				})
			}

			claims, err := authenticator.ValidateToken(strings.TrimSpace(token))
			if err != nil {
				logger.Warn("Request rejected: invalid token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "invalid_token",
					Message: "Invalid or expired JWT token",
				})
			}

			if claims.Role != auth.RoleClient {
				logger.Warn("Request rejected: invalid role", zap.String("role", claims.Role))
				return c.JSON(http.StatusForbidden, ErrorResponse{
					Error:   "invalid_role",
					Message: "Only client tokens may submit transcripts",
				})
			}

			c.Set(clientIDKey, claims.ClientID)
			return next(c)
		}
	}
}

func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

func clientID(c echo.Context) string {
	id, _ := c.Get(clientIDKey).(string)
	return id
}

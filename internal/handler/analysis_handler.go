package handler

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/repolens/repolens/internal/domain"
	"github.com/repolens/repolens/internal/middleware"
	"github.com/repolens/repolens/internal/port"
	"github.com/repolens/repolens/internal/service"
)

// AnalysisHandler exposes the analysis pipeline over HTTP.
type AnalysisHandler struct {
	service *service.AnalysisService
	audit   middleware.AuditWriter // nil disables per-analysis audit records
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(svc *service.AnalysisService, audit middleware.AuditWriter) *AnalysisHandler {
	return &AnalysisHandler{service: svc, audit: audit}
}

// Register sets up analysis routes.
func (h *AnalysisHandler) Register(router fiber.Router) {
	router.Get("/analyze/:owner/:repo", h.AnalyzeByPath)
	router.Post("/analyze", h.AnalyzeByURL)
}

// AnalyzeByPath analyzes the repository named by the path parameters.
func (h *AnalysisHandler) AnalyzeByPath(c fiber.Ctx) error {
	ref := domain.RepositoryRef{Owner: c.Params("owner"), Name: c.Params("repo")}
	if ref.Owner == "" || ref.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "owner and repo are required"})
	}
	return h.analyze(c, ref)
}

// AnalyzeByURL accepts a JSON body with a repository URL or owner/name pair.
func (h *AnalysisHandler) AnalyzeByURL(c fiber.Ctx) error {
	var body struct {
		URL string `json:"url"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	ref, err := domain.ParseRef(body.URL)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return h.analyze(c, ref)
}

func (h *AnalysisHandler) analyze(c fiber.Ctx, ref domain.RepositoryRef) error {
	slog.Info("analyzing repository", "repo", ref.String())

	result, err := h.service.Analyze(c.Context(), ref)
	if err != nil {
		switch {
		case errors.Is(err, port.ErrRepoNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "repository not found"})
		case errors.Is(err, port.ErrRepoUnreachable):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "repository unreachable, try again later"})
		default:
			slog.Error("analysis failed", "repo", ref.String(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "analysis failed"})
		}
	}

	h.recordAnalysisRun(c, ref, result)

	return c.JSON(result)
}

// recordAnalysisRun writes one audit entry per completed analysis.
func (h *AnalysisHandler) recordAnalysisRun(c fiber.Ctx, ref domain.RepositoryRef, result *domain.AnalysisResult) {
	if h.audit == nil {
		return
	}

	// Capture request data before leaving the handler (Fiber reuses
	// context objects).
	ip := c.IP()
	userAgent := c.Get("User-Agent")
	details, _ := json.Marshal(map[string]interface{}{
		"files":       result.Tree.CountFiles(),
		"ai_enhanced": result.Description.AIEnhanced != nil,
	})

	go func() {
		if err := h.audit.WriteAudit(
			domain.AuditActionAnalysisRun,
			"analysis",
			ref.String(),
			string(details),
			ip,
			userAgent,
		); err != nil {
			slog.Error("failed to write audit log", "error", err)
		}
	}()
}

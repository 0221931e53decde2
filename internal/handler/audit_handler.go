package handler

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/repolens/repolens/internal/domain"
)

// defaultAuditLogLimit bounds the listing when the query carries no usable
// limit. A missing or unparsable limit must never produce an unbounded query.
const defaultAuditLogLimit = 100

// AuditLogLister reads back persisted audit records.
type AuditLogLister interface {
	ListAuditLogs(ctx context.Context, limit int, action string) ([]domain.AuditLog, error)
}

// AuditHandler handles audit log endpoints.
type AuditHandler struct {
	store AuditLogLister
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(store AuditLogLister) *AuditHandler {
	return &AuditHandler{store: store}
}

// Register sets up audit routes.
func (h *AuditHandler) Register(router fiber.Router) {
	audit := router.Group("/audit")
	audit.Get("/logs", h.ListLogs)
}

// ListLogs returns audit logs with optional filtering.
func (h *AuditHandler) ListLogs(c fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultAuditLogLimit)))
	if err != nil || limit <= 0 {
		limit = defaultAuditLogLimit
	}
	action := c.Query("action", "")

	logs, err := h.store.ListAuditLogs(c.Context(), limit, action)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"logs":  logs,
		"count": len(logs),
	})
}

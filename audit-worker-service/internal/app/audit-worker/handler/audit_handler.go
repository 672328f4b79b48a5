package handler

import (
	"net/http"
	"strconv"

	"storefront/audit-worker-service/internal/app/audit-worker/entity"
	"storefront/audit-worker-service/internal/app/audit-worker/service"
	"storefront/pkg/logger"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditServiceInterface
}

func NewAuditHandler(auditService service.AuditServiceInterface) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// GetEntries обрабатывает GET /audit?entityType=&entityId=&limit=
func (h *AuditHandler) GetEntries(c *gin.Context) {
	filter := entity.AuditFilter{
		EntityType: c.Query("entityType"),
		EntityID:   c.Query("entityId"),
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, entity.MessageResponse{Message: "Invalid limit"})
			return
		}
		filter.Limit = limit
	}

	entries, err := h.auditService.ListEntries(c.Request.Context(), filter)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list audit entries")
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{
			Message: "Error fetching audit entries",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, entries)
}

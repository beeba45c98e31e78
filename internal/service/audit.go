package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/mgcampos/campus-portal-api/internal/models"
)

// writeAudit records an audit row best-effort. Audit failures never fail
// the operation they describe; they are logged and dropped.
func writeAudit(ctx context.Context, audits auditWriter, logger *zap.Logger, userID *string, action, module, description string, meta RequestMeta) {
	if audits == nil {
		return
	}
	if err := audits.Create(ctx, &models.AuditLog{
		UserID:      userID,
		Action:      action,
		Module:      module,
		Description: description,
		IPAddress:   meta.IP,
		UserAgent:   meta.UserAgent,
	}); err != nil {
		logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

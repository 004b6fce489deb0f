// Package usage appends usage and audit records to Postgres. One pair of
// records is written per generation attempt, success or failure.
package usage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campaignstack/ai-gateway/internal/shared/models"
)

// Logger writes append-only usage and audit rows. Records are never
// mutated or deleted by the gateway.
type Logger struct {
	db *sql.DB
}

// New creates a usage logger sharing the gateway's connection pool.
func New(db *sql.DB) *Logger {
	return &Logger{db: db}
}

// Record inserts one usage row and its matching audit row. IDs and
// timestamps are filled in when absent. The two inserts are deliberately
// synchronous so the log order matches the attempt order.
func (l *Logger) Record(ctx context.Context, rec *models.UsageLogRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.RequestID == "" {
		rec.RequestID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	usageQuery := `
		INSERT INTO usage_logs (
			id, request_id, tenant_id, user_id, vendor, model, module,
			prompt_tokens, completion_tokens, total_tokens, cost_usd,
			latency_ms, cache_hit, success, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := l.db.ExecContext(ctx, usageQuery,
		rec.ID,
		rec.RequestID,
		rec.TenantID,
		rec.UserID,
		rec.Vendor,
		rec.Model,
		rec.Module,
		rec.PromptTokens,
		rec.CompletionTokens,
		rec.TotalTokens,
		rec.CostUSD,
		rec.LatencyMs,
		rec.CacheHit,
		rec.Success,
		rec.ErrorMessage,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert usage log: %w", err)
	}

	audit := &models.AuditLogRecord{
		ID:        uuid.NewString(),
		RequestID: rec.RequestID,
		TenantID:  rec.TenantID,
		UserID:    rec.UserID,
		Action:    "generate",
		Vendor:    rec.Vendor,
		Model:     rec.Model,
		Module:    rec.Module,
		Success:   rec.Success,
		Error:     rec.ErrorMessage,
		CreatedAt: rec.CreatedAt,
	}

	auditQuery := `
		INSERT INTO audit_logs (
			id, request_id, tenant_id, user_id, action, vendor, model,
			module, success, error, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = l.db.ExecContext(ctx, auditQuery,
		audit.ID,
		audit.RequestID,
		audit.TenantID,
		audit.UserID,
		audit.Action,
		audit.Vendor,
		audit.Model,
		audit.Module,
		audit.Success,
		audit.Error,
		audit.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}

	return nil
}

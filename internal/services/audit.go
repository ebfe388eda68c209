package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/baharkarakas/moviecatalog/internal/models"
	repo "github.com/baharkarakas/moviecatalog/internal/repository"
	"github.com/baharkarakas/moviecatalog/internal/worker"
)

const auditTimeout = 5 * time.Second

// Auditor records mutations off the request path. A nil *Auditor, or one
// without a store, records nothing.
type Auditor struct {
	log repo.AuditLogs
	wp  *worker.Pool
}

// NewAuditor writes through wp when given, synchronously otherwise.
func NewAuditor(l repo.AuditLogs, wp *worker.Pool) *Auditor {
	return &Auditor{log: l, wp: wp}
}

func (a *Auditor) Record(entityType, entityID, actorID, action string, details map[string]any) {
	if a == nil || a.log == nil {
		return
	}
	entry := models.AuditLog{
		EntityType: entityType,
		EntityID:   &entityID,
		Action:     action,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}
	if actorID != "" {
		entry.ActorID = &actorID
	}
	write := func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()
		if err := a.log.Create(ctx, entry); err != nil {
			slog.Error("audit write", "entity", entityType, "action", action, "err", err)
		}
	}
	if a.wp == nil || !a.wp.Submit(write) {
		write()
	}
}

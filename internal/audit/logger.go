package audit

import (
	"context"
	"encoding/json"

	"github.com/BruksfildServices01/petcare-scheduler/internal/events"
	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

// Store persists journal entries; *repository.ChangeLogGormRepository
// satisfies it.
type Store interface {
	Create(ctx context.Context, entry *models.ChangeLog) error
}

type Logger struct {
	store Store
}

func New(store Store) *Logger {
	return &Logger{store: store}
}

func (l *Logger) Log(ctx context.Context, ch events.Change) error {
	var metaJSON string
	if meta, err := json.Marshal(ch); err == nil {
		metaJSON = string(meta)
	}

	entry := models.ChangeLog{
		ChangeID:      ch.ID,
		Service:       ch.Service,
		AppointmentID: ch.AppointmentID,
		Action:        ch.Action,
		Metadata:      metaJSON,
		OccurredAt:    ch.At,
	}
	if entry.Action == "" {
		entry.Action = "changed"
	}

	return l.store.Create(ctx, &entry)
}

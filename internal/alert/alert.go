// Package alert is the structured replacement for the audible alerts the
// original operator setup used: business logic emits events, sinks decide
// whether that becomes a log line, a journal row, or a push somewhere else.
package alert

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"copytrade/internal/models"
	"copytrade/internal/repository"
)

type Level string

const (
	LevelInfo Level = "info"
	LevelWarn Level = "warn"
)

// Event codes emitted by the trader and executor.
const (
	CodeOrderPlaced   = "order_placed"
	CodeOrderFailed   = "order_failed"
	CodeOrderRejected = "order_rejected"
	CodeCycleError    = "cycle_error"
	CodeTargetChange  = "target_change"
)

type Event struct {
	Level   Level
	Code    string
	Message string
	Fields  map[string]any
}

type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// LogNotifier writes events to the process log.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n *LogNotifier) Notify(_ context.Context, ev Event) {
	if n == nil || n.Logger == nil {
		return
	}
	fields := make([]zap.Field, 0, len(ev.Fields)+1)
	fields = append(fields, zap.String("code", ev.Code))
	for k, v := range ev.Fields {
		fields = append(fields, zap.Any(k, v))
	}
	if ev.Level == LevelWarn {
		n.Logger.Warn(ev.Message, fields...)
		return
	}
	n.Logger.Info(ev.Message, fields...)
}

// JournalNotifier persists events so the status API can replay them.
type JournalNotifier struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

func (n *JournalNotifier) Notify(ctx context.Context, ev Event) {
	if n == nil || n.Repo == nil {
		return
	}
	var fields datatypes.JSON
	if len(ev.Fields) > 0 {
		if raw, err := json.Marshal(ev.Fields); err == nil {
			fields = datatypes.JSON(raw)
		}
	}
	item := &models.AlertEvent{
		Level:   string(ev.Level),
		Code:    ev.Code,
		Message: ev.Message,
		Fields:  fields,
	}
	if err := n.Repo.InsertAlertEvent(ctx, item); err != nil && n.Logger != nil {
		n.Logger.Warn("alert journal insert failed", zap.Error(err))
	}
}

// Multi fans an event out to every sink.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, ev)
		}
	}
}

package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes events to an slog.Logger at Debug level, errors at Warn.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("category", event.Category.String()),
		slog.String("source", event.Source.String()),
	}
	if event.RunID != "" {
		attrs = append(attrs, slog.String("run_id", event.RunID))
	}
	if event.DeviceID != "" {
		attrs = append(attrs, slog.String("device_id", event.DeviceID))
	}
	if event.SSID != "" {
		attrs = append(attrs, slog.String("ssid", event.SSID))
	}

	level := slog.LevelDebug
	switch {
	case event.Notification != nil:
		attrs = append(attrs,
			slog.String("notification", event.Notification.Type.String()),
			slog.String("message", event.Notification.Message),
		)
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("error_kind", event.Error.Kind),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Op != "" {
			attrs = append(attrs, slog.String("op", event.Error.Op))
		}
	}

	a.logger.LogAttrs(context.Background(), level, "hostednet", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)

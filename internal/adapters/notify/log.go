package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Writer prints each notification on its own line. The command line uses it.
type Writer struct {
	w      io.Writer
	logger *slog.Logger
}

// NewWriter creates a notifier that writes to w and logs at debug level.
func NewWriter(w io.Writer, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Writer{w: w, logger: logger.With(slog.String("component", "notify.Writer"))}
}

// Notify implements ports.Notifier.
func (n *Writer) Notify(ctx context.Context, message string) {
	if _, err := fmt.Fprintln(n.w, message); err != nil {
		n.logger.WarnContext(ctx, "failed to write notification", slog.Any("error", err))
	}

	n.logger.DebugContext(ctx, "notification", slog.String("message", message))
}

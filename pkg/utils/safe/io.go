package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/secmon-lab/foodrec/pkg/utils/logging"
)

// Close closes a resource at shutdown. Errors are logged with the resource name and otherwise
// ignored because nothing can be done about them at that point. Nil closers are skipped.
func Close(ctx context.Context, name string, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("failed to close resource", slog.String("resource", name), slog.Any("error", err))
		return
	}
	logging.From(ctx).Debug("resource closed", slog.String("resource", name))
}

package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/utils/errutil"
	"github.com/secmon-lab/foodrec/pkg/utils/logging"
)

// Dispatch runs job in a new goroutine detached from the caller's cancellation.
// The logger carried by ctx is kept. Errors and panics are logged and reported.
func Dispatch(ctx context.Context, name string, job func(ctx context.Context) error) {
	bgCtx := logging.With(context.WithoutCancel(ctx), logging.From(ctx).With("job", name))

	go func() {
		defer func() {
			if r := recover(); r != nil {
				_ = errutil.Handle(bgCtx, goerr.New("panic in background job", goerr.V("panic", r)), "background job panicked")
			}
		}()

		if err := job(bgCtx); err != nil {
			_ = errutil.Handle(bgCtx, err, "background job failed")
			return
		}
		logging.From(bgCtx).Info("background job completed")
	}()
}

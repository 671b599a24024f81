package obs

import (
	"context"
	"log"
	"time"
)

type ctxKey string

const batchIDKey ctxKey = "batch_id"

// WithBatch tags the context with the batch an operation belongs to,
// so store timings can be correlated with one generation run.
func WithBatch(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, batchIDKey, batchID)
}

// Time logs the duration and outcome of a named operation when the
// returned func runs, typically via defer.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	batchID, _ := ctx.Value(batchIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("batch=%s op=%s dur=%dms err=%v", batchID, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("batch=%s op=%s dur=%dms", batchID, name, dur.Milliseconds())
	}
}

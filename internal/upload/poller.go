package upload

import (
	"context"
	"log"
	"time"

	"github.com/rowfinder/rowfinder/internal/api"
)

const maxBackoff = 30 * time.Second

// ProgressSource fetches the server's upload progress.
type ProgressSource interface {
	UploadProgress(ctx context.Context) (api.Progress, error)
}

// Watch polls progress every interval, reporting each reading, until a
// terminal status is seen or ctx is cancelled. Poll errors back off
// exponentially up to 30s.
func Watch(ctx context.Context, source ProgressSource, interval time.Duration, report func(api.Progress)) (api.Progress, error) {
	if interval <= 0 {
		interval = defaultInterval
	}
	return poll(ctx, source, interval, false, report)
}

// poll is Watch's loop. With awaitStart set, terminal statuses are ignored
// until an in_progress reading shows the tracker belongs to this upload.
func poll(ctx context.Context, source ProgressSource, interval time.Duration, awaitStart bool, report func(api.Progress)) (api.Progress, error) {
	var last api.Progress
	failures := 0
	started := !awaitStart

	for {
		p, err := source.UploadProgress(ctx)
		wait := interval
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return last, ctx.Err()
			}
			failures++
			wait = calculateBackoff(failures, interval)
			log.Printf("upload progress poll failed (attempt %d, retry in %v): %v", failures, wait, err)
		default:
			failures = 0
			if p.Status == api.ProgressInProgress {
				started = true
			}
			if started {
				last = p
				if report != nil {
					report(p)
				}
				if p.Status.Terminal() {
					return p, nil
				}
			}
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return last, ctx.Err()
		case <-timer.C:
		}
	}
}

// calculateBackoff returns interval doubled per consecutive failure, capped
// at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}

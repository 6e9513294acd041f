package charmatrix

import (
	"context"
	"time"
)

// WatchResize polls the terminal size every interval and reports changes.
//
// The returned channel holds at most one value. A new size replaces an
// unread one, so a slow reader only ever sees the latest size. Read errors
// are logged and retried on the next tick. The channel is closed once ctx is
// done.
func WatchResize(ctx context.Context, t Terminal, interval time.Duration) <-chan TerminalDimensions {
	events := make(chan TerminalDimensions, 1)
	go func() {
		defer close(events)

		last, err := t.Size()
		if err != nil {
			logger.WithError(err).Warn("reading terminal size")
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			dims, err := t.Size()
			if err != nil {
				logger.WithError(err).Warn("reading terminal size")
				continue
			}
			if dims == last {
				continue
			}
			last = dims
			logger.WithField("cols", dims.Width).WithField("rows", dims.Height).Debug("terminal resized")

			select {
			case events <- dims:
			default:
				// replace the unread size
				select {
				case <-events:
				default:
				}
				events <- dims
			}
		}
	}()
	return events
}

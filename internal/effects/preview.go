package effects

import (
	"context"
	"time"

	"github.com/ivlev/slidestudio/internal/layout"
)

// Scheduler delivers animation ticks. NextFrame blocks until the next tick
// and returns its timestamp, or returns ctx.Err() once ctx is done.
type Scheduler interface {
	NextFrame(ctx context.Context) (time.Time, error)
}

// TickerScheduler ticks at a fixed interval on the wall clock.
type TickerScheduler struct {
	ticker *time.Ticker
}

func NewTickerScheduler(fps int) *TickerScheduler {
	if fps <= 0 {
		fps = 60
	}
	return &TickerScheduler{ticker: time.NewTicker(time.Second / time.Duration(fps))}
}

func (s *TickerScheduler) NextFrame(ctx context.Context) (time.Time, error) {
	select {
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	case t := <-s.ticker.C:
		return t, nil
	}
}

func (s *TickerScheduler) Stop() { s.ticker.Stop() }

// Progress maps elapsed preview time to [0, 1].
func Progress(elapsed time.Duration, durationSec float64) float64 {
	if durationSec <= 0 {
		return 1
	}
	return clamp01(elapsed.Seconds() / durationSec)
}

// Preview is the live-preview loop. With Loop set the sequence is unbounded:
// progress returns to 0 after reaching 1.
type Preview struct {
	Direction layout.Direction
	Duration  float64
	Loop      bool
	Scheduler Scheduler
}

// Run calls onFrame once per tick on the calling goroutine. It returns nil
// when a non-looping preview reaches progress 1, and ctx.Err() when
// cancelled; onFrame is never called after Run returns.
func (p *Preview) Run(ctx context.Context, onFrame func(progress float64, t Transform)) error {
	start, err := p.Scheduler.NextFrame(ctx)
	if err != nil {
		return err
	}
	now := start
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		progress := Progress(now.Sub(start), p.Duration)
		onFrame(progress, TransformAt(p.Direction, progress))

		if progress >= 1 {
			if !p.Loop {
				return nil
			}
			start = now
		}

		now, err = p.Scheduler.NextFrame(ctx)
		if err != nil {
			return err
		}
	}
}

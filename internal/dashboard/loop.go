package dashboard

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rileyhilliard/pvdash/internal/logger"
)

// Loop drives an Engine without a terminal UI. Each cycle's completion arms
// exactly one timer for the next, so cycles never overlap.
type Loop struct {
	engine  *Engine
	out     io.Writer
	log     logger.Logger
	maxRuns int
}

// NewLoop creates a headless loop printing one line per cycle to out.
// A nil out prints nothing.
func NewLoop(engine *Engine, out io.Writer) *Loop {
	return &Loop{engine: engine, out: out, log: logger.Noop()}
}

// SetLogger sets the loop logger.
func (l *Loop) SetLogger(log logger.Logger) {
	if log != nil {
		l.log = log
	}
}

// SetMaxCycles stops the loop after n cycles. Zero runs until cancelled.
func (l *Loop) SetMaxCycles(n int) {
	l.maxRuns = n
}

// Run polls until ctx is cancelled or the cycle limit is reached. Fetch
// failures never stop the loop; they only shorten the next wait.
func (l *Loop) Run(ctx context.Context) error {
	runs := 0
	for {
		if ctx.Err() != nil {
			return nil
		}

		o := l.engine.Cycle(ctx)
		runs++
		if ctx.Err() != nil {
			// Cancelled mid-cycle; the failure is ours, not the upstream's.
			return nil
		}
		if l.out != nil {
			fmt.Fprintln(l.out, FormatLine(o))
		}

		if l.maxRuns > 0 && runs >= l.maxRuns {
			return nil
		}

		l.log.Debug("next cycle in %s", o.NextDelay)
		timer := time.NewTimer(o.NextDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

package stage

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Headless configures RunHeadless.
type Headless struct {
	// Ticks is the number of ticks to run. Zero runs until the context is
	// cancelled.
	Ticks int
	// TPS paces the producer. Zero runs unpaced with a fixed 1/60 s step.
	TPS int
	// Produce is called on the event goroutine before each commit. It may
	// mutate the tree.
	Produce func(tick int) error
	// Consume is called on the consumer goroutine for every published frame.
	// The frame's damage is acknowledged after it returns.
	Consume func(f *Frame) error
}

// RunHeadless drives s without a window: a producer goroutine mutates and
// commits, an update goroutine runs the pipeline and a consumer goroutine
// reads the published frames. The first error stops all three. Cancelling
// ctx returns its error.
func RunHeadless(ctx context.Context, s *Scene, h Headless) error {
	dt := float32(1.0 / 60)
	if h.TPS > 0 {
		dt = 1 / float32(h.TPS)
	}
	g, ctx := errgroup.WithContext(ctx)
	ticks := make(chan struct{}, 1)
	frames := make(chan *Frame, 1)

	g.Go(func() error {
		defer close(ticks)
		var pace <-chan time.Time
		if h.TPS > 0 {
			t := time.NewTicker(time.Second / time.Duration(h.TPS))
			defer t.Stop()
			pace = t.C
		}
		for i := 0; h.Ticks == 0 || i < h.Ticks; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if h.Produce != nil {
				if err := h.Produce(i); err != nil {
					return err
				}
			}
			s.Commit()
			select {
			case ticks <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			if pace != nil {
				select {
				case <-pace:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
		return nil
	})

	g.Go(func() error {
		defer close(frames)
		for range ticks {
			f := s.Update(dt)
			select {
			case frames <- f:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	})

	g.Go(func() error {
		for f := range frames {
			if h.Consume != nil {
				if err := h.Consume(f); err != nil {
					return err
				}
			}
			s.AcknowledgeDamage(f.Number, f.Damage.Rects)
		}
		return nil
	})

	return g.Wait()
}

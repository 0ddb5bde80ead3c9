package requests

import (
	"context"
	"sync"
	"time"

	"github.com/medshare/portal-dashboard/pkg/logger"
	"github.com/medshare/portal-dashboard/pkg/types"
)

// DebouncedValidator re-runs classification after a window of input
// inactivity. Every new input cancels the previously scheduled check;
// only the result of a check that was still current when it finished
// is applied. While a check is pending or its snapshot refresh is in
// flight the validator reports a transient checking state and
// consumers must block submission.
type DebouncedValidator struct {
	validator *Validator
	window    time.Duration
	logger    *logger.Logger

	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
	pending    bool
	inFlight   int
	last       *types.Classification
}

// NewDebouncedValidator creates a new debounced validator
func NewDebouncedValidator(validator *Validator, window time.Duration, log *logger.Logger) *DebouncedValidator {
	return &DebouncedValidator{
		validator: validator,
		window:    window,
		logger:    log,
	}
}

// Schedule queues a classification of raw input to run after the
// debounce window, cancelling any previously scheduled check. The
// apply callback receives the result only if no newer input arrived
// in the meantime; apply may be nil.
func (d *DebouncedValidator) Schedule(raw string, apply func(*types.Classification)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.generation++
	d.pending = true
	generation := d.generation

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.window, func() {
		d.run(generation, raw, apply)
	})
}

// run executes one scheduled check. The result is discarded when a
// newer input superseded it while the snapshot refresh was in flight.
func (d *DebouncedValidator) run(generation uint64, raw string, apply func(*types.Classification)) {
	d.mu.Lock()
	if generation != d.generation {
		d.mu.Unlock()
		return
	}
	d.inFlight++
	d.mu.Unlock()

	result := d.validator.Classify(context.Background(), raw)

	d.mu.Lock()
	d.inFlight--
	stale := generation != d.generation
	if !stale {
		d.last = result
		d.pending = false
	}
	d.mu.Unlock()

	if stale {
		d.logger.WithComponent("validator").Debug("Discarding superseded classification result")
		return
	}

	if apply != nil {
		apply(result)
	}
}

// Checking reports whether a scheduled check is pending or in flight
func (d *DebouncedValidator) Checking() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.pending || d.inFlight > 0
}

// Latest returns the most recently applied classification with the
// current checking flag set
func (d *DebouncedValidator) Latest() *types.Classification {
	d.mu.Lock()
	defer d.mu.Unlock()

	checking := d.pending || d.inFlight > 0
	if d.last == nil {
		return &types.Classification{Checking: checking}
	}

	result := *d.last
	result.Checking = checking
	return &result
}

// Cancel stops any pending scheduled check without applying it
func (d *DebouncedValidator) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.generation++
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

package trainer

// EarlyStopping halts training once validation accuracy has stopped
// improving for Patience consecutive epochs.
type EarlyStopping struct {
	Patience int

	best      float64
	bestEpoch int
	counter   int
}

// NewEarlyStopping creates an early-stopping tracker.
func NewEarlyStopping(patience int) *EarlyStopping {
	return &EarlyStopping{Patience: patience, bestEpoch: -1}
}

// Observe records one epoch's validation accuracy and reports whether
// training should stop. Only strict improvement over the best accuracy
// seen so far resets the patience counter.
func (e *EarlyStopping) Observe(accuracy float64, epoch int) bool {
	if accuracy > e.best {
		e.best = accuracy
		e.bestEpoch = epoch
		e.counter = 0
		return false
	}

	e.counter++
	return e.counter >= e.Patience
}

// Best returns the best accuracy seen and the epoch it occurred at
// (-1 before any observation).
func (e *EarlyStopping) Best() (epoch int, accuracy float64) {
	return e.bestEpoch, e.best
}

package trainer

// Schedule adjusts the learning rate from validation feedback at the
// end of each epoch.
type Schedule interface {
	// Observe reports one epoch's validation accuracy. The returned
	// factor scales the current learning rate (1 means no change).
	// exhausted signals that the schedule has run out of useful
	// adjustments and training should stop.
	Observe(accuracy float64) (factor float64, exhausted bool)
}

// Constant keeps the learning rate fixed for the whole run.
type Constant struct{}

// Observe always returns factor 1.
func (Constant) Observe(float64) (float64, bool) { return 1, false }

// HalveOnPlateau halves the learning rate whenever validation accuracy
// has not improved for Patience consecutive epochs. After MaxHalves
// halvings (the rate is then 2^-MaxHalves of the original) the
// schedule reports itself exhausted; MaxHalves <= 0 means unlimited.
type HalveOnPlateau struct {
	Patience  int
	MaxHalves int

	best    float64
	counter int
	halves  int
}

// NewHalveOnPlateau creates a plateau schedule.
func NewHalveOnPlateau(patience, maxHalves int) *HalveOnPlateau {
	return &HalveOnPlateau{Patience: patience, MaxHalves: maxHalves}
}

// Observe implements Schedule. Improvement resets the plateau counter;
// a full plateau triggers a halving and restarts the count.
func (h *HalveOnPlateau) Observe(accuracy float64) (float64, bool) {
	if accuracy > h.best {
		h.best = accuracy
		h.counter = 0
		return 1, false
	}

	h.counter++
	if h.counter < h.Patience {
		return 1, false
	}

	h.counter = 0
	h.halves++
	return 0.5, h.MaxHalves > 0 && h.halves >= h.MaxHalves
}

// Halves returns how many times the rate has been halved so far.
func (h *HalveOnPlateau) Halves() int { return h.halves }

package trainer

import "fmt"

// ConfigError reports an invalid training configuration, detected
// before any training step runs.
type ConfigError struct {
	Field  string
	Detail string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Detail)
}

// InstabilityError reports non-finite values (NaN/Inf) found in the
// parameters or cost during training. It is fatal: the parameters are
// corrupt and the run cannot continue. Batch is -1 when the problem
// was detected at evaluation rather than inside a batch update.
type InstabilityError struct {
	Epoch int
	Batch int
}

// Error implements the error interface.
func (e *InstabilityError) Error() string {
	if e.Batch < 0 {
		return fmt.Sprintf("numerical instability: non-finite values at epoch %d evaluation", e.Epoch)
	}
	return fmt.Sprintf("numerical instability: non-finite values at epoch %d, batch %d", e.Epoch, e.Batch)
}

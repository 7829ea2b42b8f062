package nn

import "fmt"

// ShapeError reports a sample vector whose length does not match the
// network's layer sizes.
type ShapeError struct {
	Sample int    // index of the offending sample, -1 when not applicable
	Field  string // "input" or "target"
	Got    int
	Want   int
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	if e.Sample >= 0 {
		return fmt.Sprintf("sample %d: %s length %d, want %d", e.Sample, e.Field, e.Got, e.Want)
	}
	return fmt.Sprintf("%s length %d, want %d", e.Field, e.Got, e.Want)
}

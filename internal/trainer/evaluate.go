package trainer

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/adsingh-64/mlp/internal/dataset"
	"github.com/adsingh-64/mlp/internal/nn"
)

// Evaluate runs the network over data and returns the average
// per-sample cost, the number of correctly classified samples and the
// accuracy.
//
// A sample counts as correct when the argmax of the output matches the
// argmax of the target; for one-unit outputs both sides are instead
// thresholded at 0.5.
func Evaluate(net *nn.Network, data dataset.Dataset, cost nn.Cost) (avgCost float64, correct int, accuracy float64, err error) {
	if len(data) == 0 {
		return 0, 0, 0, nil
	}

	total := 0.0
	for i, sample := range data {
		output, ferr := net.Forward(sample.Input)
		if ferr != nil {
			if se, ok := ferr.(*nn.ShapeError); ok {
				se.Sample = i
			}
			return 0, 0, 0, ferr
		}
		if len(sample.Target) != net.OutputSize() {
			return 0, 0, 0, &nn.ShapeError{Sample: i, Field: "target", Got: len(sample.Target), Want: net.OutputSize()}
		}

		out := mat.NewVecDense(len(output), output)
		want := mat.NewVecDense(len(sample.Target), sample.Target)
		total += cost.Fn(out, want)

		if classify(output) == classify(sample.Target) {
			correct++
		}
	}

	avgCost = total / float64(len(data))
	accuracy = float64(correct) / float64(len(data))
	return avgCost, correct, accuracy, nil
}

// classify maps an output (or target) vector to a class index.
func classify(v []float64) int {
	if len(v) == 1 {
		if v[0] >= 0.5 {
			return 1
		}
		return 0
	}
	return floats.MaxIdx(v)
}

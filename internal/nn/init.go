package nn

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// initParameters draws initial weights and biases for the given layer
// sizes from rnd.
//
// Biases are N(0, 1). Weights are N(0, 1) scaled by 1/√fanIn, which
// keeps the pre-activation variance near 1 regardless of layer width
// and avoids saturating the sigmoid at the start of training.
func initParameters(sizes []int, rnd *rand.Rand) ([]*mat.Dense, []*mat.VecDense) {
	weights := make([]*mat.Dense, len(sizes)-1)
	biases := make([]*mat.VecDense, len(sizes)-1)

	for l := 0; l < len(sizes)-1; l++ {
		fanIn := sizes[l]
		fanOut := sizes[l+1]
		scale := 1.0 / math.Sqrt(float64(fanIn))

		wData := make([]float64, fanOut*fanIn)
		for i := range wData {
			wData[i] = rnd.NormFloat64() * scale
		}
		weights[l] = mat.NewDense(fanOut, fanIn, wData)

		bData := make([]float64, fanOut)
		for i := range bData {
			bData[i] = rnd.NormFloat64()
		}
		biases[l] = mat.NewVecDense(fanOut, bData)
	}

	return weights, biases
}

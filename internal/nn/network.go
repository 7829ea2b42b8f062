package nn

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Network is a fully connected feedforward network with sigmoid
// activations on every non-input layer.
//
// For layer l (counting the input layer as 0), weights[l] has one row
// per neuron of layer l+1 and one column per neuron of layer l, and
// biases[l] has one entry per neuron of layer l+1. The input layer
// carries no parameters. Shapes are fixed at construction; only the
// values are mutated, by the optimizer, during training.
type Network struct {
	sizes   []int
	weights []*mat.Dense
	biases  []*mat.VecDense
	cost    Cost
}

// Gradients holds per-layer cost gradients with exactly the same shapes
// as the corresponding weight matrices and bias vectors.
type Gradients struct {
	Weights []*mat.Dense
	Biases  []*mat.VecDense
}

// New creates a network with the given layer sizes, scoring output
// with cost and drawing initial parameters from rnd.
//
// sizes lists the neuron count of every layer, input first. At least
// an input and an output layer are required.
func New(sizes []int, cost Cost, rnd *rand.Rand) (*Network, error) {
	if len(sizes) < 2 {
		return nil, fmt.Errorf("need at least 2 layers, got %d", len(sizes))
	}
	for i, s := range sizes {
		if s <= 0 {
			return nil, fmt.Errorf("layer %d has invalid size %d", i, s)
		}
	}
	if cost == nil {
		return nil, fmt.Errorf("cost must not be nil")
	}
	if rnd == nil {
		return nil, fmt.Errorf("random source must not be nil")
	}

	weights, biases := initParameters(sizes, rnd)
	return &Network{
		sizes:   append([]int(nil), sizes...),
		weights: weights,
		biases:  biases,
		cost:    cost,
	}, nil
}

// Sizes returns a copy of the layer sizes, input layer first.
func (n *Network) Sizes() []int {
	return append([]int(nil), n.sizes...)
}

// NumLayers returns the number of layers, including the input layer.
func (n *Network) NumLayers() int { return len(n.sizes) }

// InputSize returns the size of the input layer.
func (n *Network) InputSize() int { return n.sizes[0] }

// OutputSize returns the size of the output layer.
func (n *Network) OutputSize() int { return n.sizes[len(n.sizes)-1] }

// Cost returns the configured cost function.
func (n *Network) Cost() Cost { return n.cost }

// Weights returns the live weight matrices, one per non-input layer.
// Mutating them mutates the network.
func (n *Network) Weights() []*mat.Dense { return n.weights }

// Biases returns the live bias vectors, one per non-input layer.
func (n *Network) Biases() []*mat.VecDense { return n.biases }

// Forward runs inference on a single input vector and returns the
// output-layer activations. It never mutates the network.
func (n *Network) Forward(input []float64) ([]float64, error) {
	if len(input) != n.InputSize() {
		return nil, &ShapeError{Sample: -1, Field: "input", Got: len(input), Want: n.InputSize()}
	}

	a := mat.NewVecDense(len(input), append([]float64(nil), input...))
	for l := range n.weights {
		var z mat.VecDense
		z.MulVec(n.weights[l], a)
		z.AddVec(&z, n.biases[l])

		out := mat.NewVecDense(z.Len(), nil)
		for i := 0; i < z.Len(); i++ {
			out.SetVec(i, Sigmoid(z.AtVec(i)))
		}
		a = out
	}

	result := make([]float64, a.Len())
	copy(result, a.RawVector().Data)
	return result, nil
}

// Backprop computes the cost gradient for a single (input, target)
// sample. The returned gradients match the parameter shapes layer by
// layer. Backprop is pure: the network is read, never written.
func (n *Network) Backprop(input, target []float64) (Gradients, error) {
	if len(input) != n.InputSize() {
		return Gradients{}, &ShapeError{Sample: -1, Field: "input", Got: len(input), Want: n.InputSize()}
	}
	if len(target) != n.OutputSize() {
		return Gradients{}, &ShapeError{Sample: -1, Field: "target", Got: len(target), Want: n.OutputSize()}
	}

	x := mat.NewDense(len(input), 1, append([]float64(nil), input...))
	y := mat.NewDense(len(target), 1, append([]float64(nil), target...))
	return n.BackpropBatch(x, y)
}

// BackpropBatch computes gradients for a whole mini-batch in matrix
// form. X holds one input per column (InputSize rows) and Y the
// matching targets (OutputSize rows). The returned gradients are the
// SUM over the batch columns; callers average by dividing by the batch
// size.
//
// The forward pass caches every layer's pre-activations and
// activations; the backward pass walks them in reverse, propagating
//
//	delta_l = (W_{l+1}ᵀ · delta_{l+1}) ⊙ σ′(z_l)
//
// from the output-layer error produced by the cost's Delta.
// BackpropBatch is pure and safe for concurrent use.
func (n *Network) BackpropBatch(X, Y mat.Matrix) (Gradients, error) {
	xr, xc := X.Dims()
	yr, yc := Y.Dims()
	if xr != n.InputSize() {
		return Gradients{}, &ShapeError{Sample: -1, Field: "input", Got: xr, Want: n.InputSize()}
	}
	if yr != n.OutputSize() {
		return Gradients{}, &ShapeError{Sample: -1, Field: "target", Got: yr, Want: n.OutputSize()}
	}
	if xc != yc {
		return Gradients{}, fmt.Errorf("batch size mismatch: %d inputs, %d targets", xc, yc)
	}
	if xc == 0 {
		return Gradients{}, fmt.Errorf("empty batch")
	}

	numWeighted := len(n.weights)

	// Forward pass, caching z and a per layer.
	acts := make([]*mat.Dense, numWeighted+1)
	zs := make([]*mat.Dense, numWeighted)
	acts[0] = mat.DenseCopyOf(X)
	for l := 0; l < numWeighted; l++ {
		var z mat.Dense
		z.Mul(n.weights[l], acts[l])
		addColVec(&z, n.biases[l])
		zs[l] = &z
		acts[l+1] = sigmoidMat(&z)
	}

	grads := Gradients{
		Weights: make([]*mat.Dense, numWeighted),
		Biases:  make([]*mat.VecDense, numWeighted),
	}

	// Output-layer error, then walk backwards.
	delta := n.cost.Delta(zs[numWeighted-1], acts[numWeighted], Y)
	for l := numWeighted - 1; l >= 0; l-- {
		var nw mat.Dense
		nw.Mul(delta, acts[l].T())
		grads.Weights[l] = &nw
		grads.Biases[l] = rowSums(delta)

		if l > 0 {
			var back mat.Dense
			back.Mul(n.weights[l].T(), delta)
			var next mat.Dense
			next.MulElem(&back, sigmoidPrimeMat(zs[l-1]))
			delta = &next
		}
	}

	return grads, nil
}

// ZeroGradients returns a zero-valued gradient set shaped like the
// network's parameters, suitable as an accumulator.
func (n *Network) ZeroGradients() Gradients {
	g := Gradients{
		Weights: make([]*mat.Dense, len(n.weights)),
		Biases:  make([]*mat.VecDense, len(n.biases)),
	}
	for l := range n.weights {
		r, c := n.weights[l].Dims()
		g.Weights[l] = mat.NewDense(r, c, nil)
		g.Biases[l] = mat.NewVecDense(n.biases[l].Len(), nil)
	}
	return g
}

// Add accumulates other into g elementwise.
func (g Gradients) Add(other Gradients) {
	for l := range g.Weights {
		g.Weights[l].Add(g.Weights[l], other.Weights[l])
		g.Biases[l].AddVec(g.Biases[l], other.Biases[l])
	}
}

// Scale multiplies every gradient entry by f.
func (g Gradients) Scale(f float64) {
	for l := range g.Weights {
		g.Weights[l].Scale(f, g.Weights[l])
		g.Biases[l].ScaleVec(f, g.Biases[l])
	}
}

// Finite reports whether every gradient entry is finite.
func (g Gradients) Finite() bool {
	for l := range g.Weights {
		if !finiteSlice(g.Weights[l].RawMatrix().Data) {
			return false
		}
		if !finiteSlice(g.Biases[l].RawVector().Data) {
			return false
		}
	}
	return true
}

// Finite reports whether every weight and bias in the network is
// finite. A false result means training has diverged and the
// parameters are corrupt.
func (n *Network) Finite() bool {
	for l := range n.weights {
		if !finiteSlice(n.weights[l].RawMatrix().Data) {
			return false
		}
		if !finiteSlice(n.biases[l].RawVector().Data) {
			return false
		}
	}
	return true
}

// StateDict exports the parameters as flat row-major float64 slices
// keyed "layer.{l}.weight" and "layer.{l}.bias". The slices are
// copies; mutating them does not affect the network.
func (n *Network) StateDict() map[string][]float64 {
	sd := make(map[string][]float64, 2*len(n.weights))
	for l := range n.weights {
		sd[fmt.Sprintf("layer.%d.weight", l)] = append([]float64(nil), n.weights[l].RawMatrix().Data...)
		sd[fmt.Sprintf("layer.%d.bias", l)] = append([]float64(nil), n.biases[l].RawVector().Data...)
	}
	return sd
}

// LoadStateDict overwrites the parameters from a state dict produced
// by StateDict. Every layer must be present with exactly the right
// number of elements.
func (n *Network) LoadStateDict(sd map[string][]float64) error {
	for l := range n.weights {
		r, c := n.weights[l].Dims()

		wKey := fmt.Sprintf("layer.%d.weight", l)
		wData, ok := sd[wKey]
		if !ok {
			return fmt.Errorf("state dict missing %q", wKey)
		}
		if len(wData) != r*c {
			return fmt.Errorf("%s: got %d elements, want %d", wKey, len(wData), r*c)
		}
		copy(n.weights[l].RawMatrix().Data, wData)

		bKey := fmt.Sprintf("layer.%d.bias", l)
		bData, ok := sd[bKey]
		if !ok {
			return fmt.Errorf("state dict missing %q", bKey)
		}
		if len(bData) != r {
			return fmt.Errorf("%s: got %d elements, want %d", bKey, len(bData), r)
		}
		copy(n.biases[l].RawVector().Data, bData)
	}
	return nil
}

// addColVec adds b to every column of m in place.
func addColVec(m *mat.Dense, b *mat.VecDense) {
	rm := m.RawMatrix()
	for i := 0; i < rm.Rows; i++ {
		bi := b.AtVec(i)
		row := rm.Data[i*rm.Stride : i*rm.Stride+rm.Cols]
		for j := range row {
			row[j] += bi
		}
	}
}

// rowSums sums m across its columns into a vector with one entry per row.
func rowSums(m *mat.Dense) *mat.VecDense {
	rm := m.RawMatrix()
	out := mat.NewVecDense(rm.Rows, nil)
	for i := 0; i < rm.Rows; i++ {
		sum := 0.0
		row := rm.Data[i*rm.Stride : i*rm.Stride+rm.Cols]
		for _, v := range row {
			sum += v
		}
		out.SetVec(i, sum)
	}
	return out
}

func finiteSlice(data []float64) bool {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

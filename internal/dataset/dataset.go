// Package dataset provides the in-memory sample collections consumed
// by the trainer: shuffling, mini-batch partitioning, train/validation
// splitting and a couple of ready-made suppliers (XOR, CSV).
package dataset

import "math/rand"

// Sample is one (input, target) training pair. Target is a one-hot
// vector for multi-class data, or a single value in (0, 1) for
// one-unit outputs.
type Sample struct {
	Input  []float64
	Target []float64
}

// Dataset is an ordered sequence of samples.
type Dataset []Sample

// Shuffle permutes the dataset in place using rnd.
func (d Dataset) Shuffle(rnd *rand.Rand) {
	rnd.Shuffle(len(d), func(i, j int) {
		d[i], d[j] = d[j], d[i]
	})
}

// Batches partitions the dataset into contiguous mini-batches of the
// given size, in order. The final batch is shorter when the dataset
// size is not a multiple of size. The batches share backing storage
// with d.
func (d Dataset) Batches(size int) []Dataset {
	if size <= 0 || len(d) == 0 {
		return nil
	}
	batches := make([]Dataset, 0, (len(d)+size-1)/size)
	for start := 0; start < len(d); start += size {
		end := min(start+size, len(d))
		batches = append(batches, d[start:end])
	}
	return batches
}

// Split divides the dataset into a head and tail portion, with frac
// (in [0, 1]) giving the tail's share. Ordering is preserved; shuffle
// first for a random split.
func (d Dataset) Split(frac float64) (head, tail Dataset) {
	n := len(d) - int(float64(len(d))*frac)
	if n < 0 {
		n = 0
	}
	if n > len(d) {
		n = len(d)
	}
	return d[:n], d[n:]
}

// Clone returns a copy of the dataset whose ordering can be mutated
// without disturbing the original. Sample vectors are shared.
func (d Dataset) Clone() Dataset {
	return append(Dataset(nil), d...)
}

// OneHot returns an n-element vector with a 1 at index label.
func OneHot(label, n int) []float64 {
	v := make([]float64, n)
	if label >= 0 && label < n {
		v[label] = 1
	}
	return v
}

// XOR returns the four-sample XOR truth table with one-unit targets.
func XOR() Dataset {
	return Dataset{
		{Input: []float64{0, 0}, Target: []float64{0}},
		{Input: []float64{0, 1}, Target: []float64{1}},
		{Input: []float64{1, 0}, Target: []float64{1}},
		{Input: []float64{1, 1}, Target: []float64{0}},
	}
}

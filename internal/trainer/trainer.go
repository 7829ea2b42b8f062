// Package trainer drives mini-batch stochastic gradient descent: it
// shuffles and partitions the training data each epoch, accumulates
// backpropagation gradients per batch, applies the update rule with
// regularization, evaluates against a validation set, and applies the
// learning-rate schedule and early stopping.
package trainer

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/adsingh-64/mlp/internal/dataset"
	"github.com/adsingh-64/mlp/internal/nn"
	"github.com/adsingh-64/mlp/internal/optim"
	"github.com/adsingh-64/mlp/internal/parallel"
)

// Config holds the hyperparameters of one training run. It is not
// mutated by the trainer.
type Config struct {
	Epochs       int     // number of passes over the training data
	BatchSize    int     // mini-batch size
	LearningRate float64 // base learning rate
	Lambda       float64 // regularization coefficient
	Momentum     float64 // momentum coefficient, 0 disables (range [0, 1))

	Penalty  optim.Penalty // defaults to NoPenalty
	Schedule Schedule      // defaults to Constant

	// EarlyStopPatience stops training after this many epochs without
	// validation improvement. 0 disables early stopping.
	EarlyStopPatience int

	// Seed drives shuffling. Runs with equal seeds, data and initial
	// parameters produce identical weight trajectories.
	Seed int64

	// Parallel enables intra-batch parallel gradient accumulation.
	// The zero value keeps accumulation sequential.
	Parallel parallel.Config

	// Progress, when set, is called after every epoch with that
	// epoch's statistics.
	Progress func(EpochStats)
}

// EpochStats is one row of the per-epoch training log.
type EpochStats struct {
	Epoch        int     // epoch index, 0-based
	ValCost      float64 // average validation cost
	Correct      int     // correctly classified validation samples
	Total        int     // validation set size
	Accuracy     float64 // Correct / Total
	LearningRate float64 // rate in effect during this epoch
}

// Result summarizes a completed (or early-stopped) training run.
// The network keeps the weights from the final epoch; BestEpoch and
// BestAccuracy report where the best validation score occurred.
type Result struct {
	History           []EpochStats
	BestEpoch         int
	BestAccuracy      float64
	StoppedEarly      bool
	FinalLearningRate float64
}

// Trainer runs mini-batch SGD over a network it owns for the duration
// of one training run.
type Trainer struct {
	net *nn.Network
	cfg Config
	opt *optim.SGD
	rnd *rand.Rand
}

// New creates a trainer for net. Configuration problems are reported
// as *ConfigError before any training happens.
func New(net *nn.Network, cfg Config) (*Trainer, error) {
	if net == nil {
		return nil, &ConfigError{Field: "network", Detail: "must not be nil"}
	}
	if cfg.Epochs <= 0 {
		return nil, &ConfigError{Field: "epochs", Detail: fmt.Sprintf("must be positive, got %d", cfg.Epochs)}
	}
	if cfg.BatchSize <= 0 {
		return nil, &ConfigError{Field: "batch size", Detail: fmt.Sprintf("must be positive, got %d", cfg.BatchSize)}
	}
	if cfg.LearningRate <= 0 {
		return nil, &ConfigError{Field: "learning rate", Detail: fmt.Sprintf("must be positive, got %g", cfg.LearningRate)}
	}
	if cfg.Lambda < 0 {
		return nil, &ConfigError{Field: "lambda", Detail: fmt.Sprintf("must be non-negative, got %g", cfg.Lambda)}
	}
	if cfg.Momentum < 0 || cfg.Momentum >= 1 {
		return nil, &ConfigError{Field: "momentum", Detail: fmt.Sprintf("must be in [0, 1), got %g", cfg.Momentum)}
	}
	if cfg.Penalty == nil {
		cfg.Penalty = optim.NoPenalty{}
	}
	if cfg.Schedule == nil {
		cfg.Schedule = Constant{}
	}

	return &Trainer{
		net: net,
		cfg: cfg,
		opt: optim.NewSGD(optim.SGDConfig{LR: cfg.LearningRate, Momentum: cfg.Momentum}),
		rnd: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Run trains the network. Each epoch reshuffles the training data,
// applies one update per mini-batch, then evaluates against validation
// (or, when validation is empty, against the training data) to drive
// the schedule and early stopping.
//
// ctx is checked at epoch boundaries only; a mid-epoch cancellation
// finishes the current epoch first. On cancellation Run returns the
// partial result alongside ctx.Err().
func (t *Trainer) Run(ctx context.Context, training, validation dataset.Dataset) (*Result, error) {
	if len(training) == 0 {
		return nil, &ConfigError{Field: "training data", Detail: "must not be empty"}
	}
	if t.cfg.BatchSize > len(training) {
		return nil, &ConfigError{
			Field:  "batch size",
			Detail: fmt.Sprintf("%d exceeds training set size %d", t.cfg.BatchSize, len(training)),
		}
	}

	evalSet := validation
	if len(evalSet) == 0 {
		evalSet = training
	}

	// Private copy so reshuffling never disturbs the caller's slice.
	work := training.Clone()
	n := len(training)

	res := &Result{BestEpoch: -1}
	var early *EarlyStopping
	if t.cfg.EarlyStopPatience > 0 {
		early = NewEarlyStopping(t.cfg.EarlyStopPatience)
	}

	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		select {
		case <-ctx.Done():
			res.FinalLearningRate = t.opt.LR()
			return res, ctx.Err()
		default:
		}

		work.Shuffle(t.rnd)
		for bi, batch := range work.Batches(t.cfg.BatchSize) {
			if err := t.updateMiniBatch(batch, n); err != nil {
				return res, fmt.Errorf("epoch %d, batch %d: %w", epoch, bi, err)
			}
			if !t.net.Finite() {
				return res, &InstabilityError{Epoch: epoch, Batch: bi}
			}
		}

		cost, correct, accuracy, err := Evaluate(t.net, evalSet, t.net.Cost())
		if err != nil {
			return res, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		if math.IsNaN(cost) || math.IsInf(cost, 0) {
			return res, &InstabilityError{Epoch: epoch, Batch: -1}
		}

		stats := EpochStats{
			Epoch:        epoch,
			ValCost:      cost,
			Correct:      correct,
			Total:        len(evalSet),
			Accuracy:     accuracy,
			LearningRate: t.opt.LR(),
		}
		res.History = append(res.History, stats)
		if accuracy > res.BestAccuracy || res.BestEpoch < 0 {
			res.BestAccuracy = accuracy
			res.BestEpoch = epoch
		}
		if t.cfg.Progress != nil {
			t.cfg.Progress(stats)
		}

		factor, exhausted := t.cfg.Schedule.Observe(accuracy)
		if factor != 1 {
			t.opt.SetLR(t.opt.LR() * factor)
		}
		if early != nil && early.Observe(accuracy, epoch) {
			res.StoppedEarly = true
			break
		}
		if exhausted {
			res.StoppedEarly = true
			break
		}
	}

	res.FinalLearningRate = t.opt.LR()
	return res, nil
}

// updateMiniBatch applies one SGD step from a single mini-batch.
// Gradients are averaged over the batch, the weight-penalty gradient
// (scaled by lambda over the full training-set size n) is added, and
// the optimizer mutates the parameters in place.
func (t *Trainer) updateMiniBatch(batch dataset.Dataset, n int) error {
	X, Y, err := t.batchMatrices(batch)
	if err != nil {
		return err
	}

	grads, err := t.accumulate(X, Y, len(batch))
	if err != nil {
		return err
	}
	grads.Scale(1.0 / float64(len(batch)))

	weights := t.net.Weights()
	for l := range weights {
		penalty := t.cfg.Penalty.Gradient(weights[l], t.cfg.Lambda, n)
		grads.Weights[l].Add(grads.Weights[l], penalty)
	}

	t.opt.Step(weights, t.net.Biases(), grads)
	return nil
}

// accumulate computes summed gradients over the batch columns,
// optionally splitting the batch into chunks processed in parallel.
// Chunk results are reduced in a fixed order, so a given chunking is
// deterministic; enabling parallelism only changes the chunking, not
// the per-chunk sums.
func (t *Trainer) accumulate(X, Y *mat.Dense, batchSize int) (nn.Gradients, error) {
	chunks := parallel.Chunks(batchSize, t.cfg.Parallel)
	if len(chunks) == 1 {
		return t.net.BackpropBatch(X, Y)
	}

	partials := make([]nn.Gradients, len(chunks))
	errs := make([]error, len(chunks))
	inRows, _ := X.Dims()
	outRows, _ := Y.Dims()

	parallel.Run(chunks, t.cfg.Parallel, func(i, start, end int) {
		xs := X.Slice(0, inRows, start, end)
		ys := Y.Slice(0, outRows, start, end)
		partials[i], errs[i] = t.net.BackpropBatch(xs, ys)
	})

	for _, err := range errs {
		if err != nil {
			return nn.Gradients{}, err
		}
	}

	total := t.net.ZeroGradients()
	for _, p := range partials {
		total.Add(p)
	}
	return total, nil
}

// batchMatrices stacks a mini-batch into column-per-sample input and
// target matrices, validating every sample's vector lengths.
func (t *Trainer) batchMatrices(batch dataset.Dataset) (X, Y *mat.Dense, err error) {
	inSize := t.net.InputSize()
	outSize := t.net.OutputSize()

	X = mat.NewDense(inSize, len(batch), nil)
	Y = mat.NewDense(outSize, len(batch), nil)
	for i, sample := range batch {
		if len(sample.Input) != inSize {
			return nil, nil, &nn.ShapeError{Sample: i, Field: "input", Got: len(sample.Input), Want: inSize}
		}
		if len(sample.Target) != outSize {
			return nil, nil, &nn.ShapeError{Sample: i, Field: "target", Got: len(sample.Target), Want: outSize}
		}
		X.SetCol(i, sample.Input)
		Y.SetCol(i, sample.Target)
	}
	return X, Y, nil
}

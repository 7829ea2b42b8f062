// Command mlp trains a feedforward sigmoid network from the command
// line, on the built-in XOR dataset or on a CSV file, and can save and
// reload checkpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/adsingh-64/mlp"
)

func main() {
	layersFlag := flag.String("layers", "", "comma-separated layer sizes, e.g. 784,30,10 (default: inferred for XOR)")
	dataPath := flag.String("data", "", "CSV dataset (label,features...); empty trains on XOR")
	classes := flag.Int("classes", 10, "number of classes in the CSV dataset")
	scale := flag.Float64("scale", 255, "divisor applied to CSV features (0 = none)")
	valFrac := flag.Float64("val", 0.2, "fraction of the data held out for validation")

	epochs := flag.Int("epochs", 30, "number of training epochs")
	batch := flag.Int("batch", 10, "mini-batch size")
	lr := flag.Float64("lr", 0.5, "learning rate")
	costName := flag.String("cost", "cross-entropy", "cost function: quadratic or cross-entropy")
	regName := flag.String("reg", "none", "regularization: none, l1 or l2")
	lambda := flag.Float64("lambda", 0, "regularization coefficient")
	momentum := flag.Float64("momentum", 0, "momentum coefficient (0 disables)")
	patience := flag.Int("patience", 0, "early-stopping patience in epochs (0 disables)")
	lrPatience := flag.Int("lr-patience", 0, "epochs without improvement before halving the rate (0 keeps it constant)")
	maxHalves := flag.Int("max-halves", 7, "stop after this many rate halvings (0 = unlimited)")
	seed := flag.Int64("seed", 1, "random seed for initialization and shuffling")
	par := flag.Bool("parallel", false, "parallelize gradient accumulation within batches")
	savePath := flag.String("save", "", "write a checkpoint here after training")
	loadPath := flag.String("load", "", "resume from this checkpoint instead of random initialization")
	flag.Parse()

	cost, err := mlp.CostByName(*costName)
	if err != nil {
		log.Fatal(err)
	}
	penalty, err := mlp.PenaltyByName(*regName)
	if err != nil {
		log.Fatal(err)
	}

	training, validation, inSize, outSize, err := loadData(*dataPath, *classes, *scale, *valFrac, *seed)
	if err != nil {
		log.Fatal(err)
	}

	var net *mlp.Network
	if *loadPath != "" {
		var header mlp.CheckpointHeader
		net, header, err = mlp.Load(*loadPath)
		if err != nil {
			log.Fatalf("failed to load checkpoint: %v", err)
		}
		fmt.Printf("Resumed from %s (layers %v, cost %s)\n", *loadPath, header.LayerSizes, header.Cost)
	} else {
		sizes, err := parseLayers(*layersFlag, inSize, outSize)
		if err != nil {
			log.Fatal(err)
		}
		net, err = mlp.NewNetwork(sizes, cost, *seed)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Initialized network %v\n", sizes)
	}

	cfg := mlp.Config{
		Epochs:            *epochs,
		BatchSize:         *batch,
		LearningRate:      *lr,
		Lambda:            *lambda,
		Momentum:          *momentum,
		Penalty:           penalty,
		EarlyStopPatience: *patience,
		Seed:              *seed,
		Progress: func(s mlp.EpochStats) {
			fmt.Printf("Epoch %d: %d / %d  cost=%.4f  lr=%.4g\n",
				s.Epoch, s.Correct, s.Total, s.ValCost, s.LearningRate)
		},
	}
	if *lrPatience > 0 {
		cfg.Schedule = mlp.NewHalveOnPlateau(*lrPatience, *maxHalves)
	}
	if *par {
		cfg.Parallel = mlp.DefaultParallelConfig()
	}

	fmt.Printf("Training: epochs=%d batch=%d lr=%g cost=%s reg=%s lambda=%g momentum=%g\n",
		*epochs, *batch, *lr, *costName, *regName, *lambda, *momentum)

	result, err := mlp.Train(context.Background(), net, cfg, training, validation)
	if err != nil {
		log.Fatalf("training failed: %v", err)
	}

	if result.StoppedEarly {
		fmt.Printf("Stopped early after %d epochs\n", len(result.History))
	}
	fmt.Printf("Best: %.2f%% at epoch %d (final lr %.4g)\n",
		result.BestAccuracy*100, result.BestEpoch, result.FinalLearningRate)

	if *savePath != "" {
		meta := map[string]string{
			"best_epoch": strconv.Itoa(result.BestEpoch),
		}
		if err := mlp.Save(*savePath, net, meta); err != nil {
			log.Fatalf("failed to save checkpoint: %v", err)
		}
		fmt.Printf("Saved checkpoint to %s\n", *savePath)
	}
}

// loadData returns the training and validation sets plus the input and
// output sizes they imply.
func loadData(path string, classes int, scale, valFrac float64, seed int64) (training, validation mlp.Dataset, inSize, outSize int, err error) {
	if path == "" {
		data := mlp.XOR()
		// Four samples: validate on the training data itself.
		return data, data, 2, 1, nil
	}

	data, err := mlp.LoadCSV(path, classes, scale)
	if err != nil {
		return nil, nil, 0, 0, err
	}
	if len(data) == 0 {
		return nil, nil, 0, 0, fmt.Errorf("%s: no samples", path)
	}

	data = data.Clone()
	data.Shuffle(rand.New(rand.NewSource(seed)))
	training, validation = data.Split(valFrac)
	return training, validation, len(data[0].Input), classes, nil
}

// parseLayers parses "a,b,c" into layer sizes, defaulting to a single
// 30-unit hidden layer between the dataset's input and output sizes.
func parseLayers(s string, inSize, outSize int) ([]int, error) {
	if s == "" {
		if inSize == 2 && outSize == 1 {
			return []int{2, 2, 1}, nil
		}
		return []int{inSize, 30, outSize}, nil
	}

	parts := strings.Split(s, ",")
	sizes := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid layer size %q", p)
		}
		sizes = append(sizes, n)
	}
	if sizes[0] != inSize || sizes[len(sizes)-1] != outSize {
		fmt.Fprintf(os.Stderr, "warning: layers %v do not match dataset dimensions %d->%d\n", sizes, inSize, outSize)
	}
	return sizes, nil
}

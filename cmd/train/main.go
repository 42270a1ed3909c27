// shade-train: trains a color shade network without gradients
//
// Usage:
//
//	shade-train --arch=4,4,2 --act=sigmoid,sigmoid --mode=hill-climbing --iterations=100000
//	shade-train --data=colors.csv --mode=simulated-annealing --tstep=0.01
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gonum.org/v1/gonum/mat"

	"shadenet/data"
	"shadenet/nn"
	"shadenet/shade"
	"shadenet/train"
	"shadenet/utils"
)

var (
	arch         = flag.String("arch", "4,4,2", "Layer sizes, input first")
	activations  = flag.String("act", "sigmoid,sigmoid", "Activation per calculated layer")
	mode         = flag.String("mode", "hill-climbing", "Training mode: hill-climbing, simulated-annealing")
	iterations   = flag.Int("iterations", 100_000, "Hill climbing iterations")
	learningRate = flag.Float64("lr", 0.1, "Perturbation scale")
	tempStep     = flag.Float64("tstep", 0.005, "Annealing temperature decrement")
	seed         = flag.Uint64("seed", 0, "Random seed (0 = time based)")
	dataPath     = flag.String("data", "", "Labeled colors CSV (r,g,b,label)")
	examplesPath = flag.String("examples", "", "Plain numeric CSV (inputs then targets), overrides -data")
	samples      = flag.Int("samples", 200, "Synthetic samples when no data is given")
	normalize    = flag.Bool("normalize", false, "Standardize inputs before training")
	dumpPath     = flag.String("dump", "", "Write the colors used to this CSV")
	logEvery     = flag.Int("log-every", 10_000, "Progress line every N steps (0 = off)")
	showWeights  = flag.Bool("weights", false, "Print the trained weight matrices")
	verbose      = flag.Bool("verbose", true, "Verbose output")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	cfg, err := buildConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	trainMode, err := train.ParseMode(cfg.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Configuration:\n")
	fmt.Printf("  Architecture:  %v\n", cfg.Architecture)
	fmt.Printf("  Activations:   %v\n", cfg.Activations)
	fmt.Printf("  Mode:          %s\n", trainMode)
	fmt.Printf("  Iterations:    %d\n", cfg.Iterations)
	fmt.Printf("  Learning Rate: %.4f\n", cfg.LearningRate)
	fmt.Printf("  Temp Step:     %.4f\n", cfg.TemperatureStep)
	fmt.Println()

	stats := &utils.TimingStats{}
	totalStart := time.Now()

	start := time.Now()
	examples, colors, err := loadExamples(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		os.Exit(1)
	}
	if *normalize {
		mean, std := data.InputStats(examples)
		examples = data.Normalize(examples, mean, std)
	}
	stats.DataLoadingTime = time.Since(start)
	fmt.Printf("Loaded %d examples\n", len(examples))

	if *dumpPath != "" && colors != nil {
		if err := dump(*dumpPath, colors); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *dumpPath, err)
			os.Exit(1)
		}
	}

	start = time.Now()
	net, err := train.NetworkFromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	stats.ModelInitTime = time.Since(start)
	fmt.Printf("Parameters:   %d weights\n", net.Weights().Total())

	start = time.Now()
	before, err := train.Loss(net, examples)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	stats.LossComputationTime = time.Since(start)
	fmt.Printf("Initial loss: %.6f\n", before)

	opts := append(train.OptionsFromConfig(cfg), train.WithLogEvery(*logEvery))
	res, err := train.Train(net, examples, trainMode, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error training: %v\n", err)
		os.Exit(1)
	}
	stats.TrainingTime = res.Duration
	fmt.Printf("Final loss:   %.6f (%d of %d proposals accepted)\n", res.BestLoss, res.Accepted, res.Steps)

	if colors != nil && !*normalize {
		start = time.Now()
		fmt.Printf("Accuracy:     %.2f%%\n", accuracy(net, colors)*100)
		stats.PredictionTime = time.Since(start)
	}

	if *showWeights {
		for i, l := range net.CalculatedLayers() {
			fmt.Printf("\nLayer %d (%s, %d <- %d):\n", i, l.Activation, l.Size(), l.Feeding.Size())
			fmt.Printf("%v\n", mat.Formatted(net.WeightMatrix(i), mat.Prefix(""), mat.Squeeze()))
		}
	}

	stats.TotalTime = time.Since(totalStart)
	utils.PrintTimingStats(stats, res.Steps)
}

func buildConfig() (*utils.Config, error) {
	architecture, err := utils.ParseArchitecture(*arch)
	if err != nil {
		return nil, fmt.Errorf("parsing -arch: %w", err)
	}
	cfg := &utils.Config{
		Architecture:    architecture,
		Activations:     utils.ParseActivations(*activations),
		DataPath:        *dataPath,
		Mode:            *mode,
		Iterations:      *iterations,
		LearningRate:    *learningRate,
		TemperatureStep: *tempStep,
		Seed:            *seed,
	}
	if err := utils.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadExamples returns the training set, plus the colors behind it when it
// was built from colors.
func loadExamples(cfg *utils.Config) ([]train.Example, []shade.Sample, error) {
	in, out := cfg.Architecture[0], cfg.Architecture[len(cfg.Architecture)-1]
	if *examplesPath != "" {
		f, err := os.Open(*examplesPath)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		examples, err := data.ReadExamples(f, in, out)
		return examples, nil, err
	}

	if in != 4 || out != 2 {
		return nil, nil, fmt.Errorf("color data needs 4 inputs and 2 outputs, architecture is %v", cfg.Architecture)
	}
	var colors []shade.Sample
	if cfg.DataPath != "" {
		var err error
		if colors, err = data.LoadColors(cfg.DataPath); err != nil {
			return nil, nil, err
		}
	} else {
		colors = data.Synthetic(*samples, train.DataSource(cfg))
	}
	return shade.Examples(colors), colors, nil
}

func accuracy(net *nn.Network, colors []shade.Sample) float64 {
	if len(colors) == 0 {
		return 0
	}
	correct := 0
	for _, s := range colors {
		out, err := net.Predict(s.Color.Attributes())
		if err == nil && shade.Classify(out) == s.Shade {
			correct++
		}
	}
	return float64(correct) / float64(len(colors))
}

func dump(path string, colors []shade.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := data.WriteColors(f, colors); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

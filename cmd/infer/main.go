// shade-infer: recommends a text shade for background colors
//
// Usage:
//
//	shade-infer --predictor=formulaic "#336699" 255,255,0
//	shade-infer --predictor=hill-climbing --data=colors.csv --iterations=20000 "#336699"
//	shade-infer --random=5 --pretrain=100
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/exp/rand"

	"shadenet/data"
	"shadenet/shade"
	"shadenet/train"
	"shadenet/utils"
)

var (
	predictorName = flag.String("predictor", "hill-climbing", "Predictor: "+strings.Join(shade.PredictorNames(), ", "))
	dataPath      = flag.String("data", "", "Labeled colors CSV (r,g,b,label)")
	pretrain      = flag.Int("pretrain", 0, "Add N random colors labeled by the formula")
	random        = flag.Int("random", 0, "Also classify N random colors")
	iterations    = flag.Int("iterations", 100_000, "Hill climbing iterations per prediction")
	learningRate  = flag.Float64("lr", 0.1, "Perturbation scale")
	tempStep      = flag.Float64("tstep", 0.005, "Annealing temperature decrement")
	seed          = flag.Uint64("seed", 0, "Random seed (0 = time based)")
	verbose       = flag.Bool("verbose", false, "Verbose output")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	p, err := newPredictor()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	model := shade.NewModel(p)

	s := *seed
	if s == 0 {
		s = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(s))

	if *dataPath != "" {
		samples, err := data.LoadColors(*dataPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
			os.Exit(1)
		}
		for _, sample := range samples {
			model.Add(sample.Color, sample.Shade)
		}
	}
	model.Pretrain(*pretrain, rng)
	log("%d labeled colors, predictor %s", len(model.Samples()), p.Name())

	var colors []shade.Color
	for _, arg := range flag.Args() {
		c, err := shade.ParseColor(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		colors = append(colors, c)
	}
	for i := 0; i < *random; i++ {
		colors = append(colors, shade.RandomColor(rng))
	}
	if len(colors) == 0 {
		fmt.Fprintln(os.Stderr, "No colors given")
		flag.Usage()
		os.Exit(2)
	}

	stats := &utils.TimingStats{}
	totalStart := time.Now()
	for _, c := range colors {
		start := time.Now()
		got, err := model.Predict(c)
		stats.PredictionTime += time.Since(start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error predicting %s: %v\n", c.Hex(), err)
			os.Exit(1)
		}
		want := shade.Formulaic{}.Shade(c)
		fmt.Printf("%s  %-5s  (formula: %s)\n", c.Hex(), got, want)
	}
	stats.TotalTime = time.Since(totalStart)
	if *verbose {
		utils.PrintTimingStats(stats, len(colors))
	}
}

func newPredictor() (shade.Predictor, error) {
	p, err := shade.NewPredictor(*predictorName)
	if err != nil {
		return nil, err
	}
	if n, ok := p.(*shade.Neural); ok {
		n.Options = []train.Option{
			train.WithIterations(*iterations),
			train.WithLearningRate(*learningRate),
			train.WithTemperatureStep(*tempStep),
		}
		if *seed != 0 {
			n.Seed = *seed
			n.Options = append(n.Options, train.WithSeed(*seed+1))
		}
	}
	return p, nil
}

func log(format string, args ...interface{}) {
	if *verbose {
		fmt.Fprintf(os.Stderr, "[INFER] "+format+"\n", args...)
	}
}

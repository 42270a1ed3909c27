// shade-server: trains a shade network, then evaluates its linear layers on
// encrypted inputs for a shade-client
//
// The protocol runs over stdin/stdout unless -listen is given.
package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"shadenet/core/ckkswrapper"
	"shadenet/data"
	"shadenet/shade"
	"shadenet/split"
	"shadenet/train"
	"shadenet/utils"
)

var (
	logN         = flag.Int("logN", ckkswrapper.DefaultLogN, "Ring dimension log2")
	listen       = flag.String("listen", "", "TCP address to accept one client on (default stdin/stdout)")
	arch         = flag.String("arch", "4,4,2", "Layer sizes, input first")
	activations  = flag.String("act", "sigmoid,sigmoid", "Activation per calculated layer")
	mode         = flag.String("mode", "hill-climbing", "Training mode: hill-climbing, simulated-annealing")
	iterations   = flag.Int("iterations", 100_000, "Hill climbing iterations")
	learningRate = flag.Float64("lr", 0.1, "Perturbation scale")
	tempStep     = flag.Float64("tstep", 0.005, "Annealing temperature decrement")
	seed         = flag.Uint64("seed", 0, "Random seed (0 = time based)")
	dataPath     = flag.String("data", "", "Labeled colors CSV (r,g,b,label)")
	samples      = flag.Int("samples", 200, "Synthetic samples when no data is given")
	verbose      = flag.Bool("verbose", false, "Verbose output")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose
	// stdout may carry the protocol
	utils.Output = os.Stderr

	architecture, err := utils.ParseArchitecture(*arch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -arch: %v\n", err)
		os.Exit(1)
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
		LogN:            *logN,
	}

	log("Shade server starting (logN=%d, arch=%v)", *logN, cfg.Architecture)

	model, err := train.NetworkFromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if model.Input().Size() != 4 || model.Output().Size() != 2 {
		fmt.Fprintf(os.Stderr, "Error: color networks need 4 inputs and 2 outputs\n")
		os.Exit(1)
	}

	colors, err := loadColors(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		os.Exit(1)
	}
	trainMode, err := train.ParseMode(cfg.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	res, err := train.Train(model, shade.Examples(colors), trainMode, train.OptionsFromConfig(cfg)...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error training: %v\n", err)
		os.Exit(1)
	}
	log("Model ready: %d colors, loss %.6f", len(colors), res.BestLoss)

	srv, err := split.NewServer(model, *logN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var r io.Reader = os.Stdin
	var w io.Writer = os.Stdout
	if *listen != "" {
		ln, err := net.Listen("tcp", *listen)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		log("Listening on %s", ln.Addr())
		conn, err := ln.Accept()
		ln.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close()
		r, w = conn, conn
	}

	log("Waiting for client...")
	start := time.Now()
	if err := srv.Serve(split.NewProtocol(r, w)); err != nil {
		log("Error: %v", err)
		os.Exit(1)
	}
	log("Server done (%.2fs, linear evaluation %v)", time.Since(start).Seconds(), srv.Stats.ServerLinearTime)
}

func loadColors(cfg *utils.Config) ([]shade.Sample, error) {
	if cfg.DataPath != "" {
		return data.LoadColors(cfg.DataPath)
	}
	return data.Synthetic(*samples, train.DataSource(cfg)), nil
}

func log(format string, args ...interface{}) {
	if *verbose {
		fmt.Fprintf(os.Stderr, "[SERVER] "+format+"\n", args...)
	}
}

package utils

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Verbose controls whether timing statistics and progress are printed.
// Set to false to suppress output.
var Verbose = true

// Output is the writer where timing statistics and progress are printed.
// Defaults to os.Stdout.
var Output io.Writer = os.Stdout

// Logf prints a progress line to Output.
// Respects the Verbose flag - does nothing if Verbose is false.
func Logf(format string, args ...interface{}) {
	if !Verbose {
		return
	}
	fmt.Fprintf(Output, format+"\n", args...)
}

// TimingStats holds timing information for different operations
type TimingStats struct {
	TotalTime           time.Duration
	DataLoadingTime     time.Duration
	ModelInitTime       time.Duration
	TrainingTime        time.Duration
	PredictionTime      time.Duration
	HEInitTime          time.Duration
	EncryptionTime      time.Duration
	DecryptionTime      time.Duration
	ServerLinearTime    time.Duration
	ClientActivateTime  time.Duration
	LossComputationTime time.Duration
}

func percent(part, whole time.Duration) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// PrintTimingStats prints detailed timing statistics.
// steps is the number of training steps (or predictions) the stats cover.
// Respects the Verbose flag - does nothing if Verbose is false.
func PrintTimingStats(stats *TimingStats, steps int) {
	if !Verbose {
		return
	}
	fmt.Fprintln(Output, "\n=== TIMING STATISTICS ===")
	fmt.Fprintf(Output, "Total time: %v\n", stats.TotalTime)
	if steps > 0 {
		fmt.Fprintf(Output, "Average time per step: %v\n", stats.TotalTime/time.Duration(steps))
	}
	fmt.Fprintf(Output, "Steps completed: %d\n", steps)
	fmt.Fprintln(Output, "\nBreakdown by operation:")
	fmt.Fprintf(Output, "  Data loading: %v (%.1f%%)\n", stats.DataLoadingTime, percent(stats.DataLoadingTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Model initialization: %v (%.1f%%)\n", stats.ModelInitTime, percent(stats.ModelInitTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Training: %v (%.1f%%)\n", stats.TrainingTime, percent(stats.TrainingTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Loss computation: %v (%.1f%%)\n", stats.LossComputationTime, percent(stats.LossComputationTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Prediction: %v (%.1f%%)\n", stats.PredictionTime, percent(stats.PredictionTime, stats.TotalTime))
	if stats.HEInitTime > 0 || stats.EncryptionTime > 0 {
		fmt.Fprintln(Output, "\nSplit inference breakdown:")
		fmt.Fprintf(Output, "  HE initialization: %v (%.1f%%)\n", stats.HEInitTime, percent(stats.HEInitTime, stats.TotalTime))
		fmt.Fprintf(Output, "  Encryption: %v (%.1f%%)\n", stats.EncryptionTime, percent(stats.EncryptionTime, stats.TotalTime))
		fmt.Fprintf(Output, "  Decryption: %v (%.1f%%)\n", stats.DecryptionTime, percent(stats.DecryptionTime, stats.TotalTime))
		fmt.Fprintf(Output, "  Server linear: %v (%.1f%%)\n", stats.ServerLinearTime, percent(stats.ServerLinearTime, stats.TotalTime))
		fmt.Fprintf(Output, "  Client activation: %v (%.1f%%)\n", stats.ClientActivateTime, percent(stats.ClientActivateTime, stats.TotalTime))
	}
	if steps > 0 {
		fmt.Fprintln(Output, "\nPerformance metrics:")
		fmt.Fprintf(Output, "  Average loss computation time: %v\n", stats.LossComputationTime/time.Duration(steps))
	}
}

// DurationUS converts any time.Duration to micro-seconds as float64
func DurationUS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1_000.0
}

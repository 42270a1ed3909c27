package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// Config holds training configuration
type Config struct {
	Architecture    []int
	Activations     []string
	DataPath        string
	Mode            string
	Iterations      int
	LearningRate    float64
	TemperatureStep float64
	Seed            uint64
	LogN            int
}

// ParseArchitecture parses architecture string into slice of integers
func ParseArchitecture(archStr string) ([]int, error) {
	archParts := strings.FieldsFunc(archStr, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	arch := make([]int, len(archParts))
	for i, s := range archParts {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		arch[i] = n
	}
	return arch, nil
}

// ParseActivations splits a comma separated list of activation names
func ParseActivations(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, strings.ToLower(part))
		}
	}
	return names
}

// ValidateConfig validates training configuration
func ValidateConfig(config *Config) error {
	if len(config.Architecture) < 2 {
		return fmt.Errorf("architecture must have at least 2 layers (input and output)")
	}

	for i, n := range config.Architecture {
		if n <= 0 {
			return fmt.Errorf("layer %d must have a positive size, got %d", i, n)
		}
	}

	if len(config.Activations) != len(config.Architecture)-1 {
		return fmt.Errorf("expected %d activations (one per calculated layer), got %d",
			len(config.Architecture)-1, len(config.Activations))
	}

	if config.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive")
	}

	if config.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive")
	}

	mode := strings.ToLower(strings.TrimSpace(config.Mode))
	if mode == "simulated-annealing" && config.TemperatureStep <= 0 {
		return fmt.Errorf("temperature step must be positive")
	}

	if mode != "hill-climbing" && mode != "simulated-annealing" {
		return fmt.Errorf("mode must be 'hill-climbing' or 'simulated-annealing'")
	}

	if config.LogN != 0 && (config.LogN < 12 || config.LogN > 16) {
		return fmt.Errorf("logN must be between 12 and 16")
	}

	return nil
}

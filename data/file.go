// Package data loads labeled colors and numeric examples from CSV.
package data

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"

	"shadenet/shade"
	"shadenet/train"
)

// ColorHeader is written by WriteColors and skipped by ReadColors.
var ColorHeader = []string{"r", "g", "b", "label"}

// ReadColors parses r,g,b,label records. Channels are 0-255; the label is
// DARK, LIGHT, 0 or 1. A first record whose first field is not a number is
// taken as a header.
func ReadColors(r io.Reader) ([]shade.Sample, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = len(ColorHeader)
	cr.TrimLeadingSpace = true

	var samples []shade.Sample
	var lineNum int
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) && perr.Err == csv.ErrFieldCount {
				return samples, errInvalidLine{lineNum: perr.Line, splits: len(record), expected: len(ColorHeader)}
			}
			return samples, errors.Wrapf(err, "line %d", lineNum)
		}
		if lineNum == 1 && isHeader(record) {
			continue
		}

		var ch [3]uint8
		for i := range ch {
			v, err := strconv.ParseUint(strings.TrimSpace(record[i]), 10, 8)
			if err != nil {
				return samples, errors.Wrapf(err, "line %d: channel %s", lineNum, ColorHeader[i])
			}
			ch[i] = uint8(v)
		}
		label, err := shade.ParseFontShade(record[3])
		if err != nil {
			return samples, errors.Wrapf(err, "line %d", lineNum)
		}
		samples = append(samples, shade.Sample{Color: shade.RGB(ch[0], ch[1], ch[2]), Shade: label})
	}
	return samples, nil
}

func isHeader(record []string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
	return err != nil
}

// LoadColors reads a color CSV file.
func LoadColors(path string) ([]shade.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	samples, err := ReadColors(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return samples, nil
}

// WriteColors writes samples in the format ReadColors accepts, header
// included.
func WriteColors(w io.Writer, samples []shade.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ColorHeader); err != nil {
		return err
	}
	for _, s := range samples {
		r, g, b := s.Color.RGB8()
		record := []string{
			strconv.Itoa(int(r)),
			strconv.Itoa(int(g)),
			strconv.Itoa(int(b)),
			s.Shade.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Synthetic draws n random colors labeled by the luminance formula.
func Synthetic(n int, rng *rand.Rand) []shade.Sample {
	samples := make([]shade.Sample, n)
	for i := range samples {
		c := shade.RandomColor(rng)
		samples[i] = shade.Sample{Color: c, Shade: shade.Formulaic{}.Shade(c)}
	}
	return samples
}

// ReadExamples parses plain numeric lines: inputNum inputs followed by
// outputNum targets.
func ReadExamples(reader io.Reader, inputNum, outputNum int) ([]train.Example, error) {
	scanner := bufio.NewScanner(reader)
	var examples []train.Example
	var lineNum int
	for scanner.Scan() {
		lineNum++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		splits := strings.Split(text, ",")
		if len(splits) != inputNum+outputNum {
			return examples, errInvalidLine{
				lineNum:  lineNum,
				splits:   len(splits),
				expected: inputNum + outputNum,
			}
		}
		inputs := make([]float64, inputNum)
		targets := make([]float64, outputNum)

		for i, split := range splits {
			num, err := strconv.ParseFloat(strings.TrimSpace(split), 64)
			if err != nil {
				if i < inputNum {
					return examples, fmt.Errorf("parsing input: %w", err)
				}
				return examples, fmt.Errorf("parsing target: %w", err)
			}
			if i < inputNum {
				inputs[i] = num
			} else {
				targets[i-inputNum] = num
			}
		}
		examples = append(examples, train.Example{Input: inputs, Target: targets})
	}
	return examples, scanner.Err()
}

type errInvalidLine struct {
	lineNum  int
	splits   int
	expected int
}

func (e errInvalidLine) Error() string {
	return fmt.Sprintf("at line %d, expected %d values, got %d",
		e.lineNum, e.expected, e.splits)
}

// InputStats returns the population mean and standard deviation of every
// input column.
func InputStats(examples []train.Example) (mean, std []float64) {
	if len(examples) == 0 {
		return nil, nil
	}
	n := len(examples[0].Input)
	mean = make([]float64, n)
	std = make([]float64, n)
	column := make([]float64, len(examples))
	for j := 0; j < n; j++ {
		for i, ex := range examples {
			column[i] = ex.Input[j]
		}
		mean[j], std[j] = stat.PopMeanStdDev(column, nil)
	}
	return mean, std
}

// Normalize returns examples with inputs shifted by mean and scaled by std.
// Columns with zero deviation are only shifted. Targets are shared, not
// copied.
func Normalize(examples []train.Example, mean, std []float64) []train.Example {
	normalized := make([]train.Example, len(examples))
	for i, ex := range examples {
		inputs := make([]float64, len(ex.Input))
		for j, x := range ex.Input {
			inputs[j] = x - mean[j]
			if std[j] != 0 {
				inputs[j] /= std[j]
			}
		}
		normalized[i] = train.Example{Input: inputs, Target: ex.Target}
	}
	return normalized
}

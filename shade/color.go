// Package shade decides whether text over a background color should be
// dark or light.
package shade

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// FontShade is the text shade recommended for a background.
type FontShade int

const (
	Dark FontShade = iota
	Light
)

func (s FontShade) String() string {
	switch s {
	case Dark:
		return "DARK"
	case Light:
		return "LIGHT"
	}
	return fmt.Sprintf("FontShade(%d)", int(s))
}

// OutputValue is the scalar encoding of the shade: 0 for DARK, 1 for LIGHT.
func (s FontShade) OutputValue() float64 {
	if s == Light {
		return 1
	}
	return 0
}

// Target is the one-hot training target matching a two-node output layer
// read as (DARK, LIGHT).
func (s FontShade) Target() []float64 {
	if s == Light {
		return []float64{0, 1}
	}
	return []float64{1, 0}
}

// ParseFontShade accepts DARK or LIGHT in any case, or the output values 0
// and 1.
func ParseFontShade(s string) (FontShade, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DARK", "0":
		return Dark, nil
	case "LIGHT", "1":
		return Light, nil
	}
	return 0, errors.Errorf("unknown font shade %q", s)
}

// Classify reads a two-node (DARK, LIGHT) output: DARK only when its node is
// strictly larger.
func Classify(out []float64) FontShade {
	if len(out) >= 2 && out[0] > out[1] {
		return Dark
	}
	return Light
}

// Color is an opaque RGB color with channels in [0, 1].
type Color struct {
	R, G, B float64
}

// RGB builds a Color from 8-bit channels.
func RGB(r, g, b uint8) Color {
	return Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// ParseColor accepts #rrggbb, rrggbb or r,g,b with 8-bit channels.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if parts := strings.Split(s, ","); len(parts) == 3 {
		var ch [3]uint8
		for i, part := range parts {
			v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
			if err != nil {
				return Color{}, errors.Wrapf(err, "color %q", s)
			}
			ch[i] = uint8(v)
		}
		return RGB(ch[0], ch[1], ch[2]), nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return Color{}, errors.Errorf("color %q: want #rrggbb or r,g,b", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, errors.Wrapf(err, "color %q", s)
	}
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

// RandomColor draws each 8-bit channel uniformly.
func RandomColor(rng *rand.Rand) Color {
	return RGB(uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)))
}

// Brightness is the HSB brightness, the largest channel.
func (c Color) Brightness() float64 {
	return floats.Max([]float64{c.R, c.G, c.B})
}

// Luminance is the Rec. 601 weighted sum of the channels.
func (c Color) Luminance() float64 {
	return 0.299*c.R + 0.587*c.G + 0.114*c.B
}

// Attributes is the network input for a color: brightness, red, green, blue.
func (c Color) Attributes() []float64 {
	return []float64{c.Brightness(), c.R, c.G, c.B}
}

// RGB8 returns the channels rounded to 8 bits.
func (c Color) RGB8() (r, g, b uint8) {
	return channel(c.R), channel(c.G), channel(c.B)
}

// Hex formats the color as #rrggbb.
func (c Color) Hex() string {
	r, g, b := c.RGB8()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func channel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

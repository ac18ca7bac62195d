package rank

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB is a 24-bit colour.
type RGB struct {
	R, G, B uint8
}

var (
	Red  = RGB{R: 0xff}
	Blue = RGB{B: 0xff}
)

// Hex renders c as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGBA renders c with alpha a as a CSS rgba() value.
func (c RGB) RGBA(a float64) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.2f)", c.R, c.G, c.B, a)
}

// ParseHex parses "#rrggbb" or "rrggbb".
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("invalid colour %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Gradient blends linearly from From (rank 0) to To (last rank).
type Gradient struct {
	From, To RGB
}

// DefaultGradient runs red to blue.
var DefaultGradient = Gradient{From: Red, To: Blue}

// At returns the colour for rank i out of n. With t = i/(n-1) (0 when n <= 1)
// each channel is round(from*(1-t) + to*t), rounding halves to even.
func (g Gradient) At(i, n int) RGB {
	t := 0.0
	if n > 1 {
		t = float64(i) / float64(n-1)
	}
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return RGB{
		R: blend(g.From.R, g.To.R, t),
		G: blend(g.From.G, g.To.G, t),
		B: blend(g.From.B, g.To.B, t),
	}
}

func blend(a, b uint8, t float64) uint8 {
	return uint8(math.RoundToEven(float64(a)*(1-t) + float64(b)*t))
}

// OpacityRamp colours n bars: the first solid lead, the rest in colour rest
// with alpha spaced evenly from hi down to lo.
func OpacityRamp(n int, lead, rest RGB, hi, lo float64) []string {
	if n <= 0 {
		return nil
	}
	out := make([]string, 0, n)
	out = append(out, lead.RGBA(1))
	m := n - 1
	for k := 0; k < m; k++ {
		a := hi
		if m > 1 {
			a = hi + (lo-hi)*float64(k)/float64(m-1)
		}
		out = append(out, rest.RGBA(a))
	}
	return out
}

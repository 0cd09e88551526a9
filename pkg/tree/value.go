// Package tree defines the data model for parsed Clausewitz script blocks.
package tree

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
	KindDate
	KindColor
	KindList
	KindTree
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDate:
		return "date"
	case KindColor:
		return "color"
	case KindList:
		return "list"
	case KindTree:
		return "tree"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is the tagged union over everything that can appear on the right-hand
// side of a script assignment: a scalar, a nested block, or the aggregation of
// a repeated key. Consumers switch exhaustively on the concrete type or on Kind.
type Value interface {
	// Kind reports which variant this value is.
	Kind() Kind
	// String renders the value in script-like notation, for diagnostics.
	String() string
}

// String is a bare identifier or quoted string scalar.
type String string

// Bool is a yes/no scalar.
type Bool bool

// Int is an integer scalar.
type Int int64

// Float is a floating-point scalar.
type Float float64

// Date is a YYYY.M.D scalar. Script dates predate the Gregorian reform and
// may use year 1, so this is a plain triple rather than a time.Time.
type Date struct {
	Year  int
	Month int
	Day   int
}

// List aggregates the values of a repeated key in original document order.
type List []Value

func (String) Kind() Kind { return KindString }
func (Bool) Kind() Kind   { return KindBool }
func (Int) Kind() Kind    { return KindInt }
func (Float) Kind() Kind  { return KindFloat }
func (Date) Kind() Kind   { return KindDate }
func (List) Kind() Kind   { return KindList }

func (s String) String() string { return string(s) }

func (b Bool) String() string {
	if b {
		return "yes"
	}
	return "no"
}

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

func (f Float) String() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }

func (d Date) String() string { return fmt.Sprintf("%d.%d.%d", d.Year, d.Month, d.Day) }

func (l List) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// ColorSpace identifies the color model of a color block.
type ColorSpace int

const (
	// ColorRGB holds 0-255 channel values.
	ColorRGB ColorSpace = iota
	// ColorHSV holds hue, saturation and value in the 0-1 range.
	ColorHSV
	// ColorHSV360 holds hue in degrees and saturation/value as percentages.
	ColorHSV360
)

// String returns the script marker for the color space.
func (s ColorSpace) String() string {
	switch s {
	case ColorRGB:
		return "rgb"
	case ColorHSV:
		return "hsv"
	case ColorHSV360:
		return "hsv360"
	default:
		return fmt.Sprintf("colorspace(%d)", int(s))
	}
}

// Color is a color scalar produced from an rgb/hsv/hsv360 block.
type Color struct {
	Space  ColorSpace
	Values [3]float64
}

// Kind implements Value.
func (Color) Kind() Kind { return KindColor }

// String renders the color as it would appear in a script file.
func (c Color) String() string {
	return fmt.Sprintf("%s { %s %s %s }", c.Space,
		strconv.FormatFloat(c.Values[0], 'g', -1, 64),
		strconv.FormatFloat(c.Values[1], 'g', -1, 64),
		strconv.FormatFloat(c.Values[2], 'g', -1, 64))
}

// RGB converts the color to 0-255 RGB channels regardless of its color space.
func (c Color) RGB() (r, g, b uint8) {
	switch c.Space {
	case ColorRGB:
		return clampChannel(c.Values[0]), clampChannel(c.Values[1]), clampChannel(c.Values[2])
	case ColorHSV:
		fr, fg, fb := hsvToRGB(c.Values[0]*360, c.Values[1], c.Values[2])
		return clampChannel(fr * 255), clampChannel(fg * 255), clampChannel(fb * 255)
	case ColorHSV360:
		fr, fg, fb := hsvToRGB(c.Values[0], c.Values[1]/100, c.Values[2]/100)
		return clampChannel(fr * 255), clampChannel(fg * 255), clampChannel(fb * 255)
	default:
		return 0, 0, 0
	}
}

// Hex returns the color as a #rrggbb string.
func (c Color) Hex() string {
	r, g, b := c.RGB()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func clampChannel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(math.Round(v))
	}
}

// hsvToRGB converts hue (degrees), saturation and value (0-1) to 0-1 RGB.
func hsvToRGB(h, s, v float64) (r, g, b float64) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}

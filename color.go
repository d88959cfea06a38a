package pagecut

import (
	"fmt"
	"strconv"
	"strings"
)

// RGB is a resolved 24-bit colour.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// Hex returns the colour as six upper-case hex digits without a leading '#',
// the form WordprocessingML expects.
func (c RGB) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// String returns the colour in CSS hex notation.
func (c RGB) String() string {
	return "#" + strings.ToLower(c.Hex())
}

// namedColors covers the colour keywords commonly seen in hand-written
// article markup. Anything else resolves to "no colour".
var namedColors = map[string]RGB{
	"black":   {0, 0, 0},
	"white":   {255, 255, 255},
	"red":     {255, 0, 0},
	"green":   {0, 128, 0},
	"blue":    {0, 0, 255},
	"yellow":  {255, 255, 0},
	"orange":  {255, 165, 0},
	"purple":  {128, 0, 128},
	"pink":    {255, 192, 203},
	"gray":    {128, 128, 128},
	"grey":    {128, 128, 128},
	"silver":  {192, 192, 192},
	"maroon":  {128, 0, 0},
	"navy":    {0, 0, 128},
	"teal":    {0, 128, 128},
	"olive":   {128, 128, 0},
	"lime":    {0, 255, 0},
	"aqua":    {0, 255, 255},
	"cyan":    {0, 255, 255},
	"fuchsia": {255, 0, 255},
	"magenta": {255, 0, 255},
	"brown":   {165, 42, 42},
	"crimson": {220, 20, 60},
	"darkred": {139, 0, 0},
	"gold":    {255, 215, 0},
}

// ParseColor resolves a CSS colour expression. It accepts 6-digit hex,
// 3-digit hex, rgb()/rgba() (alpha ignored) and a fixed table of named
// colours. Trailing "!important" and ';' are ignored. The second return
// value is false when the expression cannot be resolved; callers should
// then leave text in its default colour.
func ParseColor(value string) (RGB, bool) {
	s := normalizeValue(value)
	if s == "" {
		return RGB{}, false
	}
	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}
	if strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba(") {
		return parseRGBFunc(s)
	}
	c, ok := namedColors[s]
	return c, ok
}

// ParseFontWeight reports whether a font-weight value requests bold text:
// "bold", "bolder", or a numeric weight of at least 700.
func ParseFontWeight(value string) bool {
	s := normalizeValue(value)
	switch s {
	case "bold", "bolder":
		return true
	case "":
		return false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return false
	}
	return n >= 700
}

// normalizeValue lower-cases a declaration value and strips "!important"
// and trailing semicolons.
func normalizeValue(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	s = strings.TrimRight(s, "; ")
	if i := strings.Index(s, "!"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}

func parseHex(hex string) (RGB, bool) {
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return RGB{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}

func parseRGBFunc(expr string) (RGB, bool) {
	open := strings.IndexByte(expr, '(')
	end := strings.LastIndexByte(expr, ')')
	if open < 0 || end <= open+1 {
		return RGB{}, false
	}
	parts := strings.FieldsFunc(expr[open+1:end], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})
	if len(parts) < 3 {
		return RGB{}, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, ok := parseChannel(parts[i])
		if !ok {
			return RGB{}, false
		}
		ch[i] = v
	}
	return RGB{R: ch[0], G: ch[1], B: ch[2]}, true
}

func parseChannel(component string) (uint8, bool) {
	component = strings.TrimSpace(component)
	percent := strings.HasSuffix(component, "%")
	component = strings.TrimSuffix(component, "%")
	f, err := strconv.ParseFloat(component, 64)
	if err != nil {
		return 0, false
	}
	if percent {
		f = f * 255 / 100
	}
	if f < 0 {
		f = 0
	} else if f > 255 {
		f = 255
	}
	return uint8(f + 0.5), true
}

package site

import (
	"html/template"
	"math"
	"strconv"
	"strings"
)

type StyleValues struct {
	PrimaryAccent     string `yaml:"primary_accent"`
	PrimaryBackground string `yaml:"primary_background"`
	PrimaryText       string `yaml:"primary_text"`
}

func DefaultStyleValues() StyleValues {
	return StyleValues{
		PrimaryAccent:     "#f27059",
		PrimaryBackground: "#1d1f21",
		PrimaryText:       "#e8e6e3",
	}
}

// Typography settings. One rhythm unit is one base line height.
const (
	baseLineHeight = 1.75
	scaleRatio     = 2.0
)

// Rhythm returns n vertical rhythm units as a rem length.
func Rhythm(n float64) string {
	return formatRem(n * baseLineHeight)
}

// Scale returns the font size and line height for step n of the modular scale.
func Scale(n float64) Style {
	fontSize := math.Pow(scaleRatio, n/2)
	lines := math.Ceil(fontSize / baseLineHeight)
	lineHeight := lines * baseLineHeight / fontSize
	return Style{
		{"font-size", formatRem(fontSize)},
		{"line-height", strconv.FormatFloat(math.Round(lineHeight*1000)/1000, 'f', -1, 64)},
	}
}

func formatRem(v float64) string {
	return strconv.FormatFloat(math.Round(v*10000)/10000, 'f', -1, 64) + "rem"
}

type Decl struct {
	Property string
	Value    string
}

// Style is an ordered list of CSS declarations for a style attribute.
type Style []Decl

func (s Style) With(decls ...Decl) Style {
	out := make(Style, 0, len(s)+len(decls))
	out = append(out, s...)
	return append(out, decls...)
}

func (s Style) CSS() template.CSS {
	parts := make([]string, 0, len(s))
	for _, d := range s {
		parts = append(parts, d.Property+": "+d.Value)
	}
	return template.CSS(strings.Join(parts, "; "))
}

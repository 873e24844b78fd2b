package svg

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Color is an SVG paint value
type Color string

// NoneColor disables a paint
const NoneColor Color = "none"

// Rgb builds an opaque color
func Rgb(red, green, blue uint8) Color {
	return Color(fmt.Sprintf("rgb(%d,%d,%d)", red, green, blue))
}

// Rgba builds a translucent color
func Rgba(red, green, blue uint8, opacity float64) Color {
	return Color(fmt.Sprintf("rgba(%d,%d,%d,%s)", red, green, blue, formatNumber(opacity)))
}

// Point is a position on the canvas
type Point struct {
	X float64
	Y float64
}

// StrokeLineCap is the shape of open path ends
type StrokeLineCap string

// StrokeLineJoin is the shape of path corners
type StrokeLineJoin string

const (
	LineCapButt   StrokeLineCap = "butt"
	LineCapRound  StrokeLineCap = "round"
	LineCapSquare StrokeLineCap = "square"

	LineJoinArcs      StrokeLineJoin = "arcs"
	LineJoinBevel     StrokeLineJoin = "bevel"
	LineJoinMiter     StrokeLineJoin = "miter"
	LineJoinMiterClip StrokeLineJoin = "miter-clip"
	LineJoinRound     StrokeLineJoin = "round"
)

// PathProps holds the paint attributes shared by all shapes.
// Zero values are omitted from the output.
type PathProps struct {
	Fill        Color
	Stroke      Color
	StrokeWidth float64
	LineCap     StrokeLineCap
	LineJoin    StrokeLineJoin
}

func (p PathProps) render(w *bufio.Writer) {
	if p.Fill != "" {
		fmt.Fprintf(w, ` fill="%s"`, p.Fill)
	}
	if p.Stroke != "" {
		fmt.Fprintf(w, ` stroke="%s"`, p.Stroke)
	}
	if p.StrokeWidth != 0 {
		fmt.Fprintf(w, ` stroke-width="%s"`, formatNumber(p.StrokeWidth))
	}
	if p.LineCap != "" {
		fmt.Fprintf(w, ` stroke-linecap="%s"`, p.LineCap)
	}
	if p.LineJoin != "" {
		fmt.Fprintf(w, ` stroke-linejoin="%s"`, p.LineJoin)
	}
}

// Object is anything that can be drawn into a Document
type Object interface {
	render(w *bufio.Writer)
}

// Circle is an SVG <circle>
type Circle struct {
	PathProps
	Center Point
	Radius float64
}

func (c Circle) render(w *bufio.Writer) {
	fmt.Fprintf(w, `<circle cx="%s" cy="%s" r="%s"`,
		formatNumber(c.Center.X), formatNumber(c.Center.Y), formatNumber(c.Radius))
	c.PathProps.render(w)
	w.WriteString("/>")
}

// Polyline is an SVG <polyline>
type Polyline struct {
	PathProps
	Points []Point
}

func (p Polyline) render(w *bufio.Writer) {
	w.WriteString(`<polyline points="`)
	for i, pt := range p.Points {
		if i > 0 {
			w.WriteByte(' ')
		}
		w.WriteString(formatNumber(pt.X))
		w.WriteByte(',')
		w.WriteString(formatNumber(pt.Y))
	}
	w.WriteByte('"')
	p.PathProps.render(w)
	w.WriteString("/>")
}

// Text is an SVG <text>
type Text struct {
	PathProps
	Position   Point
	Offset     Point
	FontSize   int
	FontFamily string
	FontWeight string
	Data       string
}

func (t Text) render(w *bufio.Writer) {
	w.WriteString("<text")
	t.PathProps.render(w)
	fmt.Fprintf(w, ` x="%s" y="%s" dx="%s" dy="%s" font-size="%d"`,
		formatNumber(t.Position.X), formatNumber(t.Position.Y),
		formatNumber(t.Offset.X), formatNumber(t.Offset.Y), t.FontSize)
	if t.FontFamily != "" {
		fmt.Fprintf(w, ` font-family="%s"`, t.FontFamily)
	}
	if t.FontWeight != "" {
		fmt.Fprintf(w, ` font-weight="%s"`, t.FontWeight)
	}
	w.WriteByte('>')
	w.WriteString(escapeText(t.Data))
	w.WriteString("</text>")
}

// Document is an ordered collection of drawable objects
type Document struct {
	objects []Object
}

// Add appends an object; later objects are drawn on top
func (d *Document) Add(obj Object) {
	d.objects = append(d.objects, obj)
}

// Len returns the number of objects
func (d *Document) Len() int {
	return len(d.objects)
}

// Render writes the document as SVG 1.1
func (d *Document) Render(out io.Writer) error {
	w := bufio.NewWriter(out)
	w.WriteString(`<?xml version="1.0" encoding="UTF-8" ?>` + "\n")
	w.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" version="1.1">` + "\n")
	for _, obj := range d.objects {
		w.WriteString("  ")
		obj.render(w)
		w.WriteByte('\n')
	}
	w.WriteString("</svg>")
	return w.Flush()
}

// String renders the document into a string
func (d *Document) String() string {
	var sb strings.Builder
	_ = d.Render(&sb)
	return sb.String()
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&apos;",
	"<", "&lt;",
	">", "&gt;",
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// formatNumber prints up to six significant digits without trailing zeros
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

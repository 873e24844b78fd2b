package svg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColors(t *testing.T) {
	assert.Equal(t, Color("rgb(255,160,0)"), Rgb(255, 160, 0))
	assert.Equal(t, Color("rgba(255,16,12,0.85)"), Rgba(255, 16, 12, 0.85))
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{0, "0"},
		{100, "100"},
		{20.5, "20.5"},
		{99.2283, "99.2283"},
		{1.0 / 3.0, "0.333333"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatNumber(tt.value))
		})
	}
}

func TestDocumentRender(t *testing.T) {
	doc := &Document{}
	doc.Add(Polyline{
		PathProps: PathProps{Fill: NoneColor, Stroke: "green", StrokeWidth: 14, LineCap: LineCapRound, LineJoin: LineJoinRound},
		Points:    []Point{{X: 50, Y: 50}, {X: 250, Y: 250}},
	})
	doc.Add(Circle{
		PathProps: PathProps{Fill: "white"},
		Center:    Point{X: 20, Y: 20},
		Radius:    5,
	})
	doc.Add(Text{
		PathProps:  PathProps{Fill: "black"},
		Position:   Point{X: 35, Y: 20},
		Offset:     Point{X: 7, Y: -3},
		FontSize:   20,
		FontFamily: "Verdana",
		Data:       `Tom & "Jerry" <3`,
	})

	expected := `<?xml version="1.0" encoding="UTF-8" ?>
<svg xmlns="http://www.w3.org/2000/svg" version="1.1">
  <polyline points="50,50 250,250" fill="none" stroke="green" stroke-width="14" stroke-linecap="round" stroke-linejoin="round"/>
  <circle cx="20" cy="20" r="5" fill="white"/>
  <text fill="black" x="35" y="20" dx="7" dy="-3" font-size="20" font-family="Verdana">Tom &amp; &quot;Jerry&quot; &lt;3</text>
</svg>`

	assert.Equal(t, expected, doc.String())
	assert.Equal(t, 3, doc.Len())
}

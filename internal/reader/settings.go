package reader

import (
	"errors"
	"fmt"
	"math"

	"github.com/passbi/transport_catalogue/internal/renderer"
	"github.com/passbi/transport_catalogue/internal/svg"
)

var ErrInvalidColor = errors.New("invalid color")

// RenderSettings is the render_settings section as written in the document
type RenderSettings struct {
	Width             float64    `json:"width" validate:"gte=0,lte=100000"`
	Height            float64    `json:"height" validate:"gte=0,lte=100000"`
	Padding           float64    `json:"padding" validate:"gte=0"`
	LineWidth         float64    `json:"line_width" validate:"gte=0,lte=100000"`
	StopRadius        float64    `json:"stop_radius" validate:"gte=0,lte=100000"`
	BusLabelFontSize  int        `json:"bus_label_font_size" validate:"gte=0,lte=100000"`
	BusLabelOffset    [2]float64 `json:"bus_label_offset"`
	StopLabelFontSize int        `json:"stop_label_font_size" validate:"gte=0,lte=100000"`
	StopLabelOffset   [2]float64 `json:"stop_label_offset"`
	UnderlayerColor   any        `json:"underlayer_color" validate:"required"`
	UnderlayerWidth   float64    `json:"underlayer_width" validate:"gte=0,lte=100000"`
	ColorPalette      []any      `json:"color_palette" validate:"required,min=1"`
}

// ToRendererSettings converts document settings into renderer settings
func (rs RenderSettings) ToRendererSettings() (renderer.Settings, error) {
	if rs.Padding > math.Min(rs.Width, rs.Height)/2 {
		return renderer.Settings{}, fmt.Errorf("padding %v exceeds half of the canvas", rs.Padding)
	}

	underlayer, err := ParseColor(rs.UnderlayerColor)
	if err != nil {
		return renderer.Settings{}, fmt.Errorf("underlayer_color: %w", err)
	}

	palette := make([]svg.Color, 0, len(rs.ColorPalette))
	for i, raw := range rs.ColorPalette {
		color, err := ParseColor(raw)
		if err != nil {
			return renderer.Settings{}, fmt.Errorf("color_palette[%d]: %w", i, err)
		}
		palette = append(palette, color)
	}

	return renderer.Settings{
		Width:             rs.Width,
		Height:            rs.Height,
		Padding:           rs.Padding,
		LineWidth:         rs.LineWidth,
		StopRadius:        rs.StopRadius,
		BusLabelFontSize:  rs.BusLabelFontSize,
		BusLabelOffset:    svg.Point{X: rs.BusLabelOffset[0], Y: rs.BusLabelOffset[1]},
		StopLabelFontSize: rs.StopLabelFontSize,
		StopLabelOffset:   svg.Point{X: rs.StopLabelOffset[0], Y: rs.StopLabelOffset[1]},
		UnderlayerColor:   underlayer,
		UnderlayerWidth:   rs.UnderlayerWidth,
		ColorPalette:      palette,
	}, nil
}

// ParseColor reads a color written as a name, [r, g, b] or [r, g, b, opacity]
func ParseColor(raw any) (svg.Color, error) {
	switch v := raw.(type) {
	case string:
		return svg.Color(v), nil
	case []any:
		if len(v) != 3 && len(v) != 4 {
			return "", fmt.Errorf("%w: expected 3 or 4 components, got %d", ErrInvalidColor, len(v))
		}
		var rgb [3]uint8
		for i := 0; i < 3; i++ {
			component, ok := v[i].(float64)
			if !ok || component < 0 || component > 255 || component != math.Trunc(component) {
				return "", fmt.Errorf("%w: component %v", ErrInvalidColor, v[i])
			}
			rgb[i] = uint8(component)
		}
		if len(v) == 3 {
			return svg.Rgb(rgb[0], rgb[1], rgb[2]), nil
		}
		opacity, ok := v[3].(float64)
		if !ok || opacity < 0 || opacity > 1 {
			return "", fmt.Errorf("%w: opacity %v", ErrInvalidColor, v[3])
		}
		return svg.Rgba(rgb[0], rgb[1], rgb[2], opacity), nil
	default:
		return "", fmt.Errorf("%w: unexpected %T", ErrInvalidColor, raw)
	}
}

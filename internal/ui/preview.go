package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHalfBlocks draws img with one "▀" per two vertical pixels: the
// foreground paints the upper pixel and the background the lower one.
func renderHalfBlocks(img image.Image) string {
	b := img.Bounds()
	var sb strings.Builder

	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			cell := lipgloss.NewStyle().Foreground(hexColor(img.At(x, y)))
			if y+1 < b.Max.Y {
				cell = cell.Background(hexColor(img.At(x, y+1)))
			}
			sb.WriteString(cell.Render("▀"))
		}
	}
	return sb.String()
}

func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}

package components

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/cinelist/internal/imagecache"
)

const halfBlock = "▀"

// RenderPoster draws img as terminal half-blocks, two pixel rows per line.
// The image is scaled to width columns keeping its aspect ratio.
func RenderPoster(img image.Image, width int) string {
	if img == nil || width <= 0 {
		return ""
	}

	thumb := imagecache.Thumbnail(img, width)
	b := thumb.Bounds()

	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			top := hexColor(thumb.At(x, y))
			style := lipgloss.NewStyle().Foreground(top)
			if y+1 < b.Max.Y {
				style = style.Background(hexColor(thumb.At(x, y+1)))
			}
			sb.WriteString(style.Render(halfBlock))
		}
	}
	return sb.String()
}

func hexColor(c interface{ RGBA() (r, g, b, a uint32) }) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r>>8, g>>8, b>>8))
}

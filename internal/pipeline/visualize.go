package pipeline

import (
	"image"
	"image/color"

	"github.com/MeKo-Tech/rf4catch/internal/utils"
)

// Default overlay colors.
var (
	DefaultRegionColor = color.RGBA{R: 255, A: 255}
	DefaultLineColor   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// RenderOverlay draws detection regions, with their labels, and merged line
// boxes over the image and returns an RGBA copy.
func RenderOverlay(img image.Image, res *Result, regionColor, lineColor color.Color) *image.RGBA {
	if img == nil {
		return nil
	}
	dst := utils.CloneRGBA(img)
	if res == nil {
		return dst
	}
	bounds := dst.Bounds()

	for _, r := range res.Regions {
		rect := r.Rect.ToImageRect(bounds)
		utils.DrawRect(dst, rect, regionColor, 2)
		if r.Label == "" {
			continue
		}
		// Label sits above the box, or inside it at the top edge.
		y := rect.Min.Y - utils.LabelHeight - 1
		if y < bounds.Min.Y {
			y = rect.Min.Y + 2
		}
		utils.DrawLabel(dst, image.Pt(rect.Min.X+2, y), r.Label, regionColor)
	}

	for _, l := range res.Lines {
		utils.DrawRect(dst, l.Rect.ToImageRect(bounds), lineColor, 1)
	}
	return dst
}

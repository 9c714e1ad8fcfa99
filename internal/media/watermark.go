package media

import (
	"image"

	"github.com/disintegration/imaging"
)

// ApplyWatermark tiles a semi-transparent copy of mark across the whole
// canvas. The mark is scaled to a fixed fraction of the image width and
// tiled with gaps proportional to the image dimensions, so cropping any
// region still leaves watermark coverage.
func ApplyWatermark(src image.Image, mark image.Image) image.Image {
	bounds := src.Bounds()
	imgW := bounds.Dx()
	imgH := bounds.Dy()

	markW := int(float64(imgW) * watermarkWidthFraction)
	if markW < 1 {
		markW = 1
	}
	markH := markW * mark.Bounds().Dy() / mark.Bounds().Dx()
	if markH < 1 {
		markH = 1
	}
	scaledMark := imaging.Resize(mark, markW, markH, imaging.Lanczos)

	gapX := int(float64(imgW) * watermarkGapFraction)
	gapY := int(float64(imgH) * watermarkGapFraction)

	out := imaging.Clone(src)
	for y := 0; y < imgH; y += markH + gapY {
		for x := 0; x < imgW; x += markW + gapX {
			out = imaging.Overlay(out, scaledMark, image.Pt(x, y), watermarkOpacity)
		}
	}

	return out
}

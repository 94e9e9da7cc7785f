package mosaic

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// FitWithin scales img down so neither dimension exceeds maxDim, preserving
// aspect ratio. Images already within the limit are returned unchanged.
func FitWithin(img image.Image, maxDim int) image.Image {
	if img == nil || maxDim <= 0 {
		return img
	}
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxDim {
		return img
	}

	scale := float64(maxDim) / float64(longest)
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst
}

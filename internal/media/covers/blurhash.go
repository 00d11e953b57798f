package covers

import (
	"fmt"
	"image"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
)

// blurHashSize is the target size for BlurHash computation.
// BlurHash doesn't need high resolution - a small thumbnail produces nearly
// identical results at a fraction of the cost.
const blurHashSize = 64

// ComputeBlurHash generates a BlurHash placeholder string from a decoded
// cover image. Uses 4x3 components, a good balance of size and detail for
// portrait comic covers.
func ComputeBlurHash(img image.Image) (string, error) {
	hash, err := blurhash.Encode(4, 3, scaleDown(img, blurHashSize))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// scaleDown shrinks img so its longest side is at most max, keeping aspect
// ratio. Images already small enough are returned unchanged.
func scaleDown(img image.Image, max int) image.Image {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW <= max && srcH <= max {
		return img
	}

	var dstW, dstH int
	if srcW > srcH {
		dstW = max
		dstH = srcH * max / srcW
	} else {
		dstH = max
		dstW = srcW * max / srcH
	}
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

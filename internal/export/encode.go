package export

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// EncodeJPEG flattens a captured bitmap onto white and encodes it as JPEG.
// Bitmaps wider than maxWidth pixels are scaled down first (0 disables).
// It returns the encoded bytes and the final pixel size.
func EncodeJPEG(bitmap []byte, quality, maxWidth int) ([]byte, int, int, error) {
	src, _, err := image.Decode(bytes.NewReader(bitmap))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode bitmap: %w", err)
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, 0, 0, fmt.Errorf("%w: %dx%d", ErrEmptyBitmap, w, h)
	}
	if maxWidth > 0 && w > maxWidth {
		h = h * maxWidth / w
		if h < 1 {
			h = 1
		}
		w = maxWidth
	}

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(canvas, canvas.Bounds(), src, b.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(canvas, canvas.Bounds(), src, b, draw.Over, nil)
	}

	if quality < 1 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: quality}); err != nil {
		return nil, 0, 0, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), w, h, nil
}

package export

import (
	"errors"
	"fmt"
	"math"
)

// PageSize is a page in millimetres.
type PageSize struct {
	WidthMM  float64
	HeightMM float64
}

// A4 portrait.
var A4 = PageSize{WidthMM: 210, HeightMM: 297}

var ErrEmptyBitmap = errors.New("bitmap has no area")

// Frame is one PDF page. The full image is drawn on every page, shifted up
// by OffsetMM (always <= 0) so the page shows the next slice.
type Frame struct {
	Index    int     `json:"index"`
	OffsetMM float64 `json:"offset_mm"`
}

// Pagination is the placement of a captured bitmap on pages.
type Pagination struct {
	ImageWidthMM  float64 `json:"image_width_mm"`
	ImageHeightMM float64 `json:"image_height_mm"`
	Frames        []Frame `json:"frames"`
}

// Tolerance for float noise when the image height is an exact multiple of
// the page height.
const pageEpsilon = 1e-6

// Paginate scales a bitmap to the page width and slices it into pages. An
// image of h page heights yields ceil(h) pages, page i at offset -i*height.
func Paginate(bitmapW, bitmapH int, page PageSize) (Pagination, error) {
	if bitmapW <= 0 || bitmapH <= 0 {
		return Pagination{}, fmt.Errorf("%w: %dx%d", ErrEmptyBitmap, bitmapW, bitmapH)
	}
	if page.WidthMM <= 0 || page.HeightMM <= 0 {
		return Pagination{}, fmt.Errorf("invalid page size %vx%v", page.WidthMM, page.HeightMM)
	}
	imgH := float64(bitmapH) * page.WidthMM / float64(bitmapW)
	pages := int(math.Ceil(imgH/page.HeightMM - pageEpsilon))
	if pages < 1 {
		pages = 1
	}
	out := Pagination{ImageWidthMM: page.WidthMM, ImageHeightMM: imgH, Frames: make([]Frame, 0, pages)}
	for i := 0; i < pages; i++ {
		out.Frames = append(out.Frames, Frame{Index: i, OffsetMM: -float64(i) * page.HeightMM})
	}
	return out, nil
}

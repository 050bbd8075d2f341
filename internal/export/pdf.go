package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const imageName = "resume"

// WritePDF lays the JPEG out on one page per frame.
func WritePDF(jpg []byte, p Pagination, page PageSize) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: page.WidthMM, Ht: page.HeightMM},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	opt := gofpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(jpg))
	for _, f := range p.Frames {
		pdf.AddPage()
		pdf.ImageOptions(imageName, 0, f.OffsetMM, p.ImageWidthMM, p.ImageHeightMM, false, opt, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

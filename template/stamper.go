package template

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/flopp/go-findfont"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/scanforge/scanforge/records"
	"golang.org/x/image/font"
)

// Stamper renders record values onto a template page image.
type Stamper struct {
	fieldMap *FieldMap
	font     *truetype.Font
	faces    map[float64]font.Face
}

// NewStamper locates and parses the configured font once; faces per size are
// cached across documents.
func NewStamper(fm *FieldMap, fontName string) (*Stamper, error) {
	if fm.FontName != "" {
		fontName = fm.FontName
	}
	if fontName == "" {
		fontName = "DejaVuSans.ttf"
	}
	fontPath, err := findfont.Find(fontName)
	if err != nil {
		return nil, fmt.Errorf("unable to locate font %q: %w", fontName, err)
	}
	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read font %s: %w", fontPath, err)
	}
	parsed, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("unable to parse font %s: %w", fontPath, err)
	}
	Logger.Info("Stamper font loaded", "font", fontName, "path", fontPath)
	return &Stamper{fieldMap: fm, font: parsed, faces: make(map[float64]font.Face)}, nil
}

func (s *Stamper) face(size float64) font.Face {
	if f, ok := s.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(s.font, &truetype.Options{Size: size})
	s.faces[size] = f
	return f
}

// Stamp draws the record's values onto the rendered template page and returns
// the filled page image. page is the zero-based template page the image was
// rendered from; only fields mapped to it are drawn.
func (s *Stamper) Stamp(pageImage image.Image, page int, rec *records.ClaimRecord) (image.Image, error) {
	values := FieldValues(rec)

	dc := gg.NewContextForImage(pageImage)
	dc.SetRGB(0, 0, 0)

	for _, field := range s.fieldMap.Fields {
		if field.Page != page {
			continue
		}
		value, ok := values[field.Name]
		if !ok {
			Logger.Warn("Field map names an unknown record field", "field", field.Name)
			continue
		}
		if value == "" {
			continue
		}

		size := field.Size
		if size <= 0 {
			size = s.fieldMap.DefaultSize
		}
		dc.SetFontFace(s.face(size))

		if field.Kind == KindCheckbox {
			if isChecked(value) {
				dc.DrawString("X", field.X, field.Y)
			}
			continue
		}

		if field.MaxWidth > 0 {
			value = truncateToWidth(dc, value, field.MaxWidth)
		}
		dc.DrawString(value, field.X, field.Y)
	}

	return dc.Image(), nil
}

func isChecked(value string) bool {
	switch strings.ToLower(value) {
	case "true", "x", "yes", "1":
		return true
	}
	return false
}

func truncateToWidth(dc *gg.Context, value string, maxWidth float64) string {
	for len(value) > 1 {
		w, _ := dc.MeasureString(value)
		if w <= maxWidth {
			break
		}
		value = value[:len(value)-1]
	}
	return value
}

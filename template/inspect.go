package template

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Info is the result of a template sanity check.
type Info struct {
	Pages   int
	HasText bool
}

// Inspect opens the template PDF and reports its page count and whether it
// carries a text layer. Used by the startup checks; a zero-page or unreadable
// template fails the run before any documents are produced.
func Inspect(path string) (*Info, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open template %s: %w", path, err)
	}
	defer file.Close()

	info := &Info{Pages: reader.NumPage()}
	if info.Pages < 1 {
		return nil, fmt.Errorf("template %s has no pages", path)
	}

	text, err := reader.GetPlainText()
	if err == nil {
		var buf bytes.Buffer
		buf.ReadFrom(text)
		info.HasText = buf.Len() > 0
	}
	return info, nil
}

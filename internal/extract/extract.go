// Package extract pulls raw text out of PDF files. Extraction quality is
// whatever the PDF's own text layer offers; scanned papers without a text
// layer come back as ErrNoExtractableText.
package extract

import (
	"fmt"
	"io"
	"strings"

	"revmatch/internal/util"

	"github.com/ledongthuc/pdf"
)

// Func extracts the raw text of the document at path. Implementations may
// fail; callers in the batch path treat failure as empty text and carry
// on.
type Func func(path string) (string, error)

// RawText concatenates the plain text of every page in page order.
func RawText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, reader); err != nil {
		return "", fmt.Errorf("read extracted text: %w", err)
	}
	text := util.SanitizeText(buf.String())
	if text == "" {
		return "", util.ErrNoExtractableText
	}
	return text, nil
}

package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/kataras/golog"
	"github.com/ledongthuc/pdf"
)

// MinUsefulChars is the threshold below which extracted text is assumed
// to come from a scanned (image-only) document.
const MinUsefulChars = 100

// ExtractText reads all plain text from a PDF file on disk. Pages that
// fail to decode are skipped rather than failing the document.
func ExtractText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	return readPages(reader), nil
}

// ExtractTextFromBytes reads all plain text from an in-memory PDF,
// as received from an upload.
func ExtractTextFromBytes(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	return readPages(reader), nil
}

func readPages(reader *pdf.Reader) string {
	var b strings.Builder

	totalPages := reader.NumPage()
	for i := 1; i <= totalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			golog.Debugf("skipping page %d: %v", i, err)
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		b.WriteString(text)
		b.WriteString("\n")
	}

	return b.String()
}

// LooksScanned reports whether the extracted text is too short to be a
// real text layer, which usually means the PDF is image-only.
func LooksScanned(text string) bool {
	return len(strings.TrimSpace(text)) < MinUsefulChars
}

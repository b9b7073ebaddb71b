package services

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageText is the extracted text of one PDF page.
type PageText struct {
	Number int
	Text   string
}

// PDFExtractor pulls per-page text out of PDF files so provenance keeps
// page numbers through chunking and retrieval.
type PDFExtractor struct {
	maxFileSize int64
}

func NewPDFExtractor(maxFileSize int64) *PDFExtractor {
	if maxFileSize <= 0 {
		maxFileSize = 200 << 20
	}
	return &PDFExtractor{maxFileSize: maxFileSize}
}

// ExtractPages reads filePath and returns the text of each non-empty page.
func (e *PDFExtractor) ExtractPages(filePath string) ([]PageText, error) {
	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat PDF file: %w", err)
	}
	if stat.Size() > e.maxFileSize {
		return nil, fmt.Errorf("pdf too large for in-memory extraction: %d bytes", stat.Size())
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF file: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var pages []PageText
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			log.Printf("Warning: failed to extract text from page %d of %s: %v", i, filePath, err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		pages = append(pages, PageText{Number: i, Text: text})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no text extracted from %s", filePath)
	}
	return pages, nil
}

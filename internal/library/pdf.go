// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	wordsPerMinute = 200
	minReadMinutes = 3
	maxReadMinutes = 120
)

// AttachPDF downloads the saved paper's PDF into the papers directory and
// re-estimates its read time from the actual word count. The paper must be
// saved and carry a PDF URL. Returns the path of the stored file.
func (s *Store) AttachPDF(ctx context.Context, client *http.Client, paperID string) (string, error) {
	saved, err := s.PaperByID(ctx, paperID)
	if err != nil {
		return "", err
	}
	if saved == nil {
		return "", fmt.Errorf("paper %s is not saved", paperID)
	}
	if saved.Paper.PDFURL == "" {
		return "", fmt.Errorf("paper %s has no PDF URL", paperID)
	}
	if s.papersDir == "" {
		return "", fmt.Errorf("no papers directory configured")
	}
	if client == nil {
		client = http.DefaultClient
	}

	destPath := filepath.Join(s.papersDir, sanitizeFilename(paperID)+".pdf")
	if err := s.downloadPDF(ctx, client, saved.Paper.PDFURL, destPath); err != nil {
		return "", err
	}

	paper := saved.Paper
	if minutes, err := estimateReadMinutes(destPath); err != nil {
		// Image-only or malformed PDFs keep the source estimate.
		fmt.Fprintf(s.warn, "read-time estimate for %s: %v\n", paperID, err)
	} else {
		paper.ReadMinutes = minutes
	}

	payload, err := json.Marshal(paper)
	if err != nil {
		return "", fmt.Errorf("encoding paper: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE saved_papers SET paper = ?, pdf_path = ? WHERE id = ?`,
		string(payload), destPath, paperID,
	)
	if err != nil {
		return "", fmt.Errorf("recording pdf path: %w", err)
	}
	return destPath, nil
}

// downloadPDF fetches url to destPath through a temporary file so a failed
// download never leaves a partial PDF behind.
func (s *Store) downloadPDF(ctx context.Context, client *http.Client, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".pdf-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// estimateReadMinutes counts the words in the PDF and converts them to
// minutes at wordsPerMinute, clamped to [minReadMinutes, maxReadMinutes].
func estimateReadMinutes(path string) (minutes int, err error) {
	// The pdf library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parsing PDF: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	words := 0
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Some pages fail to parse; count what we can.
			continue
		}
		words += len(strings.Fields(text))
	}
	if words == 0 {
		return 0, fmt.Errorf("no text content extracted")
	}

	minutes = words / wordsPerMinute
	if minutes < minReadMinutes {
		minutes = minReadMinutes
	}
	if minutes > maxReadMinutes {
		minutes = maxReadMinutes
	}
	return minutes, nil
}

// sanitizeFilename keeps paper IDs filesystem-safe.
func sanitizeFilename(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, id)
}

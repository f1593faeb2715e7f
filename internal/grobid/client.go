// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package grobid submits PDFs to a GROBID service and converts the TEI
// XML response into the raw document model.
// Implements: prd001-ingestion (R1-R4).
package grobid

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/matex/internal/httputil"
	"github.com/pdiddy/matex/pkg/types"
)

var (
	// ErrUnavailable means the service kept answering 503 after the
	// retry budget was spent. GROBID does this while loading models.
	ErrUnavailable = errors.New("grobid service unavailable")

	// ErrNoContent means GROBID answered 204: the PDF was accepted but
	// nothing could be extracted from it.
	ErrNoContent = errors.New("grobid extracted no content")
)

const (
	fulltextPath = "/api/processFulltextDocument"
	isAlivePath  = "/api/isalive"

	defaultTimeout = 90 * time.Second
)

// Client talks to one GROBID instance.
type Client struct {
	http *http.Client
	cfg  types.GrobidConfig
}

// New builds a client from configuration, filling in defaults for
// anything unset.
func New(cfg types.GrobidConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8070"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
	}
}

// IsAlive probes the service health endpoint.
func (c *Client) IsAlive(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+isAlivePath, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("grobid health check: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("grobid health check: status %d", resp.StatusCode)
	}
	return nil
}

// ProcessFulltext uploads one PDF and returns the parsed raw extraction
// plus the service version reported in the TEI header ("" when absent).
//
// Header consolidation is enabled so GROBID cross-checks bibliographic
// metadata against CrossRef; citation consolidation stays off because it
// multiplies processing time on reference-heavy papers (R3.2).
func (c *Client) ProcessFulltext(ctx context.Context, pdfPath string) (*types.RawExtraction, string, error) {
	pdf, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", pdfPath, err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("input", filepath.Base(pdfPath))
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(pdf); err != nil {
		return nil, "", err
	}
	fields := []struct{ k, v string }{
		{"consolidateHeader", "1"},
		{"consolidateCitations", "0"},
		{"includeRawCitations", "0"},
		{"includeRawAffiliations", "1"},
		{"teiCoordinates", "figure"},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.k, f.v); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+fulltextPath, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/xml")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries)
	if err != nil {
		return nil, "", fmt.Errorf("grobid request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// parsed below
	case http.StatusNoContent:
		return nil, "", fmt.Errorf("%s: %w", filepath.Base(pdfPath), ErrNoContent)
	case http.StatusServiceUnavailable:
		return nil, "", ErrUnavailable
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("grobid returned status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading grobid response: %w", err)
	}

	raw, version, err := Parse(body)
	if err != nil {
		return nil, "", fmt.Errorf("parsing TEI for %s: %w", filepath.Base(pdfPath), err)
	}
	if version == "" {
		version = c.cfg.Version
	}
	return raw, version, nil
}

// Copyright 2026 Arcentra Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package extractor turns uploaded requirement documents into plain text.
// Plain text files are decoded in process; PDF and DOCX are delegated to a
// text extraction service over HTTP.
package extractor

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/google/wire"
	"github.com/pkg/errors"
)

// ProviderSet is the Wire provider set for the extractor package.
var ProviderSet = wire.NewSet(ProvideExtractor)

// DefaultMaxFileSize caps a single uploaded document at 10MB.
const DefaultMaxFileSize = 10 * 1024 * 1024

// ErrUnsupportedFormat is returned for file extensions outside the supported set.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrFileTooLarge is returned when a document exceeds the size cap.
var ErrFileTooLarge = errors.New("file too large")

var supportedExtensions = map[string]struct{}{
	".pdf":  {},
	".docx": {},
	".txt":  {},
}

// Config defines document extraction settings.
type Config struct {
	// RemoteURL is the base URL of the PDF/DOCX text extraction service.
	RemoteURL   string `mapstructure:"remoteUrl"`
	Timeout     int    `mapstructure:"timeout"` // seconds
	MaxFileSize int64  `mapstructure:"maxFileSize"`
}

func (c *Config) SetDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 60
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
}

// IExtractor extracts plain text from an uploaded document.
type IExtractor interface {
	// Supported reports whether the filename's extension can be extracted.
	Supported(filename string) bool
	// Extract returns the document's text content, trimmed of surrounding
	// whitespace.
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

// Extractor implements IExtractor with native text decoding and a remote
// extraction service for binary formats.
type Extractor struct {
	cfg  Config
	http *resty.Client
}

var _ IExtractor = (*Extractor)(nil)

// ProvideExtractor creates the extractor from config.
func ProvideExtractor(cfg Config) IExtractor {
	cfg.SetDefaults()
	client := resty.New().SetTimeout(time.Duration(cfg.Timeout) * time.Second)
	if cfg.RemoteURL != "" {
		client.SetBaseURL(strings.TrimRight(cfg.RemoteURL, "/"))
	}
	return &Extractor{cfg: cfg, http: client}
}

// Supported reports whether the filename's extension can be extracted.
func (e *Extractor) Supported(filename string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Extract returns the document's text content.
func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := supportedExtensions[ext]; !ok {
		return "", errors.Wrapf(ErrUnsupportedFormat, "%s", filename)
	}
	if int64(len(data)) > e.cfg.MaxFileSize {
		return "", errors.Wrapf(ErrFileTooLarge, "%d bytes (max %d)", len(data), e.cfg.MaxFileSize)
	}

	switch ext {
	case ".txt":
		return strings.TrimSpace(decodeText(data)), nil
	case ".pdf", ".docx":
		text, err := e.extractRemote(ctx, filename, data)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(text), nil
	default:
		return "", errors.Wrapf(ErrUnsupportedFormat, "%s", ext)
	}
}

// decodeText interprets bytes as UTF-8, falling back to Latin-1 so legacy
// exports still yield readable text.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

type extractResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// extractRemote posts the document to the extraction service and returns the
// extracted text.
func (e *Extractor) extractRemote(ctx context.Context, filename string, data []byte) (string, error) {
	if e.cfg.RemoteURL == "" {
		return "", fmt.Errorf("no extraction service configured for %s", filepath.Ext(filename))
	}
	var out extractResponse
	resp, err := e.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(data)).
		SetResult(&out).
		SetError(&out).
		Post("/extract")
	if err != nil {
		return "", errors.Wrap(err, "extraction service request failed")
	}
	if resp.IsError() {
		if out.Error != "" {
			return "", fmt.Errorf("extraction service: %s", out.Error)
		}
		return "", fmt.Errorf("extraction service returned status %d", resp.StatusCode())
	}
	return out.Text, nil
}

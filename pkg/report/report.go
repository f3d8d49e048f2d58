// Package report collects test attachments (notes, page markup, JSON data,
// screenshots) for a results directory consumed by an external report viewer.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/entrhq/smartfind/pkg/driver"
	"github.com/entrhq/smartfind/pkg/logging"
)

// Media types understood by DirSink.
const (
	MediaText       = "text/plain"
	MediaHTML       = "text/html"
	MediaJSON       = "application/json"
	MediaPNG        = "image/png"
	MediaCSV        = "text/csv"
	mediaOctet      = "application/octet-stream"
	attachmentIndex = "attachments.json"
)

var extensions = map[string]string{
	MediaText:  "txt",
	MediaHTML:  "html",
	MediaJSON:  "json",
	MediaPNG:   "png",
	MediaCSV:   "csv",
	mediaOctet: "bin",
}

// Sink receives attachments. Attaching is one-way: a sink that cannot store
// an attachment deals with the failure itself.
type Sink interface {
	Attach(name, mediaType string, data []byte)
}

// Attachment describes one stored attachment.
type Attachment struct {
	Name      string `json:"name"`
	MediaType string `json:"type"`
	Source    string `json:"source"`
	Data      []byte `json:"-"`
}

// NopSink discards every attachment.
type NopSink struct{}

// Attach drops the attachment.
func (NopSink) Attach(string, string, []byte) {}

// MemorySink keeps attachments in memory.
type MemorySink struct {
	mu          sync.Mutex
	attachments []Attachment
}

// Attach stores a copy of data.
func (s *MemorySink) Attach(name, mediaType string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachments = append(s.attachments, Attachment{
		Name:      name,
		MediaType: mediaType,
		Data:      append([]byte(nil), data...),
	})
}

// Attachments returns a copy of everything attached so far.
func (s *MemorySink) Attachments() []Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Attachment(nil), s.attachments...)
}

// DirSink writes each attachment to its own file in a results directory,
// named <uuid>-attachment.<ext>.
type DirSink struct {
	dir    string
	logger *logging.Logger

	mu          sync.Mutex
	attachments []Attachment
}

// NewDirSink creates the results directory if needed.
func NewDirSink(dir string, logger *logging.Logger) (*DirSink, error) {
	if dir == "" {
		return nil, fmt.Errorf("results directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	if logger == nil {
		logger = logging.Discard("report")
	}
	return &DirSink{dir: dir, logger: logger}, nil
}

// Dir returns the results directory.
func (s *DirSink) Dir() string {
	return s.dir
}

// Attach writes data to a new file in the results directory. Write failures
// are logged and the attachment is skipped.
func (s *DirSink) Attach(name, mediaType string, data []byte) {
	ext, ok := extensions[mediaType]
	if !ok {
		ext = extensions[mediaOctet]
	}
	source := fmt.Sprintf("%s-attachment.%s", uuid.New().String(), ext)

	if err := os.WriteFile(filepath.Join(s.dir, source), data, 0644); err != nil {
		s.logger.Errorf("failed to write attachment %q: %v", name, err)
		return
	}

	s.mu.Lock()
	s.attachments = append(s.attachments, Attachment{Name: name, MediaType: mediaType, Source: source})
	s.mu.Unlock()
	s.logger.Debugf("attached %q as %s", name, source)
}

// Attachments returns the attachments written so far.
func (s *DirSink) Attachments() []Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Attachment(nil), s.attachments...)
}

// WriteIndex writes attachments.json listing every attachment by name.
func (s *DirSink) WriteIndex() error {
	data, err := json.MarshalIndent(s.Attachments(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode attachment index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, attachmentIndex), data, 0644); err != nil {
		return fmt.Errorf("failed to write attachment index: %w", err)
	}
	return nil
}

// AttachText attaches plain text.
func AttachText(s Sink, name, text string) {
	s.Attach(name, MediaText, []byte(text))
}

// AttachHTML attaches an HTML document or fragment.
func AttachHTML(s Sink, name, html string) {
	s.Attach(name, MediaHTML, []byte(html))
}

// AttachJSON attaches v encoded as indented JSON.
func AttachJSON(s Sink, name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	s.Attach(name, MediaJSON, data)
	return nil
}

// AttachScreenshot attaches a PNG image.
func AttachScreenshot(s Sink, name string, png []byte) {
	s.Attach(name, MediaPNG, png)
}

// AttachCSV attaches rows as comma separated values.
func AttachCSV(s Sink, name string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	s.Attach(name, MediaCSV, buf.Bytes())
	return nil
}

// CaptureFailure attaches a note describing a failed step and, when target
// can take screenshots, a screenshot of the page at the time of failure.
func CaptureFailure(ctx context.Context, s Sink, target interface{}, step string, cause error) {
	note := fmt.Sprintf("step: %s\nerror: %v", step, cause)
	if page, ok := target.(driver.Page); ok {
		if url, err := page.CurrentURL(ctx); err == nil {
			note += "\nurl: " + url
		}
	}
	AttachText(s, step+" failure", note)

	capturer, ok := target.(driver.ScreenshotCapturer)
	if !ok {
		return
	}
	png, err := capturer.CaptureScreenshot(ctx)
	if err != nil {
		AttachText(s, step+" screenshot error", err.Error())
		return
	}
	AttachScreenshot(s, step+" screenshot", png)
}

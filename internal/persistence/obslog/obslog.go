// Package obslog reads and writes observation logs, the boundary artifact
// between the upstream fetcher and the aggregation core. One JSON object per
// line; files ending in .zst are zstd-compressed. Line order is meaningful:
// collision allocation follows it.
package obslog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Observation is one raw scraped point, still keyed by the upstream zone id.
// The pipeline resolves it against the zone catalog.
type Observation struct {
	Expansion string  `json:"expansion"`
	Category  string  `json:"category"`
	SourceID  string  `json:"source_id"`
	ObjectID  string  `json:"object_id,omitempty"`
	ZoneID    string  `json:"zone"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

type Writer struct {
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// NewWriter creates (truncates) the log at path. A .zst suffix selects
// compression.
func NewWriter(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}

	w := &Writer{f: f}
	var sink io.Writer = f
	if strings.HasSuffix(path, ".zst") {
		enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		w.enc = enc
		sink = enc
	}
	w.w = bufio.NewWriterSize(sink, 128*1024)
	return w, nil
}

func (w *Writer) Append(obs Observation) error {
	b, err := json.Marshal(obs)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

func (w *Writer) Close() error {
	var firstErr error
	if err := w.w.Flush(); err != nil {
		firstErr = err
	}
	if w.enc != nil {
		if err := w.enc.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := w.f.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// ReadAll loads every observation in the file, preserving line order.
func ReadAll(path string) ([]Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		src = dec
	}

	var out []Observation
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var obs Observation
		if err := json.Unmarshal([]byte(text), &obs); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", filepath.Base(path), line, err)
		}
		out = append(out, obs)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

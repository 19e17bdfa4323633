// SPDX-License-Identifier: MIT
package cmd

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"voccal/internal/pcm"
)

// ErrInputTooLarge is returned for input files above recording.max_bytes.
var ErrInputTooLarge = errors.New("input exceeds the maximum upload size")

// readInput loads an audio file the way the upload form accepts one: at
// most maxBytes long and recognisable as audio before it is decoded.
func readInput(path string, maxBytes int64) (*pcm.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%s: %w (%d bytes)", path, ErrInputTooLarge, maxBytes)
	}
	if ct := http.DetectContentType(data); !strings.HasPrefix(ct, "audio/") {
		return nil, fmt.Errorf("%s: not an audio file (detected %s)", path, ct)
	}

	return pcm.Decode(data)
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// defaultRecordingPath names a recording by its start time.
func defaultRecordingPath(dir string, now time.Time) string {
	return filepath.Join(dir, "recording-"+now.UTC().Format("02-01-2006-150405")+".wav")
}

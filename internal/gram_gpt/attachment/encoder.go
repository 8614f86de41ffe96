// Package attachment turns user supplied files into inline data parts for the generative API.
package attachment

import (
	"encoding/base64"
	"fmt"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxSize limits a single attachment (15MB raw, about 20MB once base64 encoded).
const DefaultMaxSize int64 = 15 * 1024 * 1024

const octetStream = "application/octet-stream"

// imageExts maps file extensions to media types for the image formats the model accepts.
var imageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
}

// Encoder reads a whole attachment and returns its base64 inline representation.
type Encoder struct {
	maxSize int64
}

// NewEncoder creates an Encoder; a non-positive maxSize falls back to DefaultMaxSize.
func NewEncoder(maxSize int64) *Encoder {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Encoder{maxSize: maxSize}
}

// Encode reads r to the end before returning, so a turn never starts with a partial image.
// The declared media type is used when it is meaningful, otherwise the payload is sniffed;
// the result never has an empty media type.
func (e *Encoder) Encode(r io.Reader, mimeType string) (models.InlineData, error) {
	if r == nil {
		return models.InlineData{}, fmt.Errorf("%w: no payload", models.ErrEncoding)
	}
	// Читаем на один байт больше лимита, чтобы отличить "ровно лимит" от "больше лимита"
	data, err := io.ReadAll(io.LimitReader(r, e.maxSize+1))
	if err != nil {
		return models.InlineData{}, fmt.Errorf("%w: read payload: %w", models.ErrEncoding, err)
	}
	if len(data) == 0 {
		return models.InlineData{}, fmt.Errorf("%w: empty payload", models.ErrEncoding)
	}
	if int64(len(data)) > e.maxSize {
		return models.InlineData{}, fmt.Errorf("%w: payload exceeds %d bytes", models.ErrEncoding, e.maxSize)
	}

	return models.InlineData{
		Data:     base64.StdEncoding.EncodeToString(data),
		MimeType: resolveMimeType(mimeType, data),
	}, nil
}

// EncodeFile encodes a file from disk, taking the media type from its extension.
func (e *Encoder) EncodeFile(path string) (models.InlineData, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.InlineData{}, fmt.Errorf("%w: open %s: %w", models.ErrEncoding, path, err)
	}
	defer f.Close()

	return e.Encode(f, imageExts[strings.ToLower(filepath.Ext(path))])
}

// resolveMimeType strips parameters from the declared type and sniffs the payload when the
// declared type is missing or generic.
func resolveMimeType(declared string, data []byte) string {
	if mt := baseMediaType(declared); mt != "" && mt != octetStream {
		return mt
	}
	if mt := baseMediaType(http.DetectContentType(data)); mt != "" {
		return mt
	}
	return octetStream
}

func baseMediaType(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(s)
	if err != nil {
		return ""
	}
	return mt
}

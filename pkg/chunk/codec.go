package chunk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxChunkSize is the largest chunk payload, in characters.
	DefaultMaxChunkSize = 500
	// DefaultMarker is appended to every chunk that has a successor.
	DefaultMarker = "|C|"
)

// Codec encodes values to chunks and back. The zero value is not usable; use
// Default or fill both fields.
type Codec struct {
	// MaxChunkSize bounds the number of characters taken from the payload for
	// one chunk. The marker is appended on top of it.
	MaxChunkSize int
	// Marker is the continuation suffix.
	Marker string
}

// Default returns the codec used by the REAPER stores.
func Default() Codec {
	return Codec{MaxChunkSize: DefaultMaxChunkSize, Marker: DefaultMarker}
}

// Validate reports whether the codec can be used.
func (c Codec) Validate() error {
	if c.MaxChunkSize <= 0 {
		return fmt.Errorf("%w: max chunk size %d", ErrInvalidCodec, c.MaxChunkSize)
	}
	if c.Marker == "" {
		return fmt.Errorf("%w: empty marker", ErrInvalidCodec)
	}
	return nil
}

// Encode serializes value as JSON and splits it into chunks.
func (c Codec) Encode(value any) ([]string, error) {
	payload, err := Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("chunk: encode value: %w", err)
	}
	return c.EncodeString(string(payload))
}

// EncodeString splits an already serialized payload into
// ceil(characters/MaxChunkSize) chunks. All chunks but the last end with the
// marker.
func (c Codec) EncodeString(payload string) ([]string, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if strings.Contains(payload, c.Marker) {
		return nil, ErrMarkerCollision
	}

	n := utf8.RuneCountInString(payload)
	count := (n + c.MaxChunkSize - 1) / c.MaxChunkSize
	chunks := make([]string, 0, count)
	rest := payload
	for i := 0; i < count; i++ {
		cut := byteOffset(rest, c.MaxChunkSize)
		piece := rest[:cut]
		rest = rest[cut:]
		if i < count-1 {
			piece += c.Marker
		}
		chunks = append(chunks, piece)
	}
	return chunks, nil
}

// Continues reports whether chunk announces a successor.
func (c Codec) Continues(chunk string) bool {
	return strings.HasSuffix(chunk, c.Marker)
}

// Payload returns chunk without its continuation marker.
func (c Codec) Payload(chunk string) string {
	return strings.TrimSuffix(chunk, c.Marker)
}

// Join strips markers and concatenates chunks in order.
func (c Codec) Join(chunks []string) string {
	var b strings.Builder
	for _, ch := range chunks {
		b.WriteString(c.Payload(ch))
	}
	return b.String()
}

// Decode reassembles chunks and unmarshals the JSON payload into out.
func (c Codec) Decode(chunks []string, out any) error {
	payload := c.Join(chunks)
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return &ParseError{Payload: payload, Err: err}
	}
	return nil
}

// Marshal serializes value as compact JSON without HTML escaping, so the
// stored payload stays short and readable on the host.
func Marshal(value any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// byteOffset returns the byte index just past the first n runes of s.
func byteOffset(s string, n int) int {
	i := 0
	for off := range s {
		if i == n {
			return off
		}
		i++
	}
	return len(s)
}

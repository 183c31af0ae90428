package events

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Frame is one encoded SSE message: "event: <name>\ndata: <json>\n\n".
type Frame []byte

// Event is a decoded SSE message.
type Event struct {
	Name string
	Data json.RawMessage
}

// Decode unmarshals the event data into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// Encode serializes payload and wraps it in an SSE frame. JSON never
// contains a raw newline, so the data always fits on one line.
func Encode(name string, payload any) (Frame, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", name, err)
	}

	var buf bytes.Buffer
	buf.Grow(len(name) + len(data) + 16)
	buf.WriteString("event: ")
	buf.WriteString(name)
	buf.WriteString("\ndata: ")
	buf.Write(data)
	buf.WriteString("\n\n")
	return buf.Bytes(), nil
}

// Reader decodes a stream of SSE frames.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps r. Lines may be up to 4 MiB, enough for a full init
// snapshot.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Reader{scanner: scanner}
}

// Next returns the next complete event. Comment lines and fields other
// than event and data are skipped. It returns io.EOF when the stream ends
// cleanly between events.
func (r *Reader) Next() (Event, error) {
	var (
		name string
		data []string
		seen bool
	)

	for r.scanner.Scan() {
		line := r.scanner.Text()
		if line == "" {
			if !seen {
				continue
			}
			if name == "" {
				name = "message"
			}
			return Event{Name: name, Data: json.RawMessage(strings.Join(data, "\n"))}, nil
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			name = value
			seen = true
		case "data":
			data = append(data, value)
			seen = true
		}
	}

	if err := r.scanner.Err(); err != nil {
		return Event{}, fmt.Errorf("read event stream: %w", err)
	}
	if seen {
		return Event{}, io.ErrUnexpectedEOF
	}
	return Event{}, io.EOF
}

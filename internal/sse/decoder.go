// Package sse implements server-sent event framing: a pull-based decoder for
// consuming streams and a flushing writer for producing them.
package sse

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// Event is one decoded frame. Data is the raw JSON payload of the joined
// data: lines.
type Event struct {
	Name string
	Data json.RawMessage
}

// Decoder reassembles discrete events from an SSE byte stream. It reads
// lazily, so chunk boundaries that split a line across two reads are
// invisible to callers. Frames whose payload is not valid JSON are skipped
// rather than failing the stream.
type Decoder struct {
	br        *bufio.Reader
	eventName string
	dataLines []string
	done      bool
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{br: bufio.NewReader(r)}
}

// Next returns the next complete event, or io.EOF once the stream is
// exhausted. A frame left unterminated at end of stream is still dispatched.
func (d *Decoder) Next() (Event, error) {
	if d.done {
		return Event{}, io.EOF
	}

	for {
		line, err := d.br.ReadString('\n')
		if err != nil && err != io.EOF {
			return Event{}, err
		}
		atEOF := err == io.EOF

		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")

		if line == "" {
			if ev, ok := d.flush(); ok {
				if atEOF {
					d.done = true
				}
				return ev, nil
			}
		} else {
			d.consumeLine(line)
		}

		if atEOF {
			d.done = true
			if ev, ok := d.flush(); ok {
				return ev, nil
			}
			return Event{}, io.EOF
		}
	}
}

func (d *Decoder) consumeLine(line string) {
	switch {
	case strings.HasPrefix(line, ":"):
		// comment, ignore
	case strings.HasPrefix(line, "event:"):
		d.eventName = strings.TrimSpace(line[len("event:"):])
	case strings.HasPrefix(line, "data:"):
		d.dataLines = append(d.dataLines, strings.TrimPrefix(line[len("data:"):], " "))
	}
}

// flush validates and returns the buffered frame, if any. Incomplete frames
// and malformed payloads are dropped silently.
func (d *Decoder) flush() (Event, bool) {
	name := d.eventName
	data := strings.Join(d.dataLines, "\n")
	d.eventName = ""
	d.dataLines = nil

	if name == "" || data == "" {
		return Event{}, false
	}
	if !json.Valid([]byte(data)) {
		return Event{}, false
	}
	return Event{Name: name, Data: json.RawMessage(data)}, true
}

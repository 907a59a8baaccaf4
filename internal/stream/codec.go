package stream

import (
	"encoding/json"
	"strings"
)

const (
	prefix     = "data: "
	terminator = "\n\n"
)

// payload is the JSON shape shared by all three record kinds.
type payload struct {
	Chunk    string `json:"chunk,omitempty"`
	Done     bool   `json:"done,omitempty"`
	Document string `json:"document,omitempty"`
	ID       string `json:"id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Encode serializes an event into one complete wire record.
func Encode(ev Event) []byte {
	var p payload
	switch e := ev.(type) {
	case Chunk:
		p.Chunk = e.Text
	case Done:
		p.Done = true
		p.Document = e.Document
		p.ID = e.ID
	case Error:
		p.Error = e.Message
	}
	b, _ := json.Marshal(p)
	return []byte(prefix + string(b) + terminator)
}

// Decoder reassembles events from a byte stream regardless of how the
// transport chunks it. Bytes are appended to a single growing buffer;
// complete records are split off at the double-newline terminator and the
// trailing incomplete fragment is kept for the next arrival.
type Decoder struct {
	buf strings.Builder
}

// Feed appends newly arrived bytes and returns all events completed by them.
// Records that do not carry the expected prefix are silently discarded.
func (d *Decoder) Feed(p []byte) []Event {
	d.buf.WriteString(string(p))
	pending := d.buf.String()

	var events []Event
	for {
		i := strings.Index(pending, terminator)
		if i < 0 {
			break
		}
		rec := pending[:i]
		pending = pending[i+len(terminator):]
		if ev, ok := decodeRecord(rec); ok {
			events = append(events, ev)
		}
	}

	d.buf.Reset()
	d.buf.WriteString(pending)
	return events
}

// Flush parses whatever remains in the buffer as a final, unterminated
// record. It reports false when the remainder is empty or malformed.
func (d *Decoder) Flush() (Event, bool) {
	rec := strings.TrimSpace(d.buf.String())
	d.buf.Reset()
	if rec == "" {
		return nil, false
	}
	return decodeRecord(rec)
}

func decodeRecord(rec string) (Event, bool) {
	if !strings.HasPrefix(rec, prefix) {
		return nil, false
	}
	var p payload
	if err := json.Unmarshal([]byte(rec[len(prefix):]), &p); err != nil {
		return nil, false
	}
	switch {
	case p.Error != "":
		return Error{Message: p.Error}, true
	case p.Done:
		return Done{Document: p.Document, ID: p.ID}, true
	default:
		return Chunk{Text: p.Chunk}, true
	}
}

// Package stream implements the wire framing for incremental generation
// events: UTF-8 records of the form "data: {json}\n\n", one event per record.
package stream

// Event is one unit exchanged over the wire. Exactly one concrete case is
// populated per instance; consumers must switch exhaustively over the three
// cases.
type Event interface {
	isEvent()
}

// Chunk is an incremental fragment of the document being generated.
type Chunk struct {
	Text string
}

// Done is the terminal success event. It carries the final extracted
// document and the persisted artifact id.
type Done struct {
	Document string
	ID       string
}

// Error is the terminal failure event with a user-facing message.
type Error struct {
	Message string
}

func (Chunk) isEvent() {}
func (Done) isEvent()  {}
func (Error) isEvent() {}

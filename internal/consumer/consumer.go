// Package consumer is the client-side counterpart of the generation stream:
// it reassembles frames, keeps a bounded display window over the accumulated
// text, and detects generation phases for progress reporting.
package consumer

import (
	"regexp"
	"strings"
)

// DefaultDisplayLines bounds the display window for rendering cost control.
const DefaultDisplayLines = 80

// milestone pairs a document pattern with a progress label.
type milestone struct {
	pattern *regexp.Regexp
	label   string
}

// milestones are ordered by where they typically appear in a generated
// document. Detection is monotonic: once a milestone is reached, earlier ones
// are never re-evaluated.
var milestones = []milestone{
	{regexp.MustCompile(`(?i)<!DOCTYPE|<html`), "Building the HTML skeleton..."},
	{regexp.MustCompile(`(?i)<title`), "Setting the game title..."},
	{regexp.MustCompile(`(?i)<style`), "Styling the design..."},
	{regexp.MustCompile(`(?i)<canvas`), "Preparing the canvas..."},
	{regexp.MustCompile(`(?i)<script`), "Writing the game logic..."},
	{regexp.MustCompile(`(?i)function\s+draw|\.fillRect|\.arc\(|\.stroke`), "Drawing the graphics..."},
	{regexp.MustCompile(`(?i)addEventListener|onkey|onclick`), "Wiring up the controls..."},
	{regexp.MustCompile(`(?i)requestAnimationFrame|gameLoop|setInterval`), "Starting the game loop..."},
	{regexp.MustCompile(`(?i)score|punkt`), "Adding the scoring system..."},
	{regexp.MustCompile(`(?i)collision|kollision|intersect|overlap`), "Detecting collisions..."},
	{regexp.MustCompile(`(?i)</script>`), "Finishing the code..."},
	{regexp.MustCompile(`(?i)</html>`), "Almost done..."},
}

// Consumer accumulates streamed text. fullText grows unboundedly; the display
// window is recomputed from it on demand and holds only the most recent lines.
type Consumer struct {
	full     strings.Builder
	maxLines int
	cursor   int // index of the last reached milestone, -1 before any
}

// New creates a Consumer with the default display window.
func New() *Consumer {
	return NewWithWindow(DefaultDisplayLines)
}

// NewWithWindow creates a Consumer keeping the last n lines for display.
func NewWithWindow(n int) *Consumer {
	return &Consumer{maxLines: n, cursor: -1}
}

// Append adds one received chunk to the accumulated text.
func (c *Consumer) Append(chunk string) {
	c.full.WriteString(chunk)
}

// FullText returns everything received so far.
func (c *Consumer) FullText() string {
	return c.full.String()
}

// LineCount returns the total number of lines received so far.
func (c *Consumer) LineCount() int {
	return strings.Count(c.full.String(), "\n") + 1
}

// Display returns the bounded display window: the most recent maxLines lines
// of the accumulated text. Pure function of the full text, recomputed per
// call.
func (c *Consumer) Display() string {
	text := c.full.String()
	lines := strings.Split(text, "\n")
	if len(lines) <= c.maxLines {
		return text
	}
	return strings.Join(lines[len(lines)-c.maxLines:], "\n")
}

// Advance runs phase detection over the accumulated text. It scans the
// milestone list from the end down to just past the last reached milestone
// and moves the cursor to the highest-indexed match, so later milestones win
// within one update and the cursor never regresses. It returns the new phase
// label when the cursor advanced.
func (c *Consumer) Advance() (string, bool) {
	text := c.full.String()
	for i := len(milestones) - 1; i > c.cursor; i-- {
		if milestones[i].pattern.MatchString(text) {
			c.cursor = i
			return milestones[i].label, true
		}
	}
	return "", false
}

// Milestone returns the index of the last reached milestone, -1 before any.
func (c *Consumer) Milestone() int {
	return c.cursor
}

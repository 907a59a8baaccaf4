package producer

import (
	"context"
	"io"
	"strings"
)

// stubDocument is a minimal but scoreable canvas game emitted by the stub.
const stubDocument = `<!DOCTYPE html>
<html>
<head><title>Stub Pong</title></head>
<body>
<canvas id="game"></canvas>
<script>
const canvas = document.getElementById('game');
const ctx = canvas.getContext('2d');
let gameState = 'start';
function drawPaddle() { ctx.fillRect(10, 200, 10, 60); }
function drawBall() { ctx.beginPath(); ctx.arc(50, 50, 6, 0, 7); ctx.stroke(); }
function loop() { drawPaddle(); drawBall(); requestAnimationFrame(loop); }
canvas.addEventListener('click', () => { gameState = 'running'; });
window.addEventListener('keydown', () => { gameState = 'running'; });
loop();
</script>
</body>
</html>`

const stubSuggestions = `[
  {"title": "Particle explosions", "description": "Colorful particle bursts when objects are destroyed."},
  {"title": "Add power-ups", "description": "Random power-ups that boost speed or strength."},
  {"title": "Difficulty ramp", "description": "The game gets faster and harder over time."}
]`

// StubProducer returns a canned game in fragments (for development/testing).
type StubProducer struct {
	// FragmentSize overrides the default fragment length.
	FragmentSize int
}

// OpenSession replays the canned document as a fragment sequence.
func (p *StubProducer) OpenSession(_ context.Context, _ SessionRequest) (Session, error) {
	size := p.FragmentSize
	if size <= 0 {
		size = 48
	}
	var fragments []string
	for text := stubDocument; text != ""; {
		n := min(size, len(text))
		fragments = append(fragments, text[:n])
		text = text[n:]
	}
	return &stubSession{fragments: fragments}, nil
}

// Complete returns canned improvement suggestions.
func (p *StubProducer) Complete(_ context.Context, req SessionRequest) (string, error) {
	for _, t := range req.Turns {
		if strings.Contains(t.Content, "improvement") || strings.Contains(req.System, "suggestion") {
			return stubSuggestions, nil
		}
	}
	return stubDocument, nil
}

type stubSession struct {
	fragments []string
	next      int
}

func (s *stubSession) Recv() (string, error) {
	if s.next >= len(s.fragments) {
		return "", io.EOF
	}
	frag := s.fragments[s.next]
	s.next++
	return frag, nil
}

func (s *stubSession) Close() error { return nil }

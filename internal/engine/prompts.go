package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mosgamer/promptplay/internal/producer"
)

const systemPrompt = `You are a game developer who builds HTML5 canvas games.

Rules:
- Generate a complete, self-contained HTML5 document containing one game
- Use <canvas> for all graphics
- Draw simple shapes (rectangles, circles, triangles, lines) instead of images
- Everything must work inside ONE single HTML document (inline CSS + JS)
- Implement keyboard and/or mouse controls
- Add a score system when it fits the game
- The canvas must adapt to the available size (100% width/height of the viewport)
- The game should be fun and family friendly
- The game itself should look modern and polished: clean graphics, soft colors, shadows, gradients, particle effects where appropriate
- Do NOT use emojis in texts or as graphics; draw everything with canvas shapes
- Show a short instruction overlay or start screen at the beginning
- The start screen must be startable by mouse click AND by any key: register BOTH canvas.addEventListener('click') and window.addEventListener('keydown')
- The game must be playable immediately after loading
- On game over: show a game-over screen with the reached score and a replay button that fully restarts the game

IMPORTANT: Answer EXCLUSIVELY with the raw HTML code.
No markdown, no explanations, no ` + "```html" + ` code fences.
The answer must start with <!DOCTYPE html> or <html and end with </html>.`

const suggestSystemPrompt = `You are an experienced game designer who analyzes HTML5 canvas games and proposes concrete improvements.

Answer EXCLUSIVELY with a JSON array of exactly 3 suggestions.
Each suggestion has "title" (short, 3-6 words) and "description" (1 sentence describing exactly what improves).

The suggestions should:
- Be creative and fun
- Make the game noticeably better
- Be technically feasible (canvas, JS)
- Cover different aspects (gameplay, graphics, features)

ONLY the JSON array, no other text.`

// generateTurns builds the single-turn history for a fresh generation.
func generateTurns(prompt string) []producer.Turn {
	return []producer.Turn{
		{Role: producer.RoleUser, Content: "Build the following game: " + prompt},
	}
}

// improveTurns builds the three-turn history for an improvement pass: the
// original request, the prior document as an assistant turn, and a new user
// turn embedding the suggestion list.
func improveTurns(prompt, document string, suggestions []Suggestion) []producer.Turn {
	var list strings.Builder
	for i, s := range suggestions {
		fmt.Fprintf(&list, "%d. %s: %s\n", i+1, s.Title, s.Description)
	}
	return []producer.Turn{
		{Role: producer.RoleUser, Content: "Build the following game: " + prompt},
		{Role: producer.RoleAssistant, Content: document},
		{Role: producer.RoleUser, Content: fmt.Sprintf(
			"Great! Please improve the game with the following changes:\n\n%s\nRegenerate the COMPLETE improved HTML document. Keep everything that works and add the improvements.",
			list.String())},
	}
}

// suggestTurns builds the single-turn request for improvement suggestions.
// The document is truncated so the request stays within budget.
func suggestTurns(prompt, document string) []producer.Turn {
	const maxDocumentRunes = 8000
	if utf8.RuneCountInString(document) > maxDocumentRunes {
		runes := []rune(document)
		document = string(runes[:maxDocumentRunes])
	}
	return []producer.Turn{
		{Role: producer.RoleUser, Content: fmt.Sprintf(
			"Analyze this game (prompt: %q) and propose 3 concrete improvements:\n\n%s", prompt, document)},
	}
}

package engine

import (
	"regexp"
	"strings"
)

// Complexity heuristics. Each check is an independent pattern match over the
// document text; the weighted sum maps through fixed breakpoints to a 1-5
// rating. Deterministic and reproducible, not "fair".
var (
	functionRe  = regexp.MustCompile(`function\s+\w+|=>\s*\{`)
	listenerRe  = regexp.MustCompile(`(?i)addEventListener`)
	drawOpRe    = regexp.MustCompile(`\.(fillRect|arc|stroke|lineTo|drawImage|fillText|clearRect|beginPath|moveTo|bezierCurveTo|quadraticCurveTo|save|restore|translate|rotate)\(`)
	collisionRe = regexp.MustCompile(`(?i)collision|intersect|overlap|Math\.hypot|hitbox`)
	gameStateRe = regexp.MustCompile(`(?i)gameState|state\s*===|isRunning|isPaused`)
	particleRe  = regexp.MustCompile(`(?i)particle`)
	pushRe      = regexp.MustCompile(`\.push\(`)
	levelRe     = regexp.MustCompile(`(?i)level|wave|difficulty|stufe|schwierigkeit`)
	enemyRe     = regexp.MustCompile(`(?i)enemy|gegner|opponent|feind|enemies`)
)

// ScoreComplexity rates a document 1-5 from code-size and gameplay-feature
// signals. Identical input always yields an identical rating.
func ScoreComplexity(document string) int {
	score := 0

	lines := strings.Count(document, "\n") + 1
	if lines > 150 {
		score++
	}
	if lines > 350 {
		score++
	}

	funcCount := len(functionRe.FindAllString(document, -1))
	if funcCount >= 8 {
		score++
	}
	if funcCount >= 18 {
		score++
	}

	if len(listenerRe.FindAllString(document, -1)) >= 4 {
		score++
	}

	drawOps := len(drawOpRe.FindAllString(document, -1))
	if drawOps >= 10 {
		score++
	}
	if drawOps >= 25 {
		score++
	}

	if collisionRe.MatchString(document) {
		score++
	}
	if gameStateRe.MatchString(document) {
		score++
	}
	if particleRe.MatchString(document) && pushRe.MatchString(document) {
		score++
	}
	if levelRe.MatchString(document) {
		score++
	}
	if enemyRe.MatchString(document) && funcCount >= 5 {
		score++
	}

	// Raw score tops out around 12.
	switch {
	case score <= 2:
		return 1
	case score <= 4:
		return 2
	case score <= 6:
		return 3
	case score <= 8:
		return 4
	default:
		return 5
	}
}

package engine

import (
	"regexp"

	"github.com/mosgamer/promptplay/internal/model"
)

// tagRule maps a prompt pattern to a category label. Rules are evaluated in
// order against the prompt, not the generated document; patterns keep the
// German keyword alternatives so German prompts classify the same way.
type tagRule struct {
	label   string
	pattern *regexp.Regexp
}

var tagRules = []tagRule{
	{"Action", regexp.MustCompile(`(?i)shooter|schieß|shoot|kampf|fight|battle|angriff|waffe|sword|schwert|bombe|explo`)},
	{"Arcade", regexp.MustCompile(`(?i)fang|ausweich|sammle|catch|dodge|collect|fallend|snake|tetris|breakout|pong`)},
	{"Puzzle", regexp.MustCompile(`(?i)puzzle|raetsel|rätsel|logik|match|memory|sortier|knobel`)},
	{"Quiz", regexp.MustCompile(`(?i)quiz|frage|wissen|antwort|multiple.?choice|ratespiel`)},
	{"Sports", regexp.MustCompile(`(?i)ping.?pong|fussball|fußball|tennis|basketball|sport|ball|golf|hockey|rennen|race`)},
	{"Space", regexp.MustCompile(`(?i)weltraum|space|rakete|asteroid|planet|alien|ufo|stern|galaxy|galaxie|raumschiff`)},
	{"Jump & Run", regexp.MustCompile(`(?i)jump|spring|plattform|huepf|hüpf|laufen|runner|parkour|mario`)},
	{"Strategy", regexp.MustCompile(`(?i)strategie|tower|defense|verteidig|aufbau|taktik|schach|chess`)},
	{"Maze", regexp.MustCompile(`(?i)labyrinth|maze|irrgarten|weg.?find`)},
	{"Multiplayer", regexp.MustCompile(`(?i)zwei.?spieler|multiplayer|2.?spieler|mehrspieler|coop|versus|gegeneinander`)},
	{"Creative", regexp.MustCompile(`(?i)mal|zeichen|paint|draw|bau|build|kreativ|design|kunst`)},
	{"Skill", regexp.MustCompile(`(?i)geschick|timing|reaktion|schnell|speed|flappy|click|klick|tippen`)},
}

// ClassifyTags maps a prompt to its category labels in rule order. A prompt
// matching no rule yields exactly the sentinel label.
func ClassifyTags(prompt string) []string {
	var tags []string
	for _, rule := range tagRules {
		if rule.pattern.MatchString(prompt) {
			tags = append(tags, rule.label)
		}
	}
	if len(tags) == 0 {
		tags = append(tags, model.TagOther)
	}
	return tags
}

package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/first_turn.md
var firstTurnPromptRaw string

// FirstTurnTemplate frames the opening question of a conversation with the
// posting's context. Parsed once at package init.
var FirstTurnTemplate = template.Must(template.New("first_turn").Parse(firstTurnPromptRaw))

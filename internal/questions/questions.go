// Package questions bundles the question bank shipped with the server, one
// JSON file per category. Storage backends seed themselves from these files
// the first time a category is requested.
package questions

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/anacarcan/prueba/internal/domain"
)

//go:embed preguntas-*.json
var files embed.FS

// Available is the fixed set of categories offered during the handshake.
var Available = []string{"conocimiento-general", "musica", "geografia", "deportes"}

// DefaultCategory is used when a pending player carries no category.
const DefaultCategory = "conocimiento-general"

type rawQuestion struct {
	Text       string   `json:"pregunta"`
	Options    []string `json:"opciones"`
	Correct    int      `json:"respuestaCorrecta"` // 1=A .. 4=D in the files
	Difficulty string   `json:"dificultad"`
}

// Load parses the bundled file for a category. The on-file answer index is
// 1-based; out-of-range entries are skipped rather than failing the load.
func Load(category string) ([]domain.Question, error) {
	data, err := files.ReadFile("preguntas-" + category + ".json")
	if err != nil {
		return nil, domain.ErrCategoryNotFound
	}
	var raw []rawQuestion
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s questions: %w", category, err)
	}
	out := make([]domain.Question, 0, len(raw))
	for _, r := range raw {
		if len(r.Options) != 4 || r.Correct < 1 || r.Correct > 4 {
			continue
		}
		q := domain.Question{
			Text:     r.Text,
			Correct:  r.Correct - 1,
			Category: category,
		}
		copy(q.Options[:], r.Options)
		out = append(out, q)
	}
	if len(out) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return out, nil
}

// LoadAll returns the full bundled bank keyed by category.
func LoadAll() (map[string][]domain.Question, error) {
	bank := make(map[string][]domain.Question, len(Available))
	for _, category := range Available {
		qs, err := Load(category)
		if err != nil {
			return nil, err
		}
		bank[category] = qs
	}
	return bank, nil
}

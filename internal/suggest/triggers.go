package suggest

import "schemamap/internal/introspect"

// Trigger is one recommended trigger for a table.
type Trigger struct {
	Category string `json:"category"`
	DDL      string `json:"ddl"`
}

// TriggerSuggester proposes trigger DDL per table. The engine ships no
// implementation; callers plug in their own generation strategy.
type TriggerSuggester interface {
	SuggestTriggers(s *introspect.Schema) map[string][]Trigger
}

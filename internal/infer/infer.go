// Package infer proposes child→parent relationships from column naming
// conventions. Everything here is pure and deterministic: patterns are tried
// in a fixed order and the first matching table wins, so the same model
// always produces the same suggestions.
package infer

import (
	"regexp"
	"strings"

	"schemamap/internal/introspect"
)

// Ordered foreign-key naming patterns, each capturing the base referent
// name. Matched against lower-cased column names; the "_" forms come first
// so the greedy \w+ cannot swallow the separator.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(\w+)_id$`),
	regexp.MustCompile(`^(\w+)id$`),
	regexp.MustCompile(`^(\w+)_key$`),
	regexp.MustCompile(`^(\w+)key$`),
}

// pluralCandidates returns every table-name form the base could refer to:
// the base itself plus simple English pluralization variants.
func pluralCandidates(base string) map[string]bool {
	c := map[string]bool{
		base:       true,
		base + "s": true,
	}
	if strings.HasSuffix(base, "s") {
		c[base[:len(base)-1]] = true
	}
	if strings.HasSuffix(base, "y") {
		c[base[:len(base)-1]+"ies"] = true
	}
	if strings.HasSuffix(base, "ies") {
		c[base[:len(base)-3]+"y"] = true
	}
	if strings.HasSuffix(base, "ss") {
		c[base+"es"] = true
	}
	if strings.HasSuffix(base, "es") {
		c[base[:len(base)-2]] = true
	}
	return c
}

// Relationships proposes relationships from column naming patterns. It never
// mutates s and returns raw suggestions only; de-duplication against
// explicit relationships is the caller's job (see Merge).
func Relationships(s *introspect.Schema) []introspect.Relationship {
	var assumed []introspect.Relationship
	pks := s.PrimaryKeyColumns()

	for _, table := range s.Tables {
		for _, col := range table.Columns {
			lowered := strings.ToLower(col.Name)

			// a table's own primary key never references another table
			if pks[table.Name] != "" && lowered == strings.ToLower(pks[table.Name]) {
				continue
			}

			if rel, ok := matchColumn(s, pks, table.Name, col.Name, lowered); ok {
				assumed = append(assumed, rel)
			}
		}
	}
	return assumed
}

// matchColumn runs the ordered patterns over one column and scans tables in
// discovery order for the first plausible parent with a registered primary
// key. First match wins; there is no scoring of competing candidates.
func matchColumn(s *introspect.Schema, pks map[string]string, tableName, colName, lowered string) (introspect.Relationship, bool) {
	for _, pattern := range namePatterns {
		m := pattern.FindStringSubmatch(lowered)
		if m == nil {
			continue
		}
		candidates := pluralCandidates(strings.ToLower(m[1]))
		for _, target := range s.Tables {
			if !candidates[strings.ToLower(target.Name)] {
				continue
			}
			pk, ok := pks[target.Name]
			if !ok {
				continue
			}
			return introspect.Relationship{
				FromTable: tableName,
				ToTable:   target.Name,
				Label:     introspect.Label(colName, pk),
			}, true
		}
	}
	return introspect.Relationship{}, false
}

// Merge produces the final relationship list: all explicit relationships,
// plus every inferred one that is neither redundant with an explicit entry
// for the same (from, to, child column) triple nor an exact duplicate. A
// table may still gain inferred edges to a parent it already references
// explicitly, as long as they go through a different column.
func Merge(explicit, inferred []introspect.Relationship) []introspect.Relationship {
	merged := append([]introspect.Relationship(nil), explicit...)

	for _, rel := range inferred {
		if suppressed(explicit, rel) {
			continue
		}
		duplicate := false
		for _, existing := range merged {
			if existing == rel {
				duplicate = true
				break
			}
		}
		if !duplicate {
			merged = append(merged, rel)
		}
	}
	return merged
}

// suppressed reports whether an explicit relationship already covers the
// same table pair through the same child column.
func suppressed(explicit []introspect.Relationship, rel introspect.Relationship) bool {
	for _, e := range explicit {
		if e.FromTable == rel.FromTable && e.ToTable == rel.ToTable &&
			e.ChildColumn() == rel.ChildColumn() {
			return true
		}
	}
	return false
}

// Finalize recomputes s.Relationships from the explicit list, extending it
// with inferred relationships when assume is set.
func Finalize(s *introspect.Schema, assume bool) {
	var inferred []introspect.Relationship
	if assume {
		inferred = Relationships(s)
	}
	s.Relationships = Merge(s.ExplicitRelationships, inferred)
}

package introspect

import (
	"fmt"
	"strings"
)

// Column represents a table column.
type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	PK       bool   `json:"pk"`
}

// RelationArrow joins the child and parent column names in a relationship label.
const RelationArrow = " → "

// Relationship is a directed edge from a referencing (child) table to a
// referenced (parent) table. Label carries "<childColumn> → <parentColumn>"
// when both sides are known, or a bare column name when only one is.
type Relationship struct {
	FromTable string `json:"from_table"`
	ToTable   string `json:"to_table"`
	Label     string `json:"label"`
}

// ChildColumn returns the child-column token of the label: the text before
// the arrow, or the whole label when there is no arrow.
func (r Relationship) ChildColumn() string {
	if child, _, ok := strings.Cut(r.Label, RelationArrow); ok {
		return strings.TrimSpace(child)
	}
	return strings.TrimSpace(r.Label)
}

// ParentColumn returns the parent-column token of the label (after the
// arrow), or the whole label when there is no arrow.
func (r Relationship) ParentColumn() string {
	if _, parent, ok := strings.Cut(r.Label, RelationArrow); ok {
		return strings.TrimSpace(parent)
	}
	return strings.TrimSpace(r.Label)
}

// Label builds the canonical relationship label for a child/parent column pair.
func Label(childColumn, parentColumn string) string {
	return childColumn + RelationArrow + parentColumn
}

// Table represents a database table and its columns, in declaration order.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Schema is the normalized model both front-ends produce. Tables keep
// discovery order; ExplicitRelationships holds foreign keys declared in the
// source, Relationships the full list surfaced to consumers (explicit plus
// any inferred entries that survived merging). IndexedColumns maps table
// name to the set of indexed column names and is only populated by catalog
// front-ends.
type Schema struct {
	Tables                []Table                    `json:"tables"`
	Relationships         []Relationship             `json:"relationships"`
	ExplicitRelationships []Relationship             `json:"explicit_relationships"`
	IndexedColumns        map[string]map[string]bool `json:"indexed_columns,omitempty"`
}

// Table returns the named table, or nil if the schema has never seen it.
func (s *Schema) Table(name string) *Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

// PrimaryKeyColumns maps each table name to its first primary-key column.
// Tables without a primary key are absent from the result.
func (s *Schema) PrimaryKeyColumns() map[string]string {
	pks := make(map[string]string)
	for _, t := range s.Tables {
		for _, c := range t.Columns {
			if c.PK {
				pks[t.Name] = c.Name
				break
			}
		}
	}
	return pks
}

// IsExplicit reports whether rel was declared in the source schema, as
// opposed to inferred from column naming.
func (s *Schema) IsExplicit(rel Relationship) bool {
	for _, e := range s.ExplicitRelationships {
		if e == rel {
			return true
		}
	}
	return false
}

// MarkIndexed records column as carrying an index on table.
func (s *Schema) MarkIndexed(table, column string) {
	if s.IndexedColumns == nil {
		s.IndexedColumns = make(map[string]map[string]bool)
	}
	if s.IndexedColumns[table] == nil {
		s.IndexedColumns[table] = make(map[string]bool)
	}
	s.IndexedColumns[table][column] = true
}

// NormalizeType reduces a declared column type to its uppercase token,
// dropping any parenthesized parameter suffix: "varchar(255)" -> "VARCHAR".
func NormalizeType(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, "( "); i >= 0 {
		raw = raw[:i]
	}
	return strings.ToUpper(raw)
}

// NotFoundError reports that an input path does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("input file not found: %s", e.Path)
}

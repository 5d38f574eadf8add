package suggest

import (
	"fmt"
	"strings"

	"schemamap/internal/introspect"
)

// inferredOnly returns the surfaced relationships that were not declared in
// the source; explicit foreign keys already exist and need no DDL.
func inferredOnly(s *introspect.Schema) []introspect.Relationship {
	var rels []introspect.Relationship
	for _, rel := range s.Relationships {
		if !s.IsExplicit(rel) {
			rels = append(rels, rel)
		}
	}
	return rels
}

// ForeignKeyDDL renders a transaction-wrapped sequence of ALTER TABLE
// statements adding the inferred relationships as real constraints. Returns
// the empty string when there is nothing to add.
func ForeignKeyDDL(s *introspect.Schema) string {
	rels := inferredOnly(s)
	if len(rels) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("BEGIN TRANSACTION;\n\n")
	for _, rel := range rels {
		child := rel.ChildColumn()
		fmt.Fprintf(&b, "ALTER TABLE %s ADD CONSTRAINT fk_%s_%s FOREIGN KEY (%s) REFERENCES %s(%s);\n",
			rel.FromTable, rel.FromTable, child, child, rel.ToTable, rel.ParentColumn())
	}
	b.WriteString("\nCOMMIT;\n")
	return b.String()
}

// SQLiteForeignKeyClauses renders the inferred relationships as bare
// FOREIGN KEY clauses grouped per table, for pasting into a CREATE TABLE
// definition. SQLite cannot ALTER TABLE ADD CONSTRAINT, so this is the
// practical alternative. Within each table every clause but the last gets a
// trailing comma.
func SQLiteForeignKeyClauses(s *introspect.Schema) string {
	byTable := make(map[string][]introspect.Relationship)
	var order []string
	for _, rel := range inferredOnly(s) {
		if _, seen := byTable[rel.FromTable]; !seen {
			order = append(order, rel.FromTable)
		}
		byTable[rel.FromTable] = append(byTable[rel.FromTable], rel)
	}
	if len(order) == 0 {
		return ""
	}

	var b strings.Builder
	for i, table := range order {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "-- Table: %s\n", table)
		rels := byTable[table]
		for j, rel := range rels {
			fmt.Fprintf(&b, "  FOREIGN KEY (%s) REFERENCES %s(%s)",
				rel.ChildColumn(), rel.ToTable, rel.ParentColumn())
			if j < len(rels)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

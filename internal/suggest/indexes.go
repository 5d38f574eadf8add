// Package suggest contains read-only heuristics over a finished schema
// model: index recommendations and DDL synthesis for assumed foreign keys.
package suggest

import (
	"fmt"
	"strings"

	"schemamap/internal/introspect"
)

// sequenceTable is SQLite's auto-increment bookkeeping table; it is an
// artifact, not user schema, and never receives suggestions.
const sequenceTable = "sqlite_sequence"

type matchKind int

const (
	matchPrefix matchKind = iota
	matchSuffix
	matchExact
)

// Conventional filter-field naming patterns, in evaluation order. Columns
// matching one of these are frequent WHERE-clause targets.
var filterPatterns = []struct {
	kind  matchKind
	token string
}{
	{matchPrefix, "is_"},
	{matchPrefix, "has_"},
	{matchPrefix, "created"},
	{matchPrefix, "updated"},
	{matchPrefix, "deleted"},
	{matchExact, "active"},
	{matchSuffix, "status"},
	{matchSuffix, "type"},
	{matchSuffix, "category"},
	{matchSuffix, "date"},
	{matchSuffix, "name"},
}

// Normalized type tokens considered cheap to index.
var indexableValueTypes = map[string]bool{
	"INTEGER": true, "INT": true, "BIGINT": true, "SMALLINT": true,
	"TINYINT": true, "MEDIUMINT": true, "REAL": true, "FLOAT": true,
	"DOUBLE": true, "DECIMAL": true, "NUMERIC": true,
	"DATE": true, "DATETIME": true, "TIMESTAMP": true, "TIME": true,
	"BOOLEAN": true, "BOOL": true,
}

// Textual types worth indexing when the column name looks like a lookup key.
var indexableTextTypes = map[string]bool{
	"TEXT": true, "VARCHAR": true, "NVARCHAR": true, "CHAR": true,
	"NCHAR": true, "STRING": true, "CLOB": true,
}

// Indexes proposes CREATE INDEX statements per table, split into definite
// recommendations (foreign-key columns and conventional filter fields) and
// possible ones (typed guesswork). A primary-key column never appears in
// either list for its own table.
func Indexes(s *introspect.Schema) (definite, possible map[string][]string) {
	definite = make(map[string][]string)
	possible = make(map[string][]string)

	for _, table := range s.Tables {
		if table.Name == sequenceTable {
			continue
		}

		fkCols := childColumns(s, table.Name)

		for _, col := range table.Columns {
			if col.PK {
				continue
			}
			switch {
			case fkCols[col.Name]:
				definite[table.Name] = append(definite[table.Name], indexDDL(table.Name, col.Name))
			case matchesFilterPattern(strings.ToLower(col.Name)):
				definite[table.Name] = append(definite[table.Name], indexDDL(table.Name, col.Name))
			case possibleCandidate(col):
				possible[table.Name] = append(possible[table.Name], indexDDL(table.Name, col.Name))
			}
		}
	}
	return definite, possible
}

// childColumns collects the column names through which table references
// other tables, per the surfaced relationship list.
func childColumns(s *introspect.Schema, table string) map[string]bool {
	cols := make(map[string]bool)
	for _, rel := range s.Relationships {
		if rel.FromTable == table {
			cols[rel.ChildColumn()] = true
		}
	}
	return cols
}

func matchesFilterPattern(name string) bool {
	for _, p := range filterPatterns {
		switch p.kind {
		case matchPrefix:
			if strings.HasPrefix(name, p.token) {
				return true
			}
		case matchSuffix:
			if strings.HasSuffix(name, p.token) {
				return true
			}
		case matchExact:
			if name == p.token {
				return true
			}
		}
	}
	return false
}

func possibleCandidate(col introspect.Column) bool {
	if indexableValueTypes[col.Type] {
		return true
	}
	if !indexableValueTypes[col.Type] && !indexableTextTypes[col.Type] {
		return false
	}
	name := strings.ToLower(col.Name)
	return strings.Contains(name, "name") ||
		strings.Contains(name, "title") ||
		strings.Contains(name, "code")
}

func indexDDL(table, column string) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s);", table, column, table, column)
}

// Package ddl builds a schema model from raw CREATE TABLE text without an
// SQL engine. It is a single-pass regex scanner, deliberately permissive:
// fragments it cannot make sense of are skipped, never fatal.
package ddl

import (
	"errors"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"schemamap/internal/introspect"
	"schemamap/internal/logger"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	createRe     = regexp.MustCompile(`(?i)CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?([^\s(]+)\s*\((.*?)\)(?:\s*;|\s*$)`)
	commentRe    = regexp.MustCompile(`--.*$`)
	typeRe       = regexp.MustCompile(`\w+`)
	leadTokenRe  = regexp.MustCompile(`^[A-Za-z_]+`)
	foreignKeyRe = regexp.MustCompile(`(?i)FOREIGN\s+KEY\s*\(([^)]+)\)\s*REFERENCES\s+([^\s(]+)(?:\s*\(([^)]+)\))?`)
)

// quoteChars are the identifier wrappers we accept; escaped quotes inside
// identifiers are not supported.
const quoteChars = "\"[]`"

// table-level constraint fragments, recognized by leading token
var constraintTokens = map[string]bool{
	"FOREIGN":    true,
	"PRIMARY":    true,
	"UNIQUE":     true,
	"CHECK":      true,
	"CONSTRAINT": true,
}

// ParseFile reads path and parses its CREATE TABLE statements.
// Returns *introspect.NotFoundError when the file does not exist.
func ParseFile(path string) (*introspect.Schema, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &introspect.NotFoundError{Path: path}
		}
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(raw)), nil
}

// Parse scans sql text for CREATE TABLE statements and returns the model.
// Text with no matching statements yields an empty schema, not an error.
func Parse(sql string) *introspect.Schema {
	s := &introspect.Schema{}

	// collapse line breaks and run-on whitespace so the statement regex can
	// scan multi-line definitions in one pass
	flat := whitespaceRe.ReplaceAllString(sql, " ")

	for _, m := range createRe.FindAllStringSubmatch(flat, -1) {
		tableName := strings.Trim(m[1], quoteChars)
		body := m[2]

		var columns []introspect.Column
		for _, frag := range splitColumnDefs(body) {
			if col, ok := extractColumn(frag); ok {
				columns = append(columns, col)
			}
		}

		// a body that yields no usable columns adds no table at all
		if len(columns) > 0 {
			s.Tables = append(s.Tables, introspect.Table{Name: tableName, Columns: columns})
		} else {
			logger.Debug("no usable columns in %q, skipping", tableName)
		}

		extractForeignKeys(s, tableName, body)
	}

	// explicit relationships are always surfaced
	s.Relationships = append([]introspect.Relationship(nil), s.ExplicitRelationships...)
	return s
}

// splitColumnDefs splits a table body on commas while tracking parenthesis
// depth, so commas nested in type parameters like DECIMAL(10,2) or in
// CHECK(...) expressions do not fracture a single definition.
func splitColumnDefs(body string) []string {
	var defs []string
	var current []string
	depth := 0

	for _, part := range strings.Split(body, ",") {
		depth += strings.Count(part, "(") - strings.Count(part, ")")
		current = append(current, part)
		if depth == 0 {
			defs = append(defs, strings.Join(current, ","))
			current = nil
		}
	}
	return defs
}

// extractColumn parses one column definition fragment. Table-level
// constraint fragments and fragments that cannot be split into a name and a
// definition report ok=false.
func extractColumn(frag string) (introspect.Column, bool) {
	frag = commentRe.ReplaceAllString(frag, "")
	frag = strings.TrimRight(strings.TrimSpace(frag), " ;,")
	if frag == "" {
		return introspect.Column{}, false
	}

	if tok := leadTokenRe.FindString(frag); constraintTokens[strings.ToUpper(tok)] {
		return introspect.Column{}, false
	}

	name, definition, ok := strings.Cut(frag, " ")
	if !ok {
		return introspect.Column{}, false
	}
	name = strings.Trim(name, quoteChars)
	definition = strings.ToUpper(definition)

	colType := typeRe.FindString(definition)
	if colType == "" {
		colType = "TEXT"
	}

	return introspect.Column{
		Name:     name,
		Type:     colType,
		Nullable: !strings.Contains(definition, "NOT NULL"),
		PK:       strings.Contains(definition, "PRIMARY KEY"),
	}, true
}

// extractForeignKeys scans the unsplit table body for FOREIGN KEY clauses.
// A missing referenced-column group defaults to the local column name.
func extractForeignKeys(s *introspect.Schema, tableName, body string) {
	for _, m := range foreignKeyRe.FindAllStringSubmatch(body, -1) {
		localCol := strings.Trim(strings.TrimSpace(m[1]), quoteChars)
		refTable := strings.Trim(m[2], quoteChars)
		refCol := localCol
		if m[3] != "" {
			refCol = strings.Trim(strings.TrimSpace(m[3]), quoteChars)
		}
		s.ExplicitRelationships = append(s.ExplicitRelationships, introspect.Relationship{
			FromTable: tableName,
			ToTable:   refTable,
			Label:     introspect.Label(localCol, refCol),
		})
	}
}

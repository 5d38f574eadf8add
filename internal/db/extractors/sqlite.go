package extractors

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"schemamap/internal/db"
	"schemamap/internal/introspect"
	"schemamap/internal/logger"
)

// autoIndexPrefix marks indexes SQLite generates internally to back primary
// key and unique constraints; they are implementation artifacts.
const autoIndexPrefix = "sqlite_autoindex"

// sqliteExtractor implements Extractor for SQLite. This is the primary
// catalog front-end for embedded database files.
type sqliteExtractor struct{}

func (sqliteExtractor) Extract(ctx context.Context, dbConn *sql.DB) (*introspect.Schema, error) {
	s := &introspect.Schema{}

	// catalog order, not alphabetic: discovery order feeds the inference
	// heuristic's first-match tie-breaking
	tr, err := dbConn.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type='table'`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer tr.Close()

	for tr.Next() {
		var tab introspect.Table
		if err := tr.Scan(&tab.Name); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		s.Tables = append(s.Tables, tab)
	}
	if err := tr.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}

	for i := range s.Tables {
		t := &s.Tables[i]
		if err := extractSQLiteColumns(ctx, dbConn, s, t); err != nil {
			return nil, err
		}
		extractSQLiteForeignKeys(ctx, dbConn, s, t.Name)
		extractSQLiteIndexes(ctx, dbConn, s, t.Name)
	}

	s.Relationships = append([]introspect.Relationship(nil), s.ExplicitRelationships...)
	return s, nil
}

func extractSQLiteColumns(ctx context.Context, dbConn *sql.DB, s *introspect.Schema, t *introspect.Table) error {
	pr, err := dbConn.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info('%s')", t.Name))
	if err != nil {
		return fmt.Errorf("query columns for %s: %w", t.Name, err)
	}
	defer pr.Close()

	for pr.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := pr.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return fmt.Errorf("scan column for %s: %w", t.Name, err)
		}
		col := introspect.Column{
			Name:     name,
			Type:     introspect.NormalizeType(ctype),
			Nullable: notnull == 0,
			PK:       pk > 0,
		}
		t.Columns = append(t.Columns, col)

		// primary key columns are implicitly indexed
		if col.PK {
			s.MarkIndexed(t.Name, col.Name)
		}
	}
	return pr.Err()
}

// extractSQLiteForeignKeys records declared foreign keys as explicit
// relationships. A NULL referenced column (implicit primary-key reference)
// falls back to the local column name.
func extractSQLiteForeignKeys(ctx context.Context, dbConn *sql.DB, s *introspect.Schema, table string) {
	fkRows, err := dbConn.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list('%s')", table))
	if err != nil {
		logger.Error("query foreign keys for %s: %v", table, err)
		return
	}
	defer fkRows.Close()

	for fkRows.Next() {
		var id, seq int
		var refTable, from string
		var to, onUpdate, onDelete, match sql.NullString
		if err := fkRows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			logger.Error("scan foreign key for %s: %v", table, err)
			continue
		}
		refCol := from
		if to.Valid && to.String != "" {
			refCol = to.String
		}
		s.ExplicitRelationships = append(s.ExplicitRelationships, introspect.Relationship{
			FromTable: table,
			ToTable:   refTable,
			Label:     introspect.Label(from, refCol),
		})
	}
	if err := fkRows.Err(); err != nil {
		logger.Error("iterate foreign keys for %s: %v", table, err)
	}
}

// extractSQLiteIndexes records declared index columns, skipping the
// system-generated sqlite_autoindex entries.
func extractSQLiteIndexes(ctx context.Context, dbConn *sql.DB, s *introspect.Schema, table string) {
	ir, err := dbConn.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list('%s')", table))
	if err != nil {
		logger.Error("query indexes for %s: %v", table, err)
		return
	}
	defer ir.Close()

	var names []string
	for ir.Next() {
		var seq int
		var name, origin string
		var unique, partial int
		if err := ir.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			logger.Error("scan index for %s: %v", table, err)
			continue
		}
		if strings.HasPrefix(name, autoIndexPrefix) {
			continue
		}
		names = append(names, name)
	}
	if err := ir.Err(); err != nil {
		logger.Error("iterate indexes for %s: %v", table, err)
	}

	for _, name := range names {
		cr, err := dbConn.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info('%s')", name))
		if err != nil {
			logger.Error("query index columns for %s: %v", name, err)
			continue
		}
		for cr.Next() {
			var seqno, cid int
			var col sql.NullString
			if err := cr.Scan(&seqno, &cid, &col); err != nil {
				logger.Error("scan index column for %s: %v", name, err)
				continue
			}
			if col.Valid {
				s.MarkIndexed(table, col.String)
			}
		}
		cr.Close()
	}
}

func init() {
	db.Register("sqlite3", sqliteExtractor{})
	db.Register("sqlite", sqliteExtractor{})
}

package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"schemamap/internal/db"
	"schemamap/internal/introspect"
	"schemamap/internal/logger"
)

// pgExtractor implements Extractor using information_schema + pg_catalog queries.
type pgExtractor struct{}

func (pgExtractor) Extract(ctx context.Context, dbConn *sql.DB) (*introspect.Schema, error) {
	s := &introspect.Schema{}

	tr, err := dbConn.QueryContext(ctx, `
        SELECT table_name
        FROM information_schema.tables
        WHERE table_type = 'BASE TABLE'
          AND table_schema NOT IN ('pg_catalog','information_schema','pg_toast')
        ORDER BY table_schema, table_name`)
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

	for i := range s.Tables {
		t := &s.Tables[i]
		cr, err := dbConn.QueryContext(ctx, `
            SELECT column_name, data_type, is_nullable = 'YES'
            FROM information_schema.columns
            WHERE table_name = $1
              AND table_schema NOT IN ('pg_catalog','information_schema','pg_toast')
            ORDER BY ordinal_position`, t.Name)
		if err != nil {
			return nil, fmt.Errorf("query columns for %s: %w", t.Name, err)
		}
		for cr.Next() {
			var col introspect.Column
			if err := cr.Scan(&col.Name, &col.Type, &col.Nullable); err != nil {
				cr.Close()
				return nil, fmt.Errorf("scan column for %s: %w", t.Name, err)
			}
			col.Type = introspect.NormalizeType(col.Type)
			t.Columns = append(t.Columns, col)
		}
		cr.Close()

		pkr, err := dbConn.QueryContext(ctx, `
            SELECT a.attname
            FROM pg_index i
            JOIN pg_class c ON i.indrelid = c.oid
            JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = ANY(i.indkey)
            WHERE c.relname = $1 AND i.indisprimary`, t.Name)
		if err == nil {
			for pkr.Next() {
				var pkcol string
				if err := pkr.Scan(&pkcol); err == nil {
					for j := range t.Columns {
						if t.Columns[j].Name == pkcol {
							t.Columns[j].PK = true
							s.MarkIndexed(t.Name, pkcol)
						}
					}
				} else {
					logger.Error("scan primary key: %v", err)
				}
			}
			pkr.Close()
		} else {
			logger.Error("query primary key: %v", err)
		}

		// declared secondary indexes; primary-key backing indexes are
		// already covered above
		ixr, err := dbConn.QueryContext(ctx, `
            SELECT a.attname
            FROM pg_index i
            JOIN pg_class c ON i.indrelid = c.oid
            JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = ANY(i.indkey)
            WHERE c.relname = $1 AND NOT i.indisprimary`, t.Name)
		if err == nil {
			for ixr.Next() {
				var col string
				if err := ixr.Scan(&col); err == nil {
					s.MarkIndexed(t.Name, col)
				} else {
					logger.Error("scan index column: %v", err)
				}
			}
			ixr.Close()
		} else {
			logger.Error("query indexes: %v", err)
		}
	}

	fkr, err := dbConn.QueryContext(ctx, `
        SELECT
          tc.table_name from_table,
          string_agg(kcu.column_name, ', ' ORDER BY kcu.ordinal_position) from_columns,
          rkcu.table_name to_table,
          string_agg(rkcu.column_name, ', ' ORDER BY rkcu.ordinal_position) to_columns
        FROM information_schema.table_constraints tc
        JOIN information_schema.key_column_usage kcu
          ON tc.constraint_name = kcu.constraint_name
         AND tc.constraint_schema = kcu.constraint_schema
        JOIN information_schema.referential_constraints rc
          ON tc.constraint_name = rc.constraint_name
         AND tc.constraint_schema = rc.constraint_schema
        JOIN information_schema.key_column_usage rkcu
          ON rc.unique_constraint_name = rkcu.constraint_name
         AND rc.unique_constraint_schema = rkcu.constraint_schema
         AND kcu.ordinal_position = rkcu.ordinal_position
        WHERE tc.constraint_type = 'FOREIGN KEY'
          AND tc.table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
        GROUP BY tc.table_schema, tc.table_name, rkcu.table_schema, rkcu.table_name, tc.constraint_name`)
	if err == nil {
		defer fkr.Close()
		for fkr.Next() {
			var fromTable, fromCols, toTable, toCols string
			if err := fkr.Scan(&fromTable, &fromCols, &toTable, &toCols); err == nil {
				s.ExplicitRelationships = append(s.ExplicitRelationships, introspect.Relationship{
					FromTable: fromTable,
					ToTable:   toTable,
					Label:     introspect.Label(fromCols, toCols),
				})
			} else {
				logger.Error("scan foreign key: %v", err)
			}
		}
	} else {
		logger.Error("query foreign key: %v", err)
	}

	s.Relationships = append([]introspect.Relationship(nil), s.ExplicitRelationships...)
	return s, nil
}

func init() {
	db.Register("postgres", pgExtractor{})
	db.Register("postgresql", pgExtractor{})
}

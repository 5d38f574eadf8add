package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"schemamap/internal/db"
	"schemamap/internal/introspect"
	"schemamap/internal/logger"
)

// myExtractor implements Extractor for MySQL (information_schema).
type myExtractor struct{}

func (myExtractor) Extract(ctx context.Context, dbConn *sql.DB) (*introspect.Schema, error) {
	s := &introspect.Schema{}

	tr, err := dbConn.QueryContext(ctx, `
        SELECT table_name
        FROM information_schema.tables
        WHERE table_type = 'BASE TABLE'
          AND table_schema NOT IN ('mysql','information_schema','performance_schema','sys')
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
            SELECT column_name, data_type, is_nullable = 'YES', column_key = 'PRI'
            FROM information_schema.columns
            WHERE table_name = ?
              AND table_schema NOT IN ('mysql','information_schema','performance_schema','sys')
            ORDER BY ordinal_position`, t.Name)
		if err != nil {
			return nil, fmt.Errorf("query columns for %s: %w", t.Name, err)
		}
		for cr.Next() {
			var col introspect.Column
			if err := cr.Scan(&col.Name, &col.Type, &col.Nullable, &col.PK); err != nil {
				cr.Close()
				return nil, fmt.Errorf("scan column for %s: %w", t.Name, err)
			}
			col.Type = introspect.NormalizeType(col.Type)
			t.Columns = append(t.Columns, col)
			if col.PK {
				s.MarkIndexed(t.Name, col.Name)
			}
		}
		cr.Close()

		ixr, err := dbConn.QueryContext(ctx, `
            SELECT column_name
            FROM information_schema.statistics
            WHERE table_name = ? AND index_name <> 'PRIMARY'
              AND table_schema NOT IN ('mysql','information_schema','performance_schema','sys')`, t.Name)
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
        SELECT table_name AS from_table,
               group_concat(column_name separator ', ') AS from_column,
               referenced_table_name AS to_table,
               group_concat(referenced_column_name separator ', ') AS to_column
        FROM information_schema.key_column_usage
        WHERE referenced_table_name IS NOT NULL
          AND table_schema NOT IN ('mysql','information_schema','performance_schema','sys')
        GROUP BY table_schema, table_name, referenced_table_schema, referenced_table_name, constraint_name`)
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
	db.Register("mysql", myExtractor{})
	db.Register("mariadb", myExtractor{})
}

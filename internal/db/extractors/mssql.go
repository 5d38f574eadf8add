package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"schemamap/internal/db"
	"schemamap/internal/introspect"
	"schemamap/internal/logger"
)

// mssqlExtractor implements Extractor for Microsoft SQL Server.
type mssqlExtractor struct{}

func (mssqlExtractor) Extract(ctx context.Context, dbConn *sql.DB) (*introspect.Schema, error) {
	s := &introspect.Schema{}

	tr, err := dbConn.QueryContext(ctx, `
        SELECT t.name AS table_name
        FROM sys.schemas AS s
        JOIN sys.tables AS t
          ON s.schema_id = t.schema_id
        ORDER BY s.name, t.name`)
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
            SELECT COLUMN_NAME, DATA_TYPE, CASE WHEN IS_NULLABLE='YES' THEN 1 ELSE 0 END
            FROM INFORMATION_SCHEMA.COLUMNS
            WHERE TABLE_NAME = @table
            ORDER BY ORDINAL_POSITION`, sql.Named("table", t.Name))
		if err != nil {
			return nil, fmt.Errorf("query columns for %s: %w", t.Name, err)
		}

		for cr.Next() {
			var col introspect.Column
			var nullableInt int
			if err := cr.Scan(&col.Name, &col.Type, &nullableInt); err != nil {
				cr.Close()
				return nil, fmt.Errorf("scan column for %s: %w", t.Name, err)
			}
			col.Nullable = nullableInt == 1
			col.Type = introspect.NormalizeType(col.Type)
			t.Columns = append(t.Columns, col)
		}
		cr.Close()

		// primary keys
		pkr, err := dbConn.QueryContext(ctx, `
            SELECT k.COLUMN_NAME
            FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS t
            JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE k ON t.CONSTRAINT_NAME = k.CONSTRAINT_NAME AND t.TABLE_SCHEMA = k.TABLE_SCHEMA
            WHERE t.CONSTRAINT_TYPE = 'PRIMARY KEY' AND k.TABLE_NAME = @table`, sql.Named("table", t.Name))
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

		// declared secondary indexes
		ixr, err := dbConn.QueryContext(ctx, `
            SELECT c.name
            FROM sys.indexes i
            JOIN sys.index_columns ic ON i.object_id = ic.object_id AND i.index_id = ic.index_id
            JOIN sys.columns c ON ic.object_id = c.object_id AND ic.column_id = c.column_id
            WHERE i.object_id = OBJECT_ID(@table) AND i.is_primary_key = 0 AND i.type > 0`,
			sql.Named("table", t.Name))
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

	// foreign keys
	fkr, err := dbConn.QueryContext(ctx, `
        SELECT
            OBJECT_NAME(fkc.parent_object_id) AS from_table,
            STRING_AGG(c.NAME, ', ') AS from_column,
            OBJECT_NAME(fkc.referenced_object_id) AS to_table,
            STRING_AGG(rc.NAME, ', ') AS to_column
        FROM sys.foreign_keys fk
        JOIN sys.foreign_key_columns fkc ON fk.object_id = fkc.constraint_object_id
        JOIN sys.columns c ON fkc.parent_object_id = c.object_id AND fkc.parent_column_id = c.column_id
        JOIN sys.columns rc ON fkc.referenced_object_id = rc.object_id AND fkc.referenced_column_id = rc.column_id
        GROUP BY fk.name, fkc.parent_object_id, fkc.referenced_object_id`)
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
	db.Register("sqlserver", mssqlExtractor{})
	db.Register("mssql", mssqlExtractor{})
}

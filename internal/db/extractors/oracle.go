//go:build oracle
// +build oracle

package extractors

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/godror/godror"

	"schemamap/internal/db"
	"schemamap/internal/introspect"
	"schemamap/internal/logger"
)

// oracleExtractor implements Extractor for Oracle.
type oracleExtractor struct{}

func (oracleExtractor) Extract(ctx context.Context, dbConn *sql.DB) (*introspect.Schema, error) {
	s := &introspect.Schema{}

	tr, err := dbConn.QueryContext(ctx, `
	    SELECT atab.table_name
	    FROM all_users ausr
	    JOIN all_tables atab
	      ON ausr.username = atab.owner
	    WHERE ausr.oracle_maintained = 'N'
	    ORDER BY ausr.username, atab.table_name`)
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
            SELECT column_name, data_type, nullable
            FROM all_tab_columns
            WHERE table_name = :1
            ORDER BY column_id`, t.Name)
		if err != nil {
			return nil, fmt.Errorf("query columns for %s: %w", t.Name, err)
		}
		for cr.Next() {
			var col introspect.Column
			var nullable string
			if err := cr.Scan(&col.Name, &col.Type, &nullable); err != nil {
				cr.Close()
				return nil, fmt.Errorf("scan column for %s: %w", t.Name, err)
			}
			col.Nullable = nullable == "Y"
			col.Type = introspect.NormalizeType(col.Type)
			t.Columns = append(t.Columns, col)
		}
		cr.Close()

		pkr, err := dbConn.QueryContext(ctx, `
            SELECT acc.column_name
            FROM all_cons_columns acc
            JOIN all_constraints ac ON acc.owner = ac.owner AND acc.constraint_name = ac.constraint_name
            WHERE ac.constraint_type = 'P' AND acc.table_name = :1`, t.Name)
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

		ixr, err := dbConn.QueryContext(ctx, `
            SELECT aic.column_name
            FROM all_ind_columns aic
            JOIN all_indexes ai ON aic.index_owner = ai.owner AND aic.index_name = ai.index_name
            WHERE aic.table_name = :1 AND ai.uniqueness <> 'UNIQUE'`, t.Name)
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
        SELECT a.table_name AS from_table,
               listagg(acc.column_name, ', ') within group (order by acc.position) AS from_column,
               rcc.table_name AS to_table,
               listagg(rcc.column_name, ', ') within group (order by rcc.position) AS to_column
        FROM all_users ausr
        JOIN all_constraints a
          ON ausr.username = a.owner
        JOIN all_cons_columns acc
          ON a.owner = acc.owner
         AND a.constraint_name = acc.constraint_name
        JOIN all_cons_columns rcc
          ON a.r_owner = rcc.owner
         AND a.r_constraint_name = rcc.constraint_name
         AND nvl(acc.position, 0) = nvl(rcc.position, 0)
        WHERE a.constraint_type = 'R'
          AND ausr.oracle_maintained = 'N'
        GROUP BY a.owner, a.table_name, rcc.owner, rcc.table_name, a.constraint_name`)
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
	db.Register("godror", oracleExtractor{})
	db.Register("oracle", oracleExtractor{})
}

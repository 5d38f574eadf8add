package extractors

import (
	"context"
	"database/sql"
	"testing"

	"schemamap/internal/introspect"
)

// openSeeded executes ddl against a fresh in-memory database.
func openSeeded(t *testing.T, ddl string) *sql.DB {
	t.Helper()
	dbConn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { dbConn.Close() })
	// every pooled connection would get its own empty :memory: database
	dbConn.SetMaxOpenConns(1)
	if ddl != "" {
		if _, err := dbConn.Exec(ddl); err != nil {
			t.Fatalf("seed schema: %v", err)
		}
	}
	return dbConn
}

const seedDDL = `
CREATE TABLE users (
    id INTEGER PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    full_name TEXT
);
CREATE TABLE orders (
    id INTEGER PRIMARY KEY,
    user_id INTEGER,
    total DECIMAL(10,2) NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id)
);
CREATE INDEX idx_orders_user_id ON orders(user_id);
`

func TestSQLiteExtract(t *testing.T) {
	dbConn := openSeeded(t, seedDDL)

	s, err := sqliteExtractor{}.Extract(context.Background(), dbConn)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	t.Run("tables in catalog order", func(t *testing.T) {
		if len(s.Tables) != 2 || s.Tables[0].Name != "users" || s.Tables[1].Name != "orders" {
			t.Errorf("\ngot tables %v, wanted users then orders", s.Tables)
		}
	})

	t.Run("columns", func(t *testing.T) {
		users := s.Table("users")
		if users == nil {
			t.Fatal("\nusers table missing")
		}
		want := []introspect.Column{
			{Name: "id", Type: "INTEGER", Nullable: true, PK: true},
			{Name: "email", Type: "TEXT", Nullable: false},
			{Name: "full_name", Type: "TEXT", Nullable: true},
		}
		if len(users.Columns) != len(want) {
			t.Fatalf("\ngot columns %v, wanted %v", users.Columns, want)
		}
		for i := range want {
			if users.Columns[i] != want[i] {
				t.Errorf("\ncolumn %d: got %+v, wanted %+v", i, users.Columns[i], want[i])
			}
		}
	})

	t.Run("normalized types", func(t *testing.T) {
		orders := s.Table("orders")
		if orders == nil {
			t.Fatal("\norders table missing")
		}
		for _, c := range orders.Columns {
			if c.Name == "total" && c.Type != "DECIMAL" {
				t.Errorf("\ngot type %q for total, wanted DECIMAL", c.Type)
			}
		}
	})

	t.Run("explicit foreign keys", func(t *testing.T) {
		want := introspect.Relationship{
			FromTable: "orders",
			ToTable:   "users",
			Label:     introspect.Label("user_id", "id"),
		}
		if len(s.ExplicitRelationships) != 1 || s.ExplicitRelationships[0] != want {
			t.Errorf("\ngot %v, wanted [%v]", s.ExplicitRelationships, want)
		}
		// and they are already surfaced
		if len(s.Relationships) != 1 || s.Relationships[0] != want {
			t.Errorf("\ngot relationships %v, wanted [%v]", s.Relationships, want)
		}
	})

	t.Run("indexed columns", func(t *testing.T) {
		if !s.IndexedColumns["orders"]["user_id"] {
			t.Errorf("\ndeclared index on orders.user_id not recorded: %v", s.IndexedColumns)
		}
		if !s.IndexedColumns["orders"]["id"] || !s.IndexedColumns["users"]["id"] {
			t.Errorf("\nprimary key columns not recorded as indexed: %v", s.IndexedColumns)
		}
		// the unique constraint on email is backed by a sqlite_autoindex,
		// which is an implementation artifact
		if s.IndexedColumns["users"]["email"] {
			t.Errorf("\nauto-generated index surfaced: %v", s.IndexedColumns["users"])
		}
	})
}

func TestSQLiteExtractEmptyDatabase(t *testing.T) {
	dbConn := openSeeded(t, "")

	s, err := sqliteExtractor{}.Extract(context.Background(), dbConn)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(s.Tables) != 0 || len(s.Relationships) != 0 {
		t.Errorf("\ngot %+v, wanted an empty model", s)
	}
}

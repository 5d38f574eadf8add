package suggest

import (
	"strings"
	"testing"

	"schemamap/internal/introspect"
)

func inferredSchema() *introspect.Schema {
	s := &introspect.Schema{}
	s.ExplicitRelationships = []introspect.Relationship{
		{FromTable: "orders", ToTable: "users", Label: introspect.Label("user_id", "id")},
	}
	s.Relationships = []introspect.Relationship{
		{FromTable: "orders", ToTable: "users", Label: introspect.Label("user_id", "id")},
		{FromTable: "orders", ToTable: "shops", Label: introspect.Label("shop_id", "id")},
		{FromTable: "items", ToTable: "categories", Label: introspect.Label("category_id", "id")},
	}
	return s
}

func TestForeignKeyDDL(t *testing.T) {
	got := ForeignKeyDDL(inferredSchema())

	if !strings.HasPrefix(got, "BEGIN TRANSACTION;") || !strings.HasSuffix(strings.TrimSpace(got), "COMMIT;") {
		t.Errorf("\noutput not transaction-wrapped:\n%s", got)
	}
	// explicit relationships already exist in the source, no DDL for them
	if strings.Contains(got, "user_id") {
		t.Errorf("\nexplicit relationship rendered:\n%s", got)
	}
	for _, want := range []string{
		"ALTER TABLE orders ADD CONSTRAINT fk_orders_shop_id FOREIGN KEY (shop_id) REFERENCES shops(id);",
		"ALTER TABLE items ADD CONSTRAINT fk_items_category_id FOREIGN KEY (category_id) REFERENCES categories(id);",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("\nmissing statement %q in:\n%s", want, got)
		}
	}
}

func TestForeignKeyDDLEmpty(t *testing.T) {
	s := &introspect.Schema{}
	if got := ForeignKeyDDL(s); got != "" {
		t.Errorf("\ngot %q, wanted empty output for a schema with no inferred relationships", got)
	}
}

func TestSQLiteForeignKeyClauses(t *testing.T) {
	s := inferredSchema()
	// second inferred edge from orders, to check comma placement
	s.Relationships = append(s.Relationships,
		introspect.Relationship{FromTable: "orders", ToTable: "couriers", Label: introspect.Label("courier_id", "id")})

	got := SQLiteForeignKeyClauses(s)

	want := `-- Table: orders
  FOREIGN KEY (shop_id) REFERENCES shops(id),
  FOREIGN KEY (courier_id) REFERENCES couriers(id)

-- Table: items
  FOREIGN KEY (category_id) REFERENCES categories(id)
`
	if got != want {
		t.Errorf("\ngot:\n%s\nwanted:\n%s", got, want)
	}
}

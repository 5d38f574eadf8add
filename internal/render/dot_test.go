package render

import (
	"strings"
	"testing"

	"schemamap/internal/introspect"
	"schemamap/pkg/config"
)

func renderSchema() *introspect.Schema {
	s := &introspect.Schema{
		Tables: []introspect.Table{
			{Name: "users", Columns: []introspect.Column{
				{Name: "id", Type: "INTEGER", PK: true},
				{Name: "bio", Type: "TEXT", Nullable: true},
			}},
			{Name: "orders", Columns: []introspect.Column{
				{Name: "id", Type: "INTEGER", PK: true},
				{Name: "user_id", Type: "INTEGER", Nullable: true},
			}},
			{Name: "order_items", Columns: []introspect.Column{
				{Name: "id", Type: "INTEGER", PK: true},
				{Name: "order_id", Type: "INTEGER", Nullable: true},
			}},
		},
	}
	s.ExplicitRelationships = []introspect.Relationship{
		{FromTable: "order_items", ToTable: "orders", Label: introspect.Label("order_id", "id")},
	}
	s.Relationships = []introspect.Relationship{
		{FromTable: "order_items", ToTable: "orders", Label: introspect.Label("order_id", "id")},
		{FromTable: "orders", ToTable: "users", Label: introspect.Label("user_id", "id")},
		{FromTable: "orders", ToTable: "couriers", Label: introspect.Label("courier_id", "id")},
	}
	s.MarkIndexed("orders", "user_id")
	return s
}

func defaultCfg() config.RenderConfig {
	cfg := config.RenderConfig{}
	cfg.ApplyDefaults()
	return cfg
}

func render(t *testing.T, cfg config.RenderConfig) string {
	t.Helper()
	var b strings.Builder
	if err := WriteDOT(&b, renderSchema(), cfg); err != nil {
		t.Fatalf("WriteDOT: %v", err)
	}
	return b.String()
}

func TestWriteDOT(t *testing.T) {
	out := render(t, defaultCfg())

	t.Run("nodes present", func(t *testing.T) {
		for _, name := range []string{"users", "orders", "order_items"} {
			if !strings.Contains(out, "\""+name+"\" [shape=plaintext") {
				t.Errorf("\nnode %q missing in:\n%s", name, out)
			}
		}
	})

	t.Run("explicit edge solid, inferred dashed", func(t *testing.T) {
		for _, line := range strings.Split(out, "\n") {
			if strings.Contains(line, "\"order_items\" -> \"orders\"") && strings.Contains(line, "style=dashed") {
				t.Errorf("\nexplicit edge rendered dashed: %s", line)
			}
			if strings.Contains(line, "\"orders\" -> \"users\"") && !strings.Contains(line, "style=dashed") {
				t.Errorf("\ninferred edge not dashed: %s", line)
			}
		}
	})

	t.Run("ghost node for unknown table", func(t *testing.T) {
		if !strings.Contains(out, "\"couriers\" [shape=box, style=dashed") {
			t.Errorf("\nghost node missing in:\n%s", out)
		}
	})

	t.Run("clustering by prefix", func(t *testing.T) {
		// orders and order_items do not share a "_" prefix group; no
		// cluster expected for a single-member prefix
		if strings.Contains(out, "subgraph \"cluster_users\"") {
			t.Errorf("\nsingle-table cluster emitted:\n%s", out)
		}
	})

	t.Run("compact mode hides non-key columns", func(t *testing.T) {
		if strings.Contains(out, "bio") {
			t.Errorf("\nnon-key column shown in compact mode:\n%s", out)
		}
	})

	t.Run("indexed column marker", func(t *testing.T) {
		if !strings.Contains(out, "[IDX]") {
			t.Errorf("\nindexed column marker missing:\n%s", out)
		}
	})
}

func TestWriteDOTFullMode(t *testing.T) {
	cfg := defaultCfg()
	cfg.FullMode = true
	out := render(t, cfg)
	if !strings.Contains(out, "bio") {
		t.Errorf("\nfull mode must show every column:\n%s", out)
	}
}

func TestWriteDOTDarkMode(t *testing.T) {
	cfg := defaultCfg()
	cfg.DarkMode = true
	out := render(t, cfg)
	if !strings.Contains(out, `bgcolor="#111111"`) {
		t.Errorf("\ndark background missing:\n%s", out)
	}
}

func TestTableColorStable(t *testing.T) {
	a := TableColor("users", false)
	b := TableColor("users", false)
	if a != b {
		t.Errorf("\ncolor not stable: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "#") {
		t.Errorf("\nunexpected color %q", a)
	}
}

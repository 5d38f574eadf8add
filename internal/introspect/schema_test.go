package introspect

import (
	"reflect"
	"testing"
)

func TestRelationshipColumns(t *testing.T) {
	var tests = []struct {
		name       string
		label      string
		wantChild  string
		wantParent string
	}{
		{"arrow label", Label("user_id", "id"), "user_id", "id"},
		{"bare label", "id", "id", "id"},
		{"padded label", " user_id  →  id ", "user_id", "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Relationship{Label: tt.label}
			if got := r.ChildColumn(); got != tt.wantChild {
				t.Errorf("\nChildColumn() = %q, wanted %q", got, tt.wantChild)
			}
			if got := r.ParentColumn(); got != tt.wantParent {
				t.Errorf("\nParentColumn() = %q, wanted %q", got, tt.wantParent)
			}
		})
	}
}

func TestNormalizeType(t *testing.T) {
	var tests = []struct {
		raw  string
		want string
	}{
		{"INTEGER", "INTEGER"},
		{"varchar(255)", "VARCHAR"},
		{"DECIMAL(10,2)", "DECIMAL"},
		{" text ", "TEXT"},
		{"double precision", "DOUBLE"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := NormalizeType(tt.raw); got != tt.want {
				t.Errorf("\nNormalizeType(%q) = %q, wanted %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestPrimaryKeyColumns(t *testing.T) {
	s := &Schema{Tables: []Table{
		{Name: "users", Columns: []Column{
			{Name: "id", PK: true},
			{Name: "tenant_id", PK: true}, // composite key: first column wins
		}},
		{Name: "logs", Columns: []Column{{Name: "message"}}},
	}}

	got := s.PrimaryKeyColumns()
	want := map[string]string{"users": "id"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("\ngot %v, wanted %v", got, want)
	}
}

func TestMarkIndexed(t *testing.T) {
	s := &Schema{}
	s.MarkIndexed("orders", "user_id")
	s.MarkIndexed("orders", "user_id")
	s.MarkIndexed("orders", "status")

	if !s.IndexedColumns["orders"]["user_id"] || !s.IndexedColumns["orders"]["status"] {
		t.Errorf("\nindexed columns not recorded: %v", s.IndexedColumns)
	}
	if len(s.IndexedColumns["orders"]) != 2 {
		t.Errorf("\ngot %v, wanted a set of two columns", s.IndexedColumns["orders"])
	}
}

func TestTableLookup(t *testing.T) {
	s := &Schema{Tables: []Table{{Name: "users"}}}
	if s.Table("users") == nil {
		t.Error("\nexisting table not found")
	}
	if s.Table("ghost") != nil {
		t.Error("\nunknown table returned non-nil")
	}
}

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{Path: "missing.db"}
	if err.Error() != "input file not found: missing.db" {
		t.Errorf("\ngot %q", err.Error())
	}
}

// Package render turns a schema model into Graphviz DOT text. It is a pure
// consumer of the model: tables, relationships and indexed columns in, text
// out.
package render

import (
	"crypto/md5"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"schemamap/internal/introspect"
	"schemamap/pkg/config"
)

var brightColorsLight = []string{
	"#E63946", "#F4A261", "#2A9D8F", "#264653", "#6A4C93",
	"#FFB703", "#3D405B", "#D62828", "#457B9D", "#A8DADC",
	"#1D3557", "#F9844A", "#43AA8B", "#9A031E", "#5F0F40",
	"#0F4C5C", "#F77F00", "#6D6875", "#2C7DA0", "#8ECAE6",
}

var brightColorsDark = []string{
	"#FF6B6B", "#FFD93D", "#6BCB77", "#4D96FF", "#F9C80E",
	"#FF9F1C", "#A9DEF9", "#E4C1F9", "#70D6FF", "#FF70A6",
	"#C0FDFB", "#F6F740", "#FFA69E", "#CBF3F0", "#D0F4DE",
	"#FEC8D8", "#FFDAC1", "#F5F5F5", "#FFFFFF", "#D9ED92",
}

// relationalColRe matches column names that look like keys; in compact mode
// only these columns are shown.
var relationalColRe = regexp.MustCompile(`_id$|_ID$|_Id$|ID$|Id$|Key$|_key$`)

// TableColor hashes a table name onto the palette so colors are stable
// across runs.
func TableColor(name string, dark bool) string {
	palette := brightColorsLight
	if dark {
		palette = brightColorsDark
	}
	sum := md5.Sum([]byte(name))
	idx := 0
	for _, b := range sum {
		idx = (idx*256 + int(b)) % len(palette)
	}
	return palette[idx]
}

// WriteDOT emits the schema as a Graphviz digraph. Tables sharing a "_"
// prefix are grouped into dashed clusters when more than one exists; tables
// referenced by a relationship but never defined get a dashed ghost node;
// inferred relationships are drawn with dashed edges.
func WriteDOT(w io.Writer, s *introspect.Schema, cfg config.RenderConfig) error {
	fontcolor := "#222222"
	bgcolor := "white"
	if cfg.DarkMode {
		fontcolor = "#eeeeee"
		bgcolor = "#111111"
	}

	colors := make(map[string]string, len(s.Tables))
	for _, t := range s.Tables {
		if cfg.ColorTables {
			colors[t.Name] = TableColor(t.Name, cfg.DarkMode)
		} else {
			colors[t.Name] = fontcolor
		}
	}

	var b strings.Builder
	b.WriteString("digraph schema {\n")
	fmt.Fprintf(&b, "  rankdir=LR;\n  nodesep=0.6;\n  ranksep=0.7;\n  bgcolor=%q;\n", bgcolor)
	fmt.Fprintf(&b, "  graph [fontname=%q];\n  node [fontname=%q];\n  edge [fontname=%q];\n",
		cfg.Font, cfg.Font, cfg.Font)

	// group tables by "_" prefix for clustering
	clusters := make(map[string][]introspect.Table)
	var prefixOrder []string
	for _, t := range s.Tables {
		prefix := t.Name
		if i := strings.Index(t.Name, "_"); i >= 0 {
			prefix = t.Name[:i]
		}
		if _, seen := clusters[prefix]; !seen {
			prefixOrder = append(prefixOrder, prefix)
		}
		clusters[prefix] = append(clusters[prefix], t)
	}

	clustered := make(map[string]bool)
	for _, prefix := range prefixOrder {
		tables := clusters[prefix]
		if len(tables) < 2 {
			continue
		}
		fmt.Fprintf(&b, "  subgraph \"cluster_%s\" {\n", prefix)
		fmt.Fprintf(&b, "    label=%q;\n    style=dashed;\n", strings.ToUpper(prefix))
		if cfg.DarkMode {
			b.WriteString("    color=\"#cccccc\";\n    fontcolor=\"#cccccc\";\n")
		}
		for _, t := range tables {
			writeTableNode(&b, "    ", s, t, cfg, colors[t.Name])
			clustered[t.Name] = true
		}
		b.WriteString("  }\n")
	}

	for _, t := range s.Tables {
		if !clustered[t.Name] {
			writeTableNode(&b, "  ", s, t, cfg, colors[t.Name])
		}
	}

	// ghost nodes for referenced-but-undefined tables
	ghosts := make(map[string]bool)
	for _, rel := range s.Relationships {
		for _, name := range []string{rel.FromTable, rel.ToTable} {
			if s.Table(name) == nil && !ghosts[name] {
				ghosts[name] = true
				fmt.Fprintf(&b, "  %q [shape=box, style=dashed, fontcolor=%q, color=%q];\n",
					name, fontcolor, fontcolor)
			}
		}
	}

	for _, rel := range s.Relationships {
		color := colors[rel.FromTable]
		if color == "" {
			color = fontcolor
		}
		attrs := fmt.Sprintf("label=%q, color=%q, fontcolor=%q", rel.Label, color, color)
		if !s.IsExplicit(rel) {
			attrs += ", style=dashed"
		}
		fmt.Fprintf(&b, "  %q -> %q [%s];\n", rel.FromTable, rel.ToTable, attrs)
	}

	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeTableNode(b *strings.Builder, indent string, s *introspect.Schema, t introspect.Table, cfg config.RenderConfig, color string) {
	cols := t.Columns
	if !cfg.FullMode {
		cols = nil
		for _, c := range t.Columns {
			if c.PK || relationalColRe.MatchString(c.Name) {
				cols = append(cols, c)
			}
		}
	}

	var label strings.Builder
	label.WriteString(`<TABLE BORDER="1" CELLBORDER="0" CELLSPACING="0" CELLPADDING="6">`)
	fmt.Fprintf(&label, `<TR><TD WIDTH="120"><U><B>%s</B></U></TD></TR>`, html.EscapeString(t.Name))
	for _, c := range cols {
		fmt.Fprintf(&label, `<TR><TD ALIGN="LEFT">%s (%s)`, html.EscapeString(c.Name), html.EscapeString(c.Type))
		if c.PK {
			label.WriteString(` <B>[PK]</B>`)
		} else if s.IndexedColumns[t.Name][c.Name] {
			label.WriteString(` [IDX]`)
		}
		label.WriteString(`</TD></TR>`)
	}
	label.WriteString(`</TABLE>`)

	fmt.Fprintf(b, "%s%q [shape=plaintext, width=1.5, fontcolor=%q", indent, t.Name, color)
	if cfg.DarkMode {
		fmt.Fprintf(b, ", color=%q", "#eeeeee")
	}
	fmt.Fprintf(b, ", label=<%s>];\n", label.String())
}

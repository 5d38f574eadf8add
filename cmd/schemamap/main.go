package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "schemamap/internal/db/extractors"
	"schemamap/internal/logger"

	"schemamap/internal/db"
	"schemamap/internal/ddl"
	"schemamap/internal/infer"
	"schemamap/internal/introspect"
	"schemamap/internal/render"
	"schemamap/internal/suggest"
	"schemamap/pkg/config"
)

func main() {
	cfgPath := flag.String("config", filepath.Join(".", "configs", "example.yaml"), "path to config YAML")
	driverFlag := flag.String("driver", "", "db driver override (postgres,mysql,sqlite,sqlserver,godror)")
	dsnFlag := flag.String("dsn", "", "dsn override")
	timeout := flag.Int("timeout", 10, "db connect timeout seconds")
	output := flag.String("output", "", "output file name without extension (default database_diagram)")
	format := flag.String("format", "", "graphviz output format (default png)")
	assume := flag.Bool("assume", false, "assume relationships based on column naming patterns")
	color := flag.Bool("color", false, "assign a unique color to each table and its outgoing arrows")
	dark := flag.Bool("dark", false, "use a dark background and light foreground")
	full := flag.Bool("full", false, "show all columns")
	font := flag.String("font", "", "diagram font (default Consolas)")
	suggestIdx := flag.Bool("suggest", false, "print index suggestions")
	fkDDL := flag.Bool("fk", false, "print ALTER TABLE foreign key DDL for assumed relationships")
	sqliteFK := flag.Bool("sqlite-fk", false, "print sqlite FOREIGN KEY clauses for assumed relationships")
	noRender := flag.Bool("no-render", false, "write DOT text only, skip the dot binary")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()
	logger.SetVerbose(*verbose)

	// attempt to load config file (optional)
	var appCfg config.AppConfig
	if *cfgPath != "" {
		if c, err := config.LoadFile(*cfgPath); err == nil {
			appCfg = c
		} else if !os.IsNotExist(err) {
			logger.Error("error reading config file: %v", err)
		}
	}

	// CLI flags override config
	if *output != "" {
		appCfg.Render.Output = *output
	}
	if *format != "" {
		appCfg.Render.Format = *format
	}
	if *font != "" {
		appCfg.Render.Font = *font
	}
	if *assume {
		appCfg.Render.AssumeRelationships = true
	}
	if *color {
		appCfg.Render.ColorTables = true
	}
	if *dark {
		appCfg.Render.DarkMode = true
	}
	if *full {
		appCfg.Render.FullMode = true
	}
	appCfg.Render.ApplyDefaults()

	schema, err := loadSchema(flag.Arg(0), *driverFlag, *dsnFlag, *timeout, appCfg)
	if err != nil {
		logger.Fatal("%v", err)
	}

	infer.Finalize(schema, appCfg.Render.AssumeRelationships)
	logger.Info("extracted %d tables, %d relationships (%d explicit)",
		len(schema.Tables), len(schema.Relationships), len(schema.ExplicitRelationships))

	if *suggestIdx {
		printIndexSuggestions(schema)
	}
	if *fkDDL {
		if text := suggest.ForeignKeyDDL(schema); text != "" {
			fmt.Println(text)
		} else {
			fmt.Println("-- no assumed relationships; run with -assume")
		}
	}
	if *sqliteFK {
		if text := suggest.SQLiteForeignKeyClauses(schema); text != "" {
			fmt.Println(text)
		} else {
			fmt.Println("-- no assumed relationships; run with -assume")
		}
	}
	if *suggestIdx || *fkDDL || *sqliteFK {
		return
	}

	var dot strings.Builder
	if err := render.WriteDOT(&dot, schema, appCfg.Render); err != nil {
		logger.Fatal("%v", err)
	}
	dotFile := appCfg.Render.Output + ".dot"
	if err := os.WriteFile(dotFile, []byte(dot.String()), 0o644); err != nil {
		logger.Fatal("write %s: %v", dotFile, err)
	}
	logger.Info("wrote %s", dotFile)

	if *noRender {
		return
	}
	if err := render.Render(dot.String(), appCfg.Render.Output, appCfg.Render.Format); err != nil {
		logger.Fatal("%v", err)
	}
	logger.Info("wrote %s.%s", appCfg.Render.Output, appCfg.Render.Format)
}

// loadSchema picks the front-end: an explicit driver/dsn pair or a config
// database block goes to the live catalog, otherwise the input path is
// sniffed by extension (embedded database file vs DDL text).
func loadSchema(input, driver, dsn string, timeout int, appCfg config.AppConfig) (*introspect.Schema, error) {
	if driver != "" && dsn != "" {
		return db.ConnectAndExtract(driver, dsn, timeout)
	}
	if input == "" {
		if appCfg.Database.Type != "" {
			drv, built, err := config.BuildDriverAndDSN(appCfg.Database)
			if err != nil {
				return nil, fmt.Errorf("building DSN: %w", err)
			}
			return db.ConnectAndExtract(drv, built, timeout)
		}
		return nil, fmt.Errorf("no input: pass a database or SQL file path, or -driver/-dsn")
	}
	if db.IsDatabaseFile(input) {
		return db.LoadFile(input, timeout)
	}
	return ddl.ParseFile(input)
}

// printIndexSuggestions prints the definite and possible CREATE INDEX
// statements, grouped by table in discovery order.
func printIndexSuggestions(s *introspect.Schema) {
	definite, possible := suggest.Indexes(s)

	fmt.Println("-- Definite index suggestions")
	for _, t := range s.Tables {
		for _, stmt := range definite[t.Name] {
			fmt.Println(stmt)
		}
	}
	fmt.Println()
	fmt.Println("-- Possible index suggestions")
	for _, t := range s.Tables {
		for _, stmt := range possible[t.Name] {
			fmt.Println(stmt)
		}
	}
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"schemamap/internal/introspect"
	"schemamap/pkg/config"
)

type Extractor interface {

	// Extract reads the database catalog and returns the normalized schema model
	Extract(ctx context.Context, db *sql.DB) (*introspect.Schema, error)
}

var dialects = map[string]Extractor{}

// Register makes an Extractor available under name.
func Register(name string, e Extractor) {
	dialects[strings.ToLower(name)] = e
}

// listRegistered returns the registered dialect keys (for diagnostics).
func listRegistered() []string {
	keys := make([]string, 0, len(dialects))
	for k := range dialects {
		keys = append(keys, k)
	}
	return keys
}

// ConnectAndExtract connects to the database, introspects its catalog and
// returns the schema model. The connection is opened and closed within the
// call; nothing is retained across runs.
func ConnectAndExtract(driver, dsn string, timeoutSec int) (*introspect.Schema, error) {
	driver = config.NormalizeDriver(driver)
	extractor, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("dialect not registered: %q (available: %v)", driver, listRegistered())
	}
	dbConn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	defer dbConn.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
	defer cancel()
	if err := dbConn.PingContext(ctx); err != nil {
		return nil, err
	}
	return extractor.Extract(ctx, dbConn)
}

// databaseExtensions are the embedded-database file extensions routed to the
// sqlite catalog front-end; anything else is treated as DDL text.
var databaseExtensions = map[string]bool{
	".db":      true,
	".sqlite":  true,
	".sqlite3": true,
}

// IsDatabaseFile reports whether path looks like an embedded database file.
func IsDatabaseFile(path string) bool {
	return databaseExtensions[strings.ToLower(filepath.Ext(path))]
}

// LoadFile introspects an embedded database file read-only. Returns
// *introspect.NotFoundError when the file does not exist.
func LoadFile(path string, timeoutSec int) (*introspect.Schema, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &introspect.NotFoundError{Path: path}
		}
		return nil, err
	}
	return ConnectAndExtract("sqlite", fmt.Sprintf("file:%s?mode=ro", path), timeoutSec)
}

// RegisteredDialects is a helper that allows main to print registered dialects
func RegisteredDialects() []string {
	return listRegistered()
}

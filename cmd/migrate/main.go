// Applies the request-history schema from migrations/. The engine itself
// never creates tables; run this once before enabling -dsn.
package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lingo-engine/internal/shared"

	_ "github.com/go-sql-driver/mysql"
)

func main() {
	DSN, err := shared.SafeEnv("DSN")
	if err != nil {
		fatal("DSN environment variable is required: %v", err)
	}

	path := filepath.Join("migrations", "create_request_history_table.sql")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	schema, err := os.ReadFile(path)
	if err != nil {
		fatal("reading %s: %v", path, err)
	}

	db, err := sql.Open("mysql", DSN)
	if err != nil {
		fatal("connecting to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		fatal("pinging database: %v", err)
	}

	for _, stmt := range strings.Split(string(schema), ";") {
		if stmt = stripComments(stmt); stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			fatal("executing statement: %v\nstatement: %s", err, stmt)
		}
	}
	fmt.Println("Migration completed successfully!")
}

func stripComments(stmt string) string {
	var kept []string
	for _, line := range strings.Split(stmt, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

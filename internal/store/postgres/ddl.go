package postgres

import (
	_ "embed"
	"strings"
)

//go:embed schema.sql
var ddlFile string

// DefaultDDLStatements returns the CREATE TABLE / INDEX statements from
// schema.sql for test setup. It splits on semicolons and strips comment lines.
func DefaultDDLStatements() []string {
	parts := strings.Split(ddlFile, ";")
	var out []string
	for _, p := range parts {
		var lines []string
		for _, line := range strings.Split(p, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		stmt := strings.TrimSpace(strings.Join(lines, "\n"))
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}

package data

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed initdb/postgres/001-privileges.sql
var InitdbPostgresPrivileges string

//go:embed initdb/mariadb/001-privileges.sql
var InitdbMariaDBPrivileges string

// Account names the restricted draft storage login and its database.
type Account struct {
	User     string
	Password string
	Database string
}

// PrivilegeStatements renders the privileges script for dbType and splits it
// into single statements. SQLite has no accounts and yields none.
func PrivilegeStatements(dbType string, account Account) ([]string, error) {
	var script string
	switch dbType {
	case "postgres", "postgresql":
		script = InitdbPostgresPrivileges
	case "mysql", "mariadb":
		script = InitdbMariaDBPrivileges
	case "sqlite", "sqlite3":
		return nil, nil
	default:
		return nil, fmt.Errorf("no privileges script for database type: %s", dbType)
	}

	tmpl, err := template.New(dbType).Option("missingkey=error").Parse(script)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, account); err != nil {
		return nil, err
	}
	return SplitStatements(sb.String()), nil
}

// SplitStatements drops "--" comments outside quotes and splits on semicolons.
func SplitStatements(sql string) []string {
	var lines []string
	for _, l := range strings.Split(sql, "\n") {
		lines = append(lines, excludeComment(l))
	}

	var statements []string
	for _, q := range strings.Split(strings.Join(lines, "\n"), ";") {
		if q = strings.TrimSpace(q); q != "" {
			statements = append(statements, q)
		}
	}
	return statements
}

func excludeComment(line string) string {
	var quote rune
	for i, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '-' && strings.HasPrefix(line[i:], "--"):
			return line[:i]
		}
	}
	return line
}

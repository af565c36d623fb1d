package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrivilegeStatementsPostgres(t *testing.T) {
	stmts, err := PrivilegeStatements("postgres", Account{User: "drafts", Password: "p-w--d", Database: "wpq"})
	require.NoError(t, err)
	require.Len(t, stmts, 5)
	assert.Equal(t, "CREATE ROLE drafts LOGIN PASSWORD 'p-w--d'", stmts[0])
	assert.Contains(t, stmts[3], "ON user_storage_items TO drafts")
}

func TestPrivilegeStatementsMariaDB(t *testing.T) {
	stmts, err := PrivilegeStatements("mariadb", Account{User: "drafts", Password: "secret", Database: "wpq"})
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	assert.Contains(t, stmts[1], "ON wpq.user_storage_items TO 'drafts'@'%'")
	assert.Equal(t, "FLUSH PRIVILEGES", stmts[2])
}

func TestPrivilegeStatementsSQLiteAndUnknown(t *testing.T) {
	stmts, err := PrivilegeStatements("sqlite", Account{})
	assert.NoError(t, err)
	assert.Empty(t, stmts)

	_, err = PrivilegeStatements("oracle", Account{})
	assert.Error(t, err)
}

func TestSplitStatementsKeepsQuotedDashes(t *testing.T) {
	stmts := SplitStatements("SELECT '--x'; -- trailing\n-- whole line\nSELECT 2;")
	assert.Equal(t, []string{"SELECT '--x'", "SELECT 2"}, stmts)
}

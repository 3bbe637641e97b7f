package migrate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeMigration(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

const validMigration = `-- +goose Up
CREATE TABLE demo (id int);

-- +goose Down
DROP TABLE demo;
`

func TestValidateDirAcceptsWellFormedFiles(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20260101120000_add_demo.sql", validMigration)
	writeMigration(t, dir, "20260102120000_drop_demo.sql", validMigration)

	require.NoError(t, ValidateDir(dir))
}

func TestValidateDirAllowsEmptyDir(t *testing.T) {
	require.NoError(t, ValidateDir(t.TempDir()))
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "202601_bad.sql", validMigration)

	require.ErrorContains(t, ValidateDir(dir), "invalid migration filename")
}

func TestValidateDirRejectsDuplicateVersion(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20260101120000_first.sql", validMigration)
	writeMigration(t, dir, "20260101120000_second.sql", validMigration)

	require.ErrorContains(t, ValidateDir(dir), "duplicate migration version")
}

func TestValidateDirRejectsMissingMarkers(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20260101120000_no_down.sql", "-- +goose Up\nCREATE TABLE demo (id int);\n")

	require.ErrorContains(t, ValidateDir(dir), "+goose Down")
}

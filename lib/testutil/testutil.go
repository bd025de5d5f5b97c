package testutil

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"playlistwatch/lib/telemetry"

	_ "modernc.org/sqlite"
)

type ServiceParams struct {
	Name string
	// if unspecified, setting up a db is skipped
	DbSchema string
}

type ServiceResult struct {
	DB *sql.DB
}

// SetupService prepares telemetry and, when a schema is given, an in-memory
// sqlite database for a service test.
func SetupService(t testing.TB, params ServiceParams) ServiceResult {
	telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))

	if params.DbSchema == "" {
		return ServiceResult{}
	}

	sqlite, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sqlite.Close() })

	_, err = sqlite.Exec(params.DbSchema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		t.Fatal(err)
	}

	return ServiceResult{DB: sqlite}
}

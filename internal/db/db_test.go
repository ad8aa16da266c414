package db

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const repoMigrations = "../../migrations"

func TestRunMigrations_RequiresArguments(t *testing.T) {
	_, err := RunMigrations("", repoMigrations)
	assert.Error(t, err)

	_, err = RunMigrations("postgres://u:p@localhost:5432/db", "")
	assert.Error(t, err)
}

func TestLatestVersion_RepoMigrations(t *testing.T) {
	version, err := LatestVersion(repoMigrations)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	withScheme, err := LatestVersion("file://" + repoMigrations)
	require.NoError(t, err)
	assert.Equal(t, version, withScheme)
}

func TestRepoMigrations_CreateAndDropRatesTable(t *testing.T) {
	src, err := source.Open(sourceURL(repoMigrations))
	require.NoError(t, err)
	defer src.Close()

	up, name, err := src.ReadUp(1)
	require.NoError(t, err)
	defer up.Close()
	assert.Equal(t, "create_exchange_rates", name)

	body, err := io.ReadAll(up)
	require.NoError(t, err)
	assert.Contains(t, string(body), "exchange_rates")

	down, _, err := src.ReadDown(1)
	require.NoError(t, err)
	defer down.Close()

	body, err = io.ReadAll(down)
	require.NoError(t, err)
	assert.Contains(t, strings.ToUpper(string(body)), "DROP TABLE")
}

func TestLatestVersion_EmptyDirectory(t *testing.T) {
	_, err := LatestVersion(t.TempDir())
	assert.Error(t, err)

	_, err = LatestVersion("")
	assert.Error(t, err)
}

func TestNewPool_InvalidDSN(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := NewPool(context.Background(), "postgres://%zz", DefaultPoolConfig(), log)
	assert.Error(t, err)
}

func TestSleepCtx(t *testing.T) {
	assert.True(t, sleepCtx(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleepCtx(ctx, time.Hour))
}

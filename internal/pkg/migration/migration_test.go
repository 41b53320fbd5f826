package migration

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/shandysiswandi/gomarket/migrations"
)

func TestPgx5URL(t *testing.T) {
	tests := []struct {
		name    string
		dsn     string
		want    string
		wantErr error
	}{
		{name: "Postgres", dsn: "postgres://u:p@db:5432/market?sslmode=disable", want: "pgx5://u:p@db:5432/market?sslmode=disable"},
		{name: "PostgreSQL", dsn: " postgresql://db/market ", want: "pgx5://db/market"},
		{name: "Empty", dsn: "", wantErr: ErrDSNRequired},
		{name: "KeyValue", dsn: "host=db user=u", wantErr: ErrUnsupportedDSN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pgx5URL(tt.dsn)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpAndDown(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	// Arrange
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("gomarket"),
		tcpostgres.WithUsername("gomarket"),
		tcpostgres.WithPassword("gomarket"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Act
	require.NoError(t, Up(dsn, migrations.FS, "."))
	require.NoError(t, Up(dsn, migrations.FS, "."), "second run is a no-op")

	// Assert
	conn, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(ctx) })

	var tables int
	err = conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM information_schema.tables WHERE table_name IN ('users', 'auth_audit_logs')`,
	).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 2, tables)

	require.NoError(t, Down(dsn, migrations.FS, "."))
	err = conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM information_schema.tables WHERE table_name IN ('users', 'auth_audit_logs')`,
	).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 0, tables)
}

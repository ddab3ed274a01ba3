package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventory-alerts/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPoolSettings_DesdeConfiguracion(t *testing.T) {
	pc, err := pgxpool.ParseConfig("postgres://u:p@127.0.0.1:5432/alertas?sslmode=disable")
	require.NoError(t, err)

	applyPoolSettings(pc, config.DBConfig{
		AppName:         "inventory-alerts",
		MaxConns:        8,
		MinConns:        1,
		MaxConnLifetime: 20 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
	})

	assert.Equal(t, int32(8), pc.MaxConns)
	assert.Equal(t, int32(1), pc.MinConns)
	assert.Equal(t, 20*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, 5*time.Minute, pc.MaxConnIdleTime)
	assert.Equal(t, "inventory-alerts", pc.ConnConfig.RuntimeParams["application_name"])
	assert.NotNil(t, pc.AfterConnect, "registra el codec de decimales")
}

func TestApplyPoolSettings_ValoresVaciosConservanLosDelDSN(t *testing.T) {
	pc, err := pgxpool.ParseConfig("postgres://u:p@127.0.0.1:5432/alertas?pool_max_conns=3")
	require.NoError(t, err)

	applyPoolSettings(pc, config.DBConfig{})

	assert.Equal(t, int32(3), pc.MaxConns)
	assert.Empty(t, pc.ConnConfig.RuntimeParams["application_name"])
}

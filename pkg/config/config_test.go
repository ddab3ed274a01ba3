package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, time.Hour, cfg.Scheduler.LowStockInterval)
	assert.Equal(t, "0 2 * * *", cfg.Scheduler.CleanupCron)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 7, cfg.Notifications.TTLDays)
	assert.Equal(t, 256, cfg.Notifications.DeliveryQueueSize)
	assert.Zero(t, cfg.Notifications.SuppressionWindow, "por defecto se re-alerta en cada revisión")
	assert.False(t, cfg.Redis.Enabled)
}

func TestFromViper_Sobrescrituras(t *testing.T) {
	v := viper.New()
	v.Set("LOW_STOCK_INTERVAL", "15m")
	v.Set("ALERT_SUPPRESSION_WINDOW", "3600")
	v.Set("NOTIFICATION_TTL_DAYS", "3")
	v.Set("REDIS_ENABLED", "true")
	v.Set("HTTP_PORT", "9090")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.Scheduler.LowStockInterval)
	assert.Equal(t, time.Hour, cfg.Notifications.SuppressionWindow)
	assert.Equal(t, 3, cfg.Notifications.TTLDays)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestFromViper_IntervaloInvalido(t *testing.T) {
	v := viper.New()
	v.Set("LOW_STOCK_INTERVAL", "cada hora")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestFromViper_TTLNoPositivo(t *testing.T) {
	v := viper.New()
	v.Set("NOTIFICATION_TTL_DAYS", "0")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestFromViper_PoolDeConexiones(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)
	assert.Equal(t, int32(25), cfg.DB.MaxConns)
	assert.Equal(t, int32(2), cfg.DB.MinConns)
	assert.Equal(t, time.Hour, cfg.DB.MaxConnLifetime)
	assert.Equal(t, 30*time.Minute, cfg.DB.MaxConnIdleTime)
	assert.Equal(t, "inventory-alerts", cfg.DB.AppName)

	v := viper.New()
	v.Set("APP_NAME", "alertas-bodega")
	v.Set("DB_MAX_CONNS", "10")
	v.Set("DB_MIN_CONNS", "0")
	v.Set("DB_MAX_CONN_LIFETIME", "15m")
	cfg, err = fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, int32(10), cfg.DB.MaxConns)
	assert.Equal(t, int32(0), cfg.DB.MinConns)
	assert.Equal(t, 15*time.Minute, cfg.DB.MaxConnLifetime)
	assert.Equal(t, "alertas-bodega", cfg.DB.AppName)
}

func TestFromViper_PoolInvalido(t *testing.T) {
	v := viper.New()
	v.Set("DB_MAX_CONNS", "2")
	v.Set("DB_MIN_CONNS", "5")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestSchedulerConfig_Location(t *testing.T) {
	loc, err := SchedulerConfig{Timezone: "Local"}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = SchedulerConfig{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	_, err = SchedulerConfig{Timezone: "Marte/Olympus"}.Location()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss", DBName: "inv", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/inv?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}

//go:build integration

// Package containers levanta dependencias reales (PostgreSQL) con testcontainers-go para los tests de
// integración. Requiere Docker; se ejecuta con:
//
//	go test -tags=integration ./internal/infrastructure/postgres/...
package containers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventory-alerts/internal/infrastructure/postgres"
	"github.com/jhoicas/inventory-alerts/pkg/config"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// baseSchema tablas del inventario que la migración de alertas extiende.
const baseSchema = `
CREATE TABLE IF NOT EXISTS users (
    id            UUID PRIMARY KEY,
    company_id    UUID NOT NULL,
    email         VARCHAR(255) NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    name          VARCHAR(200) NOT NULL,
    role          VARCHAR(20) NOT NULL,
    status        VARCHAR(20) NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS products (
    id         UUID PRIMARY KEY,
    company_id UUID NOT NULL,
    sku        VARCHAR(64) NOT NULL,
    name       VARCHAR(200) NOT NULL
);
CREATE TABLE IF NOT EXISTS warehouses (
    id         UUID PRIMARY KEY,
    company_id UUID NOT NULL,
    name       VARCHAR(200) NOT NULL
);
CREATE TABLE IF NOT EXISTS stock (
    product_id   UUID NOT NULL REFERENCES products(id),
    warehouse_id UUID NOT NULL REFERENCES warehouses(id),
    quantity     NUMERIC(18,4) NOT NULL DEFAULT 0,
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (product_id, warehouse_id)
);`

// PostgresContainer instancia de PostgreSQL con el esquema de alertas aplicado.
type PostgresContainer struct {
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool
}

// NewPostgresContainer arranca el contenedor, abre el pool del servicio y aplica el esquema.
func NewPostgresContainer(ctx context.Context) (*PostgresContainer, error) {
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("alertas_test"),
		tcpostgres.WithUsername("alertas"),
		tcpostgres.WithPassword("alertas"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("arrancar postgres: %w", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = ctr.Terminate(context.Background())
		return nil, fmt.Errorf("connection string: %w", err)
	}

	pool, err := postgres.NewPool(ctx, config.DBConfig{
		DatabaseURL: dsn,
		AppName:     "inventory-alerts-test",
		MaxConns:    5,
		MinConns:    0,
	})
	if err != nil {
		_ = ctr.Terminate(context.Background())
		return nil, err
	}

	c := &PostgresContainer{container: ctr, pool: pool}
	if err := c.migrate(ctx); err != nil {
		_ = c.Terminate(context.Background())
		return nil, err
	}
	return c, nil
}

func (c *PostgresContainer) migrate(ctx context.Context) error {
	if _, err := c.pool.Exec(ctx, baseSchema); err != nil {
		return fmt.Errorf("esquema base: %w", err)
	}
	_, thisFile, _, _ := runtime.Caller(0)
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "migrations", "001_alerts_notifications.sql")
	script, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("leer migración: %w", err)
	}
	if _, err := c.pool.Exec(ctx, string(script)); err != nil {
		return fmt.Errorf("aplicar migración: %w", err)
	}
	return nil
}

// Pool compartido por los tests del paquete; no cerrarlo desde un test.
func (c *PostgresContainer) Pool() *pgxpool.Pool {
	return c.pool
}

// Reset vacía todas las tablas entre tests.
func (c *PostgresContainer) Reset(ctx context.Context) error {
	_, err := c.pool.Exec(ctx, `TRUNCATE notifications, activity_logs, stock, products, warehouses, users CASCADE`)
	if err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	return nil
}

// Terminate cierra el pool y elimina el contenedor.
func (c *PostgresContainer) Terminate(ctx context.Context) error {
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
	if c.container != nil {
		if err := c.container.Terminate(ctx); err != nil {
			return fmt.Errorf("terminar contenedor: %w", err)
		}
	}
	return nil
}

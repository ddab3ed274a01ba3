package postgres

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Códigos SQLSTATE que se traducen a errores de dominio.
const (
	codeUniqueViolation = "23505"
)

// pgErrorCode devuelve el SQLSTATE del error o "" si no viene de PostgreSQL.
func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único.
func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == codeUniqueViolation
}

// isUUID indica si s se puede enviar a una columna UUID. pgx codifica el parámetro en el cliente,
// así que un id mal formado falla antes de llegar al servidor.
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

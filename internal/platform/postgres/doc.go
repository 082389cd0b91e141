// Package postgres keeps the deck slot in a PostgreSQL table. Connections
// use the pgx database/sql driver; the schema is managed with embedded goose
// migrations. MapError translates driver errors into store errors.
package postgres

// Package postgres provides PostgreSQL implementations of the record store
// interfaces defined in internal/store and of the task journal defined in
// internal/task. Connections go through the pgx database/sql driver.
package postgres

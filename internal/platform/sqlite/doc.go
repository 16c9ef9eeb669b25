// Package sqlite provides SQLite implementations of the record stores and the
// task journal, backed by the pure-Go modernc.org/sqlite driver.
//
// SQLite allows a single writer, so Open limits the pool to one connection.
// Code running inside a transaction must go through the WithTx stores and
// never touch the *sql.DB directly, or it will wait on itself.
package sqlite

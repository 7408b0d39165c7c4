package db

import "context"

// DB is the database port the repositories are built on. Conn exposes the
// driver handle (a *gorm.DB for the gormdb adapter); Ping and Close let
// main check and release the connection without knowing the driver.
type DB interface {
	Conn() any
	Ping(ctx context.Context) error
	Close() error
}

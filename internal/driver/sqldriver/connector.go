// Package sqldriver implements the driver boundary on top of database/sql.
// Every session gets its own *sql.DB capped at a single connection, and
// all work goes through one dedicated *sql.Conn taken from it.
package sqldriver

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/TechXTT/oraconsole/internal/driver"
)

// OracleDriverName is the database/sql name go-ora registers under.
const OracleDriverName = "oracle"

// OpenFunc opens a *sql.DB. sql.Open satisfies it.
type OpenFunc func(driverName, dsn string) (*sql.DB, error)

// Connector opens one dedicated connection per Open call.
type Connector struct {
	driverName string
	dsn        string
	open       OpenFunc
}

var _ driver.Connector = (*Connector)(nil)

// NewConnector returns a Connector for the given database/sql driver and DSN.
func NewConnector(driverName, dsn string) *Connector {
	return &Connector{driverName: driverName, dsn: dsn, open: sql.Open}
}

// WithOpenFunc replaces sql.Open, mostly for tests.
func (c *Connector) WithOpenFunc(open OpenFunc) *Connector {
	c.open = open
	return c
}

// Open connects to the database and verifies the connection with a ping.
func (c *Connector) Open(ctx context.Context) (driver.Conn, error) {
	db, err := c.open(c.driverName, c.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Conn{db: db, conn: conn}, nil
}

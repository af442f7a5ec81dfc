package sqldriver

import (
	_ "github.com/sijms/go-ora/v2" // registers the "oracle" database/sql driver
)

// NewOracleConnector returns a Connector for an Oracle DSN as built by
// config.Config.DSN.
func NewOracleConnector(dsn string) *Connector {
	return NewConnector(OracleDriverName, dsn)
}

package database

import (
	"context"
	"fmt"
	"io"

	"github.com/semmidev/dumpkeeper/internal/config"
)

type MySQLDatabase struct {
	config *config.DatabaseConfig
}

func NewMySQL(cfg *config.DatabaseConfig) *MySQLDatabase {
	return &MySQLDatabase{config: cfg}
}

func (m *MySQLDatabase) Dump(ctx context.Context, w io.Writer) error {
	args := append(m.connArgs(),
		"--single-transaction",
		"--quick",
		"--lock-tables=false",
		"--routines",
		"--triggers",
		"--events",
		m.config.Name,
	)
	return runTool(ctx, orDefault(m.config.DumpCommand, "mysqldump"), args, m.env(), w)
}

func (m *MySQLDatabase) GetName() string {
	return m.config.Name
}

func (m *MySQLDatabase) GetType() string {
	return "mysql"
}

func (m *MySQLDatabase) Ping(ctx context.Context) error {
	args := append(m.connArgs(), "ping")
	if err := runTool(ctx, orDefault(m.config.ProbeCommand, "mysqladmin"), args, m.env(), nil); err != nil {
		return fmt.Errorf("mysql ping failed: %w", err)
	}
	return nil
}

func (m *MySQLDatabase) connArgs() []string {
	return []string{
		fmt.Sprintf("--host=%s", m.config.Host),
		fmt.Sprintf("--port=%d", m.config.Port),
		fmt.Sprintf("--user=%s", m.config.Username),
	}
}

// The password goes through the environment so it does not show up in ps.
func (m *MySQLDatabase) env() []string {
	if m.config.Password == "" {
		return nil
	}
	return []string{fmt.Sprintf("MYSQL_PWD=%s", m.config.Password)}
}

package database

import (
	"context"
	"fmt"
	"io"

	"github.com/semmidev/dumpkeeper/internal/config"
)

type PostgreSQLDatabase struct {
	config *config.DatabaseConfig
}

func NewPostgreSQL(cfg *config.DatabaseConfig) *PostgreSQLDatabase {
	return &PostgreSQLDatabase{config: cfg}
}

func (p *PostgreSQLDatabase) Dump(ctx context.Context, w io.Writer) error {
	args := append(p.connArgs(),
		"--no-password",
		"--format=plain",
		p.config.Name,
	)
	return runTool(ctx, orDefault(p.config.DumpCommand, "pg_dump"), args, p.env(), w)
}

func (p *PostgreSQLDatabase) GetName() string {
	return p.config.Name
}

func (p *PostgreSQLDatabase) GetType() string {
	return "postgresql"
}

// Ping succeeds once the server accepts connections.
func (p *PostgreSQLDatabase) Ping(ctx context.Context) error {
	args := append(p.connArgs(), fmt.Sprintf("--dbname=%s", p.config.Name))
	if err := runTool(ctx, orDefault(p.config.ProbeCommand, "pg_isready"), args, p.env(), nil); err != nil {
		return fmt.Errorf("postgresql ping failed: %w", err)
	}
	return nil
}

func (p *PostgreSQLDatabase) connArgs() []string {
	return []string{
		fmt.Sprintf("--host=%s", p.config.Host),
		fmt.Sprintf("--port=%d", p.config.Port),
		fmt.Sprintf("--username=%s", p.config.Username),
	}
}

func (p *PostgreSQLDatabase) env() []string {
	var env []string
	if p.config.Password != "" {
		env = append(env, fmt.Sprintf("PGPASSWORD=%s", p.config.Password))
	}
	if p.config.SSLMode != "" {
		env = append(env, fmt.Sprintf("PGSSLMODE=%s", p.config.SSLMode))
	}
	return env
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

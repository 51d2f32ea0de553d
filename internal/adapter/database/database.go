package database

import (
	"fmt"

	"github.com/semmidev/dumpkeeper/internal/config"
	"github.com/semmidev/dumpkeeper/internal/domain"
)

func New(cfg *config.DatabaseConfig) (domain.Database, error) {
	switch cfg.Type {
	case "postgresql":
		return NewPostgreSQL(cfg), nil
	case "mysql":
		return NewMySQL(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

package domain

import (
	"context"
	"io"
)

type Database interface {
	// Dump writes a full logical dump of the database to w. A non-nil error
	// means the dump is unusable even if bytes were written.
	Dump(ctx context.Context, w io.Writer) error
	GetName() string
	GetType() string
	Ping(ctx context.Context) error
}

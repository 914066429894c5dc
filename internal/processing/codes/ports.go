package codes

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("short code not found")
	ErrInvalidURL = errors.New("invalid destination url")
	ErrCodeTaken  = errors.New("short code taken")
)

type RecordRepository interface {
	Insert(ctx context.Context, record *Record) error
	FindByCode(ctx context.Context, code string) (*Record, error)
	// Update applies the partial edit atomically and returns the updated
	// record. Implementations must never leave a record half-applied.
	Update(ctx context.Context, code string, fields EditFields, at time.Time) (*Record, error)
	Deactivate(ctx context.Context, code string, at time.Time) error
}

type CodeGenerator interface {
	Generate(length int) (string, error)
}

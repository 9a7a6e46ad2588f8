package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsInsufficientStock(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "insufficient stock error",
			err:  ErrInsufficientStock,
			want: true,
		},
		{
			name: "wrapped insufficient stock error",
			err:  fmt.Errorf("product product-1: %w", ErrInsufficientStock),
			want: true,
		},
		{
			name: "other error",
			err:  ErrInvalidProduct,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsInsufficientStock(tt.err)
			if got != tt.want {
				t.Errorf("IsInsufficientStock() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsCompensationFailed(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "compensation failed error",
			err:  ErrCompensationFailed,
			want: true,
		},
		{
			name: "joined compensation error",
			err:  errors.Join(ErrCompensationFailed, errors.New("increment rejected")),
			want: true,
		},
		{
			name: "plain persistence failure",
			err:  ErrPersistenceFailure,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsCompensationFailed(tt.err)
			if got != tt.want {
				t.Errorf("IsCompensationFailed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsIdempotencyConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "idempotency already exists",
			err:  ErrIdempotencyKeyAlreadyExists,
			want: true,
		},
		{
			name: "idempotency hash mismatch",
			err:  ErrIdempotencyHashMismatch,
			want: true,
		},
		{
			name: "wrapped idempotency conflict",
			err:  errors.Join(ErrIdempotencyHashMismatch, errors.New("extra context")),
			want: true,
		},
		{
			name: "non idempotency error",
			err:  ErrInsufficientStock,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsIdempotencyConflict(tt.err)
			if got != tt.want {
				t.Errorf("IsIdempotencyConflict() = %v, want %v", got, tt.want)
			}
		})
	}
}

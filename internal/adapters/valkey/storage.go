package valkey

import (
	"context"
	"fmt"
	"strings"

	"github.com/valkey-io/valkey-go"

	"github.com/upt-maps/campusmap/internal/core/ports"
)

// Storage implements ports.KVStorage using Valkey (Redis-compatible).
// Path data is durable: keys are written without a TTL.
type Storage struct {
	client valkey.Client
}

// New creates a new Valkey storage client.
func New(addr string) (*Storage, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &Storage{client: client}, nil
}

// Get retrieves a value by key. A key that was never written maps to
// ports.ErrNoData.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := s.client.Do(ctx, s.client.B().Get().Key(key).Build())
	if err := cmd.Error(); err != nil {
		if strings.Contains(err.Error(), "nil message") {
			return nil, ports.ErrNoData
		}
		return nil, err
	}
	return cmd.AsBytes()
}

// Set stores a value without expiry.
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	cmd := s.client.Do(ctx,
		s.client.B().Set().Key(key).Value(string(value)).Build(),
	)
	return cmd.Error()
}

// Delete removes a key.
func (s *Storage) Delete(ctx context.Context, key string) error {
	cmd := s.client.Do(ctx, s.client.B().Del().Key(key).Build())
	return cmd.Error()
}

// Close releases the client.
func (s *Storage) Close() {
	s.client.Close()
}

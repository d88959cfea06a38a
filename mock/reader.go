package mock

import (
	"context"

	"github.com/fwojciec/pagecut"
)

var _ pagecut.ReadingService = (*ReadingService)(nil)

// ReadingService is a mock implementation of pagecut.ReadingService.
type ReadingService struct {
	ReadFn func(ctx context.Context, rawURL string, status pagecut.StatusFunc) (*pagecut.Reading, error)
}

func (s *ReadingService) Read(ctx context.Context, rawURL string, status pagecut.StatusFunc) (*pagecut.Reading, error) {
	return s.ReadFn(ctx, rawURL, status)
}

package password

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of concurrent hash computations so that argon2's
// memory cost cannot stall unrelated requests.
type Pool struct {
	hasher *Hasher
	sem    *semaphore.Weighted
}

// NewPool wraps h. A size <= 0 means GOMAXPROCS.
func NewPool(h *Hasher, size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		hasher: h,
		sem:    semaphore.NewWeighted(int64(size)),
	}
}

// Hash runs Hasher.Hash once a slot is free. It returns ctx.Err() if ctx is
// done before a slot is acquired.
func (p *Pool) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer p.sem.Release(1)

	return p.hasher.Hash(plaintext)
}

// Verify runs Hasher.Verify once a slot is free.
func (p *Pool) Verify(ctx context.Context, plaintext, encoded string) (bool, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer p.sem.Release(1)

	return p.hasher.Verify(plaintext, encoded)
}

package metadata

import (
	"context"
	"sync"
)

// MemoryRepository is a process-local Repository used by tests and by the
// "memory" driver.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string][]byte)}
}

func (r *MemoryRepository) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte{}, v...), nil
}

func (r *MemoryRepository) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = append([]byte{}, value...)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}

func (r *MemoryRepository) List(_ context.Context) (map[string][]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string][]byte, len(r.data))
	for k, v := range r.data {
		out[k] = append([]byte{}, v...)
	}
	return out, nil
}

func (r *MemoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = make(map[string][]byte)
	return nil
}

type memoryOp struct {
	key    string
	value  []byte
	delete bool
}

type memoryTx struct {
	ops []memoryOp
}

func (t *memoryTx) Set(key string, value []byte) error {
	t.ops = append(t.ops, memoryOp{key: key, value: append([]byte{}, value...)})
	return nil
}

func (t *memoryTx) Delete(key string) error {
	t.ops = append(t.ops, memoryOp{key: key, delete: true})
	return nil
}

func (r *MemoryRepository) Batch(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx := &memoryTx{}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, op := range tx.ops {
		if op.delete {
			delete(r.data, op.key)
			continue
		}
		r.data[op.key] = op.value
	}
	return nil
}

func (r *MemoryRepository) Close() error { return nil }

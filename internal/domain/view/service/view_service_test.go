package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"anonboard/internal/pkg/counter"
	"anonboard/internal/pkg/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memViews 模拟 (viewer_id, post_id) 唯一约束
type memViews struct {
	mu   sync.Mutex
	seen map[[2]string]bool
	err  error
}

func newMemViews() *memViews {
	return &memViews{seen: make(map[[2]string]bool)}
}

func (m *memViews) InsertIfAbsent(ctx context.Context, viewerID, postID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	k := [2]string{viewerID, postID}
	if m.seen[k] {
		return false, nil
	}
	m.seen[k] = true
	return true, nil
}

func TestRecordViewIfNew(t *testing.T) {
	ctx := context.Background()

	t.Run("sequential repeat counts once", func(t *testing.T) {
		c := memstore.NewCounter().Seed(counter.PostViewCount, "p1", 0)
		l := NewViewLedger(newMemViews(), c, memstore.Transactor{})

		first, err := l.RecordViewIfNew(ctx, "u1", "p1")
		require.NoError(t, err)
		second, err := l.RecordViewIfNew(ctx, "u1", "p1")
		require.NoError(t, err)

		assert.True(t, first)
		assert.False(t, second)
		assert.Equal(t, 1, c.Get(counter.PostViewCount, "p1"))
	})

	t.Run("concurrent repeat counts once", func(t *testing.T) {
		c := memstore.NewCounter().Seed(counter.PostViewCount, "p1", 0)
		l := NewViewLedger(newMemViews(), c, memstore.Transactor{})

		var wg sync.WaitGroup
		var mu sync.Mutex
		wins := 0
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := l.RecordViewIfNew(ctx, "u1", "p1")
				assert.NoError(t, err)
				if ok {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, wins)
		assert.Equal(t, 1, c.Get(counter.PostViewCount, "p1"))
	})

	t.Run("distinct viewers each count", func(t *testing.T) {
		c := memstore.NewCounter().Seed(counter.PostViewCount, "p1", 5)
		l := NewViewLedger(newMemViews(), c, memstore.Transactor{})

		for _, u := range []string{"u1", "u2", "u3"} {
			_, err := l.RecordViewIfNew(ctx, u, "p1")
			require.NoError(t, err)
		}
		assert.Equal(t, 8, c.Get(counter.PostViewCount, "p1"))
	})

	t.Run("anonymous viewer is not recorded", func(t *testing.T) {
		c := memstore.NewCounter().Seed(counter.PostViewCount, "p1", 0)
		ok, err := NewViewLedger(newMemViews(), c, memstore.Transactor{}).RecordViewIfNew(ctx, "", "p1")
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 0, c.Get(counter.PostViewCount, "p1"))
	})

	t.Run("insert error performs no increment", func(t *testing.T) {
		c := memstore.NewCounter().Seed(counter.PostViewCount, "p1", 0)
		views := newMemViews()
		views.err = errors.New("db down")

		ok, err := NewViewLedger(views, c, memstore.Transactor{}).RecordViewIfNew(ctx, "u1", "p1")
		assert.Error(t, err)
		assert.False(t, ok)
		assert.Equal(t, 0, c.Get(counter.PostViewCount, "p1"))
	})
}

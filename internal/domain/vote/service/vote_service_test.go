package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	commentmodel "anonboard/internal/domain/comment/model"
	"anonboard/internal/domain/user/usertest"
	"anonboard/internal/domain/vote/model"
	"anonboard/internal/pkg/counter"
	"anonboard/internal/pkg/memstore"
	"anonboard/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type voteKey struct {
	voter, targetType, target string
}

// memVotes 内存投票仓储，(voter, type, target) 唯一
type memVotes struct {
	mu    sync.Mutex
	votes map[voteKey]*model.Vote
	// beforeCreate 在唯一性检查前调用，用于模拟并发插入
	beforeCreate func()
}

func newMemVotes() *memVotes {
	return &memVotes{votes: make(map[voteKey]*model.Vote)}
}

func (r *memVotes) FindForUpdate(ctx context.Context, voterID, targetType, targetID string) (*model.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.votes[voteKey{voterID, targetType, targetID}]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (r *memVotes) Create(ctx context.Context, vote *model.Vote) error {
	if hook := r.beforeCreate; hook != nil {
		r.beforeCreate = nil
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := voteKey{vote.VoterID, vote.TargetType, vote.TargetID}
	if _, ok := r.votes[k]; ok {
		return errs.Conflict("vote already exists")
	}
	vote.ID = uuid.NewString()
	cp := *vote
	r.votes[k] = &cp
	return nil
}

func (r *memVotes) UpdateValue(ctx context.Context, id string, value int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.votes {
		if v.ID == id {
			v.Value = value
			return nil
		}
	}
	return errs.NotFound("vote not found")
}

func (r *memVotes) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range r.votes {
		if v.ID == id {
			delete(r.votes, k)
			return nil
		}
	}
	return errs.NotFound("vote not found")
}

func (r *memVotes) FindValues(ctx context.Context, voterID, targetType string, ids []string) (map[string]int, error) {
	out := map[string]int{}
	for _, id := range ids {
		if v, _ := r.FindForUpdate(ctx, voterID, targetType, id); v != nil {
			out[id] = v.Value
		}
	}
	return out, nil
}

// sum 账本中某个目标的投票合计
func (r *memVotes) sum(target string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for k, v := range r.votes {
		if k.target == target {
			total += v.Value
		}
	}
	return total
}

// commentTable 从计数器读取合计，模拟重新读取评论
type commentTable struct {
	counter *memstore.Counter
	deleted map[string]bool
}

func (c *commentTable) GetByID(ctx context.Context, id string) (*commentmodel.Comment, error) {
	if id != "c1" && !c.deleted[id] {
		return nil, errs.NotFound("comment not found")
	}
	cm := &commentmodel.Comment{VoteCount: c.counter.Get(counter.CommentVoteCount, id), IsDeleted: c.deleted[id]}
	cm.ID = id
	return cm, nil
}

type fixture struct {
	votes   *memVotes
	counter *memstore.Counter
	ids     *usertest.Identity
	ledger  VoteLedger
}

func newFixture() *fixture {
	f := &fixture{
		votes:   newMemVotes(),
		counter: memstore.NewCounter().Seed(counter.CommentVoteCount, "c1", 0).Seed(counter.CommentVoteCount, "c-gone", 0),
		ids:     usertest.NewIdentity().Add("u1", "Owl_AA11").Add("u2", "Fox_BB22"),
	}
	comments := &commentTable{counter: f.counter, deleted: map[string]bool{"c-gone": true}}
	f.ledger = NewVoteLedger(f.votes, comments, f.ids, f.counter, memstore.Transactor{})
	return f
}

func (f *fixture) tally() int {
	return f.counter.Get(counter.CommentVoteCount, "c1")
}

func TestVoteStateMachine(t *testing.T) {
	ctx := context.Background()

	t.Run("same value twice removes", func(t *testing.T) {
		f := newFixture()
		first, err := f.ledger.Vote(ctx, "c1", "u1", model.Up)
		require.NoError(t, err)
		assert.Equal(t, model.OutcomeAdded, first.Outcome)
		assert.Equal(t, model.Up, *first.CurrentVote)
		assert.Equal(t, 1, first.VoteCount)

		second, err := f.ledger.Vote(ctx, "c1", "u1", model.Up)
		require.NoError(t, err)
		assert.Equal(t, model.OutcomeRemoved, second.Outcome)
		assert.Nil(t, second.CurrentVote)
		assert.Equal(t, 0, f.tally())
	})

	t.Run("opposite value changes", func(t *testing.T) {
		f := newFixture()
		_, err := f.ledger.Vote(ctx, "c1", "u1", model.Up)
		require.NoError(t, err)

		res, err := f.ledger.Vote(ctx, "c1", "u1", model.Down)
		require.NoError(t, err)
		assert.Equal(t, model.OutcomeChanged, res.Outcome)
		assert.Equal(t, model.Down, *res.CurrentVote)
		assert.Equal(t, -1, f.tally())
		assert.Equal(t, -1, res.VoteCount)
	})

	t.Run("invalid value", func(t *testing.T) {
		f := newFixture()
		_, err := f.ledger.Vote(ctx, "c1", "u1", 2)
		assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
		_, err = f.ledger.Vote(ctx, "c1", "u1", 0)
		assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
	})

	t.Run("missing target is checked before value", func(t *testing.T) {
		f := newFixture()
		_, err := f.ledger.Vote(ctx, "nope", "u1", 7)
		assert.True(t, errors.Is(err, errs.ErrNotFound))
	})

	t.Run("deleted target", func(t *testing.T) {
		f := newFixture()
		_, err := f.ledger.Vote(ctx, "c-gone", "u1", model.Up)
		assert.True(t, errors.Is(err, errs.ErrNotFound))
	})

	t.Run("banned voter", func(t *testing.T) {
		f := newFixture()
		f.ids.SetBanned("u1", true)
		_, err := f.ledger.Vote(ctx, "c1", "u1", model.Up)
		assert.True(t, errors.Is(err, errs.ErrForbidden))
		assert.Equal(t, 0, f.tally())
	})
}

func TestUnvote(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.ledger.Vote(ctx, "c1", "u1", model.Down)
	require.NoError(t, err)
	require.NoError(t, f.ledger.Unvote(ctx, "c1", "u1"))
	assert.Equal(t, 0, f.tally())

	// 幂等
	require.NoError(t, f.ledger.Unvote(ctx, "c1", "u1"))
	assert.Equal(t, 0, f.tally())
}

func TestVoteRetriesAfterLosingInsertRace(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	// 本请求读取后、插入前，同一用户的另一个请求已提交 +1
	f.votes.beforeCreate = func() {
		other := &model.Vote{VoterID: "u1", TargetType: model.TargetComment, TargetID: "c1", Value: model.Up}
		require.NoError(t, f.votes.Create(ctx, other))
		require.NoError(t, f.counter.Increment(ctx, counter.CommentVoteCount, "c1", 1))
	}

	res, err := f.ledger.Vote(ctx, "c1", "u1", model.Down)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeChanged, res.Outcome)
	assert.Equal(t, -1, f.tally())
	assert.Equal(t, f.votes.sum("c1"), f.tally())
}

func TestConcurrentVotersSumUp(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	const n = 50
	want := 0
	for i := 0; i < n; i++ {
		f.ids.Add(fmt.Sprintf("voter-%d", i), "Anon")
		if i%3 == 0 {
			want--
		} else {
			want++
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value := model.Up
			if i%3 == 0 {
				value = model.Down
			}
			_, err := f.ledger.Vote(ctx, "c1", fmt.Sprintf("voter-%d", i), value)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, want, f.tally())
	assert.Equal(t, f.votes.sum("c1"), f.tally())
}

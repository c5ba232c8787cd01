package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"anonboard/internal/domain/post/model"
	"anonboard/internal/domain/user/usertest"
	"anonboard/internal/pkg/counter"
	"anonboard/internal/pkg/memstore"
	"anonboard/internal/pkg/mutability"
	"anonboard/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *model.Post) error {
	args := m.Called(ctx, post)
	if post.ID == "" {
		post.ID = "p-new"
	}
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, q model.ListQuery, offset, limit int) ([]model.Post, int64, error) {
	args := m.Called(ctx, q, offset, limit)
	return args.Get(0).([]model.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) UpdateContent(ctx context.Context, id, content string) error {
	args := m.Called(ctx, id, content)
	return args.Error(0)
}

func (m *MockPostRepository) MarkDeleted(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockViewLedger struct {
	mock.Mock
}

func (m *MockViewLedger) RecordViewIfNew(ctx context.Context, viewerID, postID string) (bool, error) {
	args := m.Called(ctx, viewerID, postID)
	return args.Bool(0), args.Error(1)
}

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, data, contentType)
	return args.String(0), args.Error(1)
}

var t0 = time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	repo    *MockPostRepository
	views   *MockViewLedger
	blobs   *MockBlobStore
	ids     *usertest.Identity
	counter *memstore.Counter
	clock   time.Time
}

func newFixture() *fixture {
	return &fixture{
		repo:    new(MockPostRepository),
		views:   new(MockViewLedger),
		blobs:   new(MockBlobStore),
		ids:     usertest.NewIdentity().Add("author", "Seeker_AB12").Add("reader", "Reader_ZZ99"),
		counter: memstore.NewCounter().Seed(counter.UserTotalPosts, "author", 0),
		clock:   t0,
	}
}

func (f *fixture) service(withBlobs bool) PostService {
	guard := mutability.NewGuard(10 * time.Minute).WithClock(func() time.Time { return f.clock })
	limits := Limits{MaxTags: 5, FreePostLimit: 3}
	if withBlobs {
		return NewPostService(f.repo, f.views, f.ids, f.counter, memstore.Transactor{}, guard, f.blobs, limits)
	}
	return NewPostService(f.repo, f.views, f.ids, f.counter, memstore.Transactor{}, guard, nil, limits)
}

func existing(id string) *model.Post {
	p := &model.Post{
		AuthorID:      "author",
		AuthorName:    "Seeker_AB12",
		Title:         "Exam schedule",
		Content:       "Does anyone know when finals start?",
		EditableUntil: t0.Add(10 * time.Minute),
	}
	p.ID = id
	p.CreatedAt = t0
	return p
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("stamps deadline and normalizes tags", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Post) bool {
			return p.AuthorID == "author" && p.AuthorName == "Seeker_AB12"
		})).Return(nil)

		resp, err := f.service(false).CreatePost(ctx, "author", CreatePostInput{
			Title:   "  Library hours <b>changed</b> ",
			Content: "The main library now closes at 9pm on weekdays.",
			Tags:    []string{" News ", "campus", "news", "", "a", "b", "c", "d"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Library hours changed", resp.Title)
		assert.Equal(t, []string{"news", "campus", "a", "b", "c"}, []string(resp.Tags))
		assert.Equal(t, t0.Add(10*time.Minute), resp.EditableUntil)
		assert.True(t, resp.CanEdit)
		assert.Equal(t, int64(600), resp.EditTimeRemainingSeconds)
		assert.Equal(t, 1, f.counter.Get(counter.UserTotalPosts, "author"))
	})

	t.Run("free author at the limit is forbidden", func(t *testing.T) {
		f := newFixture()
		f.ids.SetTotalPosts("author", 3)
		f.blobs.On("Store", mock.Anything, mock.Anything, mock.Anything).Return("https://cdn/x.png", nil)

		_, err := f.service(true).CreatePost(ctx, "author", CreatePostInput{
			Title:   "Fourth post today",
			Content: "Free accounts stop at three posts.",
			Image:   &Image{Data: []byte("png-bytes"), ContentType: "image/png"},
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrForbidden))
		assert.Contains(t, err.Error(), "3 posts")
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.blobs.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, 0, f.counter.Get(counter.UserTotalPosts, "author"))
	})

	t.Run("free author below the limit", func(t *testing.T) {
		f := newFixture()
		f.ids.SetTotalPosts("author", 2)
		f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		_, err := f.service(false).CreatePost(ctx, "author", CreatePostInput{Title: "Third post here", Content: "Still inside the free quota."})
		require.NoError(t, err)
		assert.Equal(t, 1, f.counter.Get(counter.UserTotalPosts, "author"))
	})

	t.Run("premium author is unlimited", func(t *testing.T) {
		f := newFixture()
		f.ids.SetTotalPosts("author", 50)
		f.ids.SetPremium("author", true)
		f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		_, err := f.service(false).CreatePost(ctx, "author", CreatePostInput{Title: "Fifty first post", Content: "Premium accounts have no cap."})
		require.NoError(t, err)
	})

	t.Run("failed insert leaves the total alone", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

		_, err := f.service(false).CreatePost(ctx, "author", CreatePostInput{Title: "Hello world", Content: "long enough content"})
		require.Error(t, err)
		assert.Equal(t, 0, f.counter.Get(counter.UserTotalPosts, "author"))
	})

	t.Run("banned author is forbidden", func(t *testing.T) {
		f := newFixture()
		f.ids.SetBanned("author", true)

		_, err := f.service(false).CreatePost(ctx, "author", CreatePostInput{Title: "Hello world", Content: "long enough content"})
		assert.True(t, errors.Is(err, errs.ErrForbidden))
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("title too short", func(t *testing.T) {
		f := newFixture()
		_, err := f.service(false).CreatePost(ctx, "author", CreatePostInput{Title: "Hi", Content: "long enough content"})
		assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
	})

	t.Run("image goes through the blob store", func(t *testing.T) {
		f := newFixture()
		f.blobs.On("Store", mock.Anything, []byte("png-bytes"), "image/png").Return("https://cdn/x.png", nil)
		f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service(true).CreatePost(ctx, "author", CreatePostInput{
			Title:   "Lost cat near dorms",
			Content: "Grey cat with a blue collar, answers to Miso.",
			Image:   &Image{Data: []byte("png-bytes"), ContentType: "image/png"},
		})
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/x.png", resp.ImageURL)
	})

	t.Run("image without blob store", func(t *testing.T) {
		f := newFixture()
		_, err := f.service(false).CreatePost(ctx, "author", CreatePostInput{
			Title:   "Lost cat near dorms",
			Content: "Grey cat with a blue collar, answers to Miso.",
			Image:   &Image{Data: []byte("x"), ContentType: "image/png"},
		})
		assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
	})
}

func TestGetPost(t *testing.T) {
	ctx := context.Background()

	t.Run("first view bumps the returned count", func(t *testing.T) {
		f := newFixture()
		p := existing("p1")
		p.ViewCount = 4
		f.repo.On("GetByID", mock.Anything, "p1").Return(p, nil)
		f.views.On("RecordViewIfNew", mock.Anything, "reader", "p1").Return(true, nil)

		resp, err := f.service(false).GetPost(ctx, "p1", "reader")
		require.NoError(t, err)
		assert.Equal(t, 5, resp.ViewCount)
		assert.False(t, resp.CanEdit)
		assert.False(t, resp.IsAuthor)
	})

	t.Run("deleted post is not found", func(t *testing.T) {
		f := newFixture()
		p := existing("p1")
		p.IsDeleted = true
		f.repo.On("GetByID", mock.Anything, "p1").Return(p, nil)

		_, err := f.service(false).GetPost(ctx, "p1", "reader")
		assert.True(t, errors.Is(err, errs.ErrNotFound))
		f.views.AssertNotCalled(t, "RecordViewIfNew", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("view failure still returns the post", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByID", mock.Anything, "p1").Return(existing("p1"), nil)
		f.views.On("RecordViewIfNew", mock.Anything, "reader", "p1").Return(false, errors.New("timeout"))

		resp, err := f.service(false).GetPost(ctx, "p1", "reader")
		require.NoError(t, err)
		assert.Equal(t, 0, resp.ViewCount)
	})
}

func TestEditPost(t *testing.T) {
	ctx := context.Background()
	body := "Updated: finals start on December 10th."

	t.Run("one second before deadline", func(t *testing.T) {
		f := newFixture()
		f.clock = t0.Add(10*time.Minute - time.Second)
		f.repo.On("GetByID", mock.Anything, "p1").Return(existing("p1"), nil)
		f.repo.On("UpdateContent", mock.Anything, "p1", body).Return(nil)

		resp, err := f.service(false).EditPost(ctx, "p1", "author", body)
		require.NoError(t, err)
		assert.True(t, resp.IsEdited)
		assert.Equal(t, t0.Add(10*time.Minute), resp.EditableUntil)
	})

	t.Run("second edit keeps the original deadline", func(t *testing.T) {
		f := newFixture()
		p := existing("p1")
		f.repo.On("GetByID", mock.Anything, "p1").Return(p, nil)
		f.repo.On("UpdateContent", mock.Anything, "p1", mock.Anything).Return(nil)
		svc := f.service(false)

		f.clock = t0.Add(time.Minute)
		first, err := svc.EditPost(ctx, "p1", "author", body)
		require.NoError(t, err)
		assert.Equal(t, t0.Add(10*time.Minute), first.EditableUntil)
		assert.Equal(t, int64(540), first.EditTimeRemainingSeconds)

		f.clock = t0.Add(9*time.Minute + 59*time.Second)
		second, err := svc.EditPost(ctx, "p1", "author", "Updated again: finals start on December 11th.")
		require.NoError(t, err)
		assert.Equal(t, t0.Add(10*time.Minute), second.EditableUntil)
		assert.Equal(t, int64(1), second.EditTimeRemainingSeconds)
		assert.True(t, second.CanEdit)
		f.repo.AssertNumberOfCalls(t, "UpdateContent", 2)
	})

	t.Run("one second after deadline", func(t *testing.T) {
		f := newFixture()
		f.clock = t0.Add(10*time.Minute + time.Second)
		f.repo.On("GetByID", mock.Anything, "p1").Return(existing("p1"), nil)

		_, err := f.service(false).EditPost(ctx, "p1", "author", body)
		assert.True(t, errors.Is(err, errs.ErrForbidden))
		f.repo.AssertNotCalled(t, "UpdateContent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("non author inside window", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByID", mock.Anything, "p1").Return(existing("p1"), nil)

		_, err := f.service(false).EditPost(ctx, "p1", "reader", body)
		assert.True(t, errors.Is(err, errs.ErrForbidden))
	})

	t.Run("content too long", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByID", mock.Anything, "p1").Return(existing("p1"), nil)

		_, err := f.service(false).EditPost(ctx, "p1", "author", strings.Repeat("x", ContentMax+1))
		assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
	})
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()

	t.Run("author may delete after the edit window", func(t *testing.T) {
		f := newFixture()
		f.clock = t0.Add(24 * time.Hour)
		f.repo.On("GetByID", mock.Anything, "p1").Return(existing("p1"), nil)
		f.repo.On("MarkDeleted", mock.Anything, "p1").Return(true, nil)

		assert.NoError(t, f.service(false).DeletePost(ctx, "p1", "author"))
		f.repo.AssertExpectations(t)
	})

	t.Run("others may not", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByID", mock.Anything, "p1").Return(existing("p1"), nil)

		err := f.service(false).DeletePost(ctx, "p1", "reader")
		assert.True(t, errors.Is(err, errs.ErrForbidden))
	})
}

func TestSharePost(t *testing.T) {
	f := newFixture()
	f.counter.Seed(counter.PostShareCount, "p1", 2)
	f.repo.On("GetByID", mock.Anything, "p1").Return(existing("p1"), nil)

	require.NoError(t, f.service(false).SharePost(context.Background(), "p1"))
	require.NoError(t, f.service(false).SharePost(context.Background(), "p1"))
	assert.Equal(t, 4, f.counter.Get(counter.PostShareCount, "p1"))
}

func TestListPostsNormalizesQuery(t *testing.T) {
	f := newFixture()
	f.repo.On("List", mock.Anything, model.ListQuery{Tag: "exams", Sort: model.SortLatest}, 0, 10).
		Return([]model.Post{*existing("p1")}, int64(1), nil)

	list, total, err := f.service(false).ListPosts(context.Background(), model.ListQuery{Tag: " Exams ", Sort: "bogus"}, 0, 10, "author")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsAuthor)
}

package entity_test

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-entity-manager/entity"
	"github.com/goliatone/go-entity-manager/storage"
)

func TestStaticRouterFallsBackWithoutParents(t *testing.T) {
	fallback := newMockAdapter(nil)
	r := entity.NewStaticRouter(fallback, []entity.ParentRoute{
		{Chain: []string{"books"}, Path: "/books/{id}/chapters"},
	}, nil)

	res, err := r.Resolve("list", nil)
	require.NoError(t, err)
	assert.Same(t, storage.Adapter(fallback), res.Storage)
	assert.Empty(t, res.Path)
}

func TestStaticRouterMatchesChainTail(t *testing.T) {
	fallback := newMockAdapter(nil)
	r := entity.NewStaticRouter(fallback, []entity.ParentRoute{
		{Chain: []string{"books"}, Path: "/books/{id}/chapters"},
	}, nil)

	// The route chain matches the tail, so deeper nesting still routes.
	res, err := r.Resolve("list", entity.ParentContext{
		{Entity: "libraries", ID: "9"},
		{Entity: "books", ID: "42"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/books/42/chapters", res.Path)

	// A non-matching tail falls back.
	res, err = r.Resolve("list", entity.ParentContext{{Entity: "authors", ID: "1"}})
	require.NoError(t, err)
	assert.Empty(t, res.Path)
}

func TestStaticRouterPrefersLongestChain(t *testing.T) {
	fallback := newMockAdapter(nil)
	r := entity.NewStaticRouter(fallback, []entity.ParentRoute{
		{Chain: []string{"books"}, Path: "/books/{id}/chapters"},
		{Chain: []string{"shelves", "books"}, Path: "/shelves/{shelves}/books/{books}/chapters"},
	}, nil)

	res, err := r.Resolve("list", entity.ParentContext{
		{Entity: "shelves", ID: "3"},
		{Entity: "books", ID: "42"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/shelves/3/books/42/chapters", res.Path)
}

func TestStaticRouterExpandsEntityPlaceholders(t *testing.T) {
	fallback := newMockAdapter(nil)
	r := entity.NewStaticRouter(fallback, []entity.ParentRoute{
		{Chain: []string{"users", "posts"}, Path: "/users/{users}/posts/{posts}/comments"},
	}, nil)

	res, err := r.Resolve("get", entity.ParentContext{
		{Entity: "users", ID: "u1"},
		{Entity: "posts", ID: "p2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/users/u1/posts/p2/comments", res.Path)
}

func TestStaticRouterCarriesParamMap(t *testing.T) {
	fallback := newMockAdapter(nil)
	r := entity.NewStaticRouter(fallback, []entity.ParentRoute{
		{Chain: []string{"books"}, Params: map[string]string{"author": "author_id"}},
	}, nil)

	res, err := r.Resolve("list", entity.ParentContext{{Entity: "books", ID: "1"}})
	require.NoError(t, err)

	opts := res.CallOptions()
	renamed := opts.RenameFilters(map[string]any{"author": "7", "year": 1925})
	assert.Equal(t, map[string]any{"author_id": "7", "year": 1925}, renamed)
}

func TestStaticRouterMemoizesFactory(t *testing.T) {
	fallback := newMockAdapter(nil)
	alt := newMockAdapter(nil)
	var built atomic.Int32
	r := entity.NewStaticRouter(fallback, []entity.ParentRoute{
		{
			Chain: []string{"books"},
			Storage: func() (storage.Adapter, error) {
				built.Add(1)
				return alt, nil
			},
		},
	}, nil)

	parents := entity.ParentContext{{Entity: "books", ID: "1"}}
	for i := 0; i < 3; i++ {
		res, err := r.Resolve("list", parents)
		require.NoError(t, err)
		assert.Same(t, storage.Adapter(alt), res.Storage)
	}
	assert.Equal(t, int32(1), built.Load(), "the factory runs once per route")
}

func TestStaticRouterFactoryErrors(t *testing.T) {
	boom := errors.New("dial failed")
	r := entity.NewStaticRouter(newMockAdapter(nil), []entity.ParentRoute{
		{Chain: []string{"books"}, Storage: func() (storage.Adapter, error) { return nil, boom }},
		{Chain: []string{"authors"}, Storage: func() (storage.Adapter, error) { return nil, nil }},
	}, nil)

	_, err := r.Resolve("list", entity.ParentContext{{Entity: "books", ID: "1"}})
	assert.ErrorIs(t, err, boom)

	// The error is sticky across calls.
	_, err = r.Resolve("list", entity.ParentContext{{Entity: "books", ID: "1"}})
	assert.ErrorIs(t, err, boom)

	// A factory returning a nil adapter without an error is rejected.
	_, err = r.Resolve("list", entity.ParentContext{{Entity: "authors", ID: "2"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned nil")
}

func TestRouterFunc(t *testing.T) {
	alt := newMockAdapter(nil)
	r := entity.RouterFunc(func(method string, parents entity.ParentContext) (entity.Resolution, error) {
		if method == "delete" {
			return entity.Resolution{}, errors.New("deletes are routed nowhere")
		}
		return entity.Resolution{Storage: alt}, nil
	})

	res, err := r.Resolve("list", nil)
	require.NoError(t, err)
	assert.Same(t, storage.Adapter(alt), res.Storage)

	_, err = r.Resolve("delete", nil)
	assert.Error(t, err)
}

package catalog

import (
	"context"
	"testing"

	"Tracklab/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	name    model.ReferenceSource
	results []Result
	calls   int
	err     error
}

func (f *fakeSource) Name() model.ReferenceSource { return f.name }

func (f *fakeSource) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > limit {
		return f.results[:limit], nil
	}
	return f.results, nil
}

func TestSearchDispatchesToSource(t *testing.T) {
	src := &fakeSource{
		name: model.ReferenceSpotify,
		results: []Result{
			{Title: "Karma Police", Artist: "Radiohead", URL: "https://open.spotify.com/track/abc"},
		},
	}
	searcher := NewSearcher(nil, src)

	results, err := searcher.Search(context.Background(), model.ReferenceSpotify, "karma police")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Karma Police", results[0].Title)
	assert.Equal(t, 1, src.calls)
}

func TestSearchUnknownSource(t *testing.T) {
	searcher := NewSearcher(nil, &fakeSource{name: model.ReferenceSpotify})

	_, err := searcher.Search(context.Background(), model.ReferenceYouTube, "karma police")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestSearchCapsResultCount(t *testing.T) {
	src := &fakeSource{name: model.ReferenceYouTube}
	for i := 0; i < 10; i++ {
		src.results = append(src.results, Result{Title: "hit", URL: "https://youtube.com/watch?v=x"})
	}
	searcher := NewSearcher(nil, src)

	results, err := searcher.Search(context.Background(), model.ReferenceYouTube, "hits")
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

package urlstrategy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streetfix/report-ingest/pkg/reportingest/urlstrategy"
)

func TestPublicBaseStrategy(t *testing.T) {
	ctx := context.Background()

	t.Run("joins base and key", func(t *testing.T) {
		s := urlstrategy.NewPublicBaseStrategy("https://img.example.com")
		url, err := s.ImageURL(ctx, "abc.png")
		require.NoError(t, err)
		assert.Equal(t, "https://img.example.com/abc.png", url)
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		s := urlstrategy.NewPublicBaseStrategy("https://img.example.com/")
		url, err := s.ImageURL(ctx, "abc.png")
		require.NoError(t, err)
		assert.Equal(t, "https://img.example.com/abc.png", url)
	})

	t.Run("fails without a base", func(t *testing.T) {
		s := urlstrategy.NewPublicBaseStrategy("")
		_, err := s.ImageURL(ctx, "abc.png")
		assert.Error(t, err)
	})
}

type fakePresigner struct {
	lastKey string
}

func (p *fakePresigner) GetDownloadURL(ctx context.Context, objectKey, downloadFilename string) (string, error) {
	p.lastKey = objectKey
	return "https://signed.example.com/" + objectKey + "?sig=x", nil
}

func TestStorageDelegatedStrategy(t *testing.T) {
	presigner := &fakePresigner{}
	s := urlstrategy.NewStorageDelegatedStrategy(presigner)

	url, err := s.ImageURL(context.Background(), "abc.png")
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example.com/abc.png?sig=x", url)
	assert.Equal(t, "abc.png", presigner.lastKey)
}

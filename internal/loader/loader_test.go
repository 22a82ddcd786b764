package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screamdb/etl-core/internal/core"
)

func TestCountingLoaderCountsRecords(t *testing.T) {
	l := NewCountingLoader(nil)

	stats, err := l.Load(context.Background(),
		[]core.Film{{TMDBID: 1, Title: "A"}, {TMDBID: 2, Title: "B"}},
		[]core.MatchResult{{EntityID: 1, SecondaryID: "vid1"}})
	require.NoError(t, err)

	assert.Equal(t, LoadStats{Inserted: 2}, stats)
}

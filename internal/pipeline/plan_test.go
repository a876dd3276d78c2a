package pipeline

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-curator/internal/domain"
	"photo-curator/internal/logger"
)

func TestPlan_MovesNothing(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	stageAt := func(name string, tags domain.Tags, age time.Duration) string {
		p := f.stage(t, name, name, tags)
		mt := base.Add(age)
		require.NoError(t, os.Chtimes(p, mt, mt))
		return p
	}
	good := stageAt("beach-1.jpg", captured("2017:03:05 14:22:01"), 0)
	broken := stageAt("broken.jpg", domain.Tags{}, time.Minute)
	taken := stageAt("dog-1.jpg", captured("2018:12:24 10:00:00"), 2*time.Minute)
	require.NoError(t, os.MkdirAll(f.path("2018", "12", "24"), 0o755))
	require.NoError(t, os.WriteFile(f.path("2018", "12", "24", "dog-1.jpg"), []byte("older"), 0o644))

	plan, err := f.imp.Plan(context.Background())
	require.NoError(t, err)
	require.Len(t, plan, 3)

	assert.Equal(t, good, plan[0].Source)
	assert.Equal(t, f.path("2017", "3", "5", "beach-1.jpg"), plan[0].Destination)
	assert.NoError(t, plan[0].Err)

	assert.Equal(t, broken, plan[1].Source)
	assert.Equal(t, f.path("_failed", "broken.jpg"), plan[1].Destination)
	assert.Equal(t, domain.KindMetadataUnreadable, domain.KindOf(plan[1].Err))

	assert.Equal(t, taken, plan[2].Source)
	assert.Equal(t, f.path("_failed", "dog-1.jpg"), plan[2].Destination)
	assert.Equal(t, domain.KindMoveFailed, domain.KindOf(plan[2].Err))
	assert.ErrorIs(t, plan[2].Err, os.ErrExist)

	for _, p := range []string{good, broken, taken} {
		assert.FileExists(t, p)
	}
	assert.NoDirExists(t, f.path("2017"))
	assert.NoDirExists(t, f.path("_thumbs"))
	assert.Empty(t, f.thumbs.resized)
	assert.Zero(t, f.catalog.upserts)
}

func TestPlan_NeedsNoCatalog(t *testing.T) {
	f := newFixture(t)
	f.stage(t, "beach-1.jpg", "x", captured("2017:03:05 14:22:01"))

	imp := New(f.root, f.meta, nil, nil, WithLogger(logger.Discard()))
	plan, err := imp.Plan(context.Background())
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, f.path("2017", "3", "5", "beach-1.jpg"), plan[0].Destination)
}

func TestPlan_Cancelled(t *testing.T) {
	f := newFixture(t)
	f.stage(t, "beach-1.jpg", "x", captured("2017:03:05 14:22:01"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan, err := f.imp.Plan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, plan)
}

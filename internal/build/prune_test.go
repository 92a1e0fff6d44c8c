package build

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/tutorialbuilder/internal/testutil"
)

func prunedSite(t *testing.T) *testutil.Site {
	t.Helper()
	site := testutil.NewSite(t)
	site.AddUnit("foo", "# Foo\n", `{"title":"Foo"}`)
	site.WriteSource("foo/img/keep.png", "k")
	site.WriteSource("img/logo.png", "logo")
	site.WriteSource("lib/app.js", "app")
	site.WriteSource("drafts/notes.txt", "not a unit")
	return site
}

func TestPrune_RemovesOrphansOnly(t *testing.T) {
	site := prunedSite(t)
	b := newBuilder(t, site)
	build(t, b)

	testutil.WriteFile(t, site.DestPath("removed-unit", "index.html"), "old page")
	testutil.WriteFile(t, site.DestPath("drafts", "index.html"), "stale output")
	testutil.WriteFile(t, site.DestPath("foo", "img", "old.png"), "old")
	testutil.WriteFile(t, site.DestPath("img", "old", "x.png"), "old")
	testutil.WriteFile(t, site.DestPath("lib", "old.js"), "old")
	testutil.WriteFile(t, site.DestPath("robots.txt"), "root files are left alone")

	res, err := b.Prune(context.Background(), false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"removed-unit", "drafts", "foo/img/old.png", "img/old", "lib/old.js"}, res.Removed)
	assert.False(t, res.DryRun)

	site.Dest().
		AssertNotExists("removed-unit").
		AssertNotExists("drafts").
		AssertNotExists("foo/img/old.png").
		AssertNotExists("img/old").
		AssertNotExists("lib/old.js").
		AssertFileExists("index.html").
		AssertFileExists("robots.txt").
		AssertFileExists("foo/index.html").
		AssertFileExists("foo/img/keep.png").
		AssertFileExists("img/logo.png").
		AssertFileExists("lib/app.js")
}

func TestPrune_DryRunRemovesNothing(t *testing.T) {
	site := prunedSite(t)
	b := newBuilder(t, site)
	build(t, b)
	testutil.WriteFile(t, site.DestPath("removed-unit", "index.html"), "old page")

	res, err := b.Prune(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Equal(t, []string{"removed-unit"}, res.Removed)
	site.Dest().AssertFileExists("removed-unit/index.html")
}

func TestPrune_KeepList(t *testing.T) {
	site := prunedSite(t)
	site.Cfg.Build.Keep = []string{"legacy/index.html", "lib/analytics.js"}
	b := newBuilder(t, site)
	build(t, b)
	testutil.WriteFile(t, site.DestPath("legacy", "index.html"), "kept")
	testutil.WriteFile(t, site.DestPath("lib", "analytics.js"), "kept")

	res, err := b.Prune(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, res.Removed)
	site.Dest().AssertFileExists("legacy/index.html").AssertFileExists("lib/analytics.js")
}

func TestPrune_MissingDestination(t *testing.T) {
	site := testutil.NewSite(t)
	res, err := newBuilder(t, site).Prune(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, res.Removed)
}

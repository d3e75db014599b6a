package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultCatalog_OrderAndPaths(t *testing.T) {
	want := []string{
		"/employeedashboard",
		"/profile",
		"/performance",
		"/project-status",
		"/announcements",
		"/attendances",
		"/notifications",
		"/leave-management",
		"/payroll",
	}

	entries := Default.Entries()
	require.Len(t, entries, len(want))
	for i, e := range entries {
		assert.Equal(t, want[i], e.Path, "entry %d", i)
		assert.NotEmpty(t, e.Icon, "entry %d has no icon", i)
	}
	assert.Equal(t, "Dashboard", entries[0].Name)
	assert.Equal(t, "Leave Management", entries[7].Name)
}

func TestNewCatalog_RejectsDuplicatePath(t *testing.T) {
	_, err := NewCatalog(
		Entry{Name: "A", Icon: IconHome, Path: "/a"},
		Entry{Name: "B", Icon: IconUser, Path: "/a"},
	)
	require.ErrorIs(t, err, ErrDuplicatePath)
}

func TestNewCatalog_RejectsEmptyFields(t *testing.T) {
	_, err := NewCatalog(Entry{Name: "A", Path: ""})
	require.ErrorIs(t, err, ErrEmptyPath)

	_, err = NewCatalog(Entry{Name: "  ", Path: "/a"})
	require.ErrorIs(t, err, ErrEmptyName)
}

func TestEntries_ReturnsCopy(t *testing.T) {
	entries := Default.Entries()
	entries[0].Name = "Hacked"

	assert.Equal(t, "Dashboard", Default.Entries()[0].Name)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Profile", Default.Title("/profile", MatchExact))
	assert.Equal(t, "Payroll", Default.Title("/payroll", MatchExact))
	assert.Equal(t, DefaultTitle, Default.Title("/unknown", MatchExact))
	assert.Equal(t, DefaultTitle, Default.Title("", MatchExact))
}

func TestActive_ExactDoesNotMatchSubpages(t *testing.T) {
	_, idx, ok := Default.Active("/profile/edit", MatchExact)
	assert.False(t, ok)
	assert.Equal(t, -1, idx)
}

func TestActive_LongestPrefix(t *testing.T) {
	c := MustCatalog(
		Entry{Name: "Root", Icon: IconHome, Path: "/"},
		Entry{Name: "Profile", Icon: IconUser, Path: "/profile"},
		Entry{Name: "Profile Docs", Icon: IconBriefcase, Path: "/profile/documents"},
	)

	e, idx, ok := c.Active("/profile/documents/pan", MatchLongestPrefix)
	require.True(t, ok)
	assert.Equal(t, "Profile Docs", e.Name)
	assert.Equal(t, 2, idx)

	e, _, ok = c.Active("/profile/edit", MatchLongestPrefix)
	require.True(t, ok)
	assert.Equal(t, "Profile", e.Name)

	// "/profiles" is not under "/profile"; only the root entry covers it.
	e, _, ok = c.Active("/profiles", MatchLongestPrefix)
	require.True(t, ok)
	assert.Equal(t, "Root", e.Name)
}

func TestActive_LongestPrefixWithoutRoot(t *testing.T) {
	_, _, ok := Default.Active("/profiles", MatchLongestPrefix)
	assert.False(t, ok)

	e, _, ok := Default.Active("/leave-management/new", MatchLongestPrefix)
	require.True(t, ok)
	assert.Equal(t, "Leave Management", e.Name)
}

func TestParseMatchPolicy(t *testing.T) {
	p, err := ParseMatchPolicy("")
	require.NoError(t, err)
	assert.Equal(t, MatchExact, p)

	p, err = ParseMatchPolicy(" Prefix ")
	require.NoError(t, err)
	assert.Equal(t, MatchLongestPrefix, p)

	_, err = ParseMatchPolicy("regex")
	require.Error(t, err)
}

// Property: an unmatched path falls back to the default title, exact matching
// only ever returns the current path, and prefix matching returns the longest
// covering entry.
func TestActive_Property(t *testing.T) {
	segment := rapid.StringMatching(`/[a-c]{1,2}(/[a-c]{1,2}){0,2}/?`)

	rapid.Check(t, func(rt *rapid.T) {
		paths := rapid.SliceOfNDistinct(segment, 1, 8, func(s string) string { return s }).Draw(rt, "paths")
		entries := make([]Entry, len(paths))
		for i, p := range paths {
			entries[i] = Entry{Name: "entry" + p, Icon: IconHome, Path: p}
		}
		c, err := NewCatalog(entries...)
		if err != nil {
			rt.Fatalf("catalog: %v", err)
		}

		current := rapid.OneOf(segment, rapid.SampledFrom(paths)).Draw(rt, "current")
		policy := rapid.SampledFrom([]MatchPolicy{MatchExact, MatchLongestPrefix}).Draw(rt, "policy")

		e, _, ok := c.Active(current, policy)
		if !ok && c.Title(current, policy) != DefaultTitle {
			rt.Fatalf("unmatched path %q has title %q", current, c.Title(current, policy))
		}
		if _, listed := c.Find(current); !ok && listed {
			rt.Fatalf("catalog path %q did not match itself", current)
		}
		if ok && policy == MatchExact && e.Path != current {
			rt.Fatalf("exact policy matched %q for %q", e.Path, current)
		}
		if ok && policy == MatchLongestPrefix {
			for _, other := range entries {
				if pathWithin(current, other.Path) && len(other.Path) > len(e.Path) {
					rt.Fatalf("%q is a longer match than %q for %q", other.Path, e.Path, current)
				}
			}
		}
	})
}

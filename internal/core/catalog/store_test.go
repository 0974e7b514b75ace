package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/cpl/internal/core/models"
)

var epoch = time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC)

// newTestStore returns a store with a stepping clock and the given ids handed
// out in order
func newTestStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	tick := 0
	next := 0
	return New(filepath.Join(t.TempDir(), FileName),
		WithClock(func() time.Time {
			tick++
			return epoch.Add(time.Duration(tick) * time.Minute)
		}),
		WithIDGenerator(func() string {
			require.Less(t, next, len(ids), "ran out of test ids")
			id := ids[next]
			next++
			return id
		}),
	)
}

func input(name string) models.PatternInput {
	return models.PatternInput{
		Name:     name,
		Type:     models.PatternTypeSolution,
		Context:  "context for " + name,
		Solution: "solution for " + name,
	}
}

func TestLoad_MissingAndBlank(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nested", FileName))

	cat, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, cat.Patterns)

	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("  \n\t\n"), 0644))
	cat, err = s.Load()
	require.NoError(t, err)
	assert.NotNil(t, cat.Patterns)
	assert.Empty(t, cat.Patterns)
}

func TestLoad_Malformed(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, os.WriteFile(s.Path(), []byte("patterns: [unclosed"), 0644))

	_, err := s.Load()
	assert.Error(t, err)
}

func TestLoad_UnreadableIsError(t *testing.T) {
	// a directory where the file should be
	dir := t.TempDir()
	s := New(dir)
	_, err := s.Load()
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), FileName))

	original := &models.PatternCatalog{Patterns: []models.Pattern{
		{
			ID:             "a1",
			Name:           "Retry with backoff",
			Type:           models.PatternTypeSolution,
			Context:        "Flaky network calls",
			Problem:        "Requests fail intermittently",
			Solution:       "Exponential backoff with jitter",
			Example:        "retry.Do(ctx, fn)",
			ExamplePrompt:  "Add retries to the client",
			Related:        []string{"Circuit breaker"},
			Tags:           []string{"http", "resilience"},
			SourceSessions: []string{"sess-1"},
			CreatedAt:      epoch,
			UpdatedAt:      epoch,
		},
		{
			ID:        "b2",
			Name:      "Table tests",
			Type:      models.PatternTypeCode,
			Context:   "Go tests",
			Solution:  "Use a slice of cases",
			CreatedAt: epoch.Add(time.Hour),
			UpdatedAt: epoch.Add(time.Hour),
		},
	}}

	require.NoError(t, s.Save(original))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, original.Patterns, loaded.Patterns)
}

func TestCreate(t *testing.T) {
	s := newTestStore(t, "11111111-aaaa", "22222222-bbbb")

	p, err := s.Create(input("First"), WithSourceSession("sess-1"))
	require.NoError(t, err)
	assert.Equal(t, "11111111-aaaa", p.ID)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	assert.Equal(t, []string{"sess-1"}, p.SourceSessions)

	_, err = s.Create(input("Second"))
	require.NoError(t, err)

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "First", list[0].Name)
	assert.Equal(t, "Second", list[1].Name)
}

func TestCreate_DefaultIDsAreUUIDs(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), FileName))

	a, err := s.Create(input("A"))
	require.NoError(t, err)
	b, err := s.Create(input("B"))
	require.NoError(t, err)

	assert.Len(t, a.ID, 36)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCreate_ValidationError(t *testing.T) {
	s := newTestStore(t)

	bad := input("x")
	bad.Solution = "  "
	_, err := s.Create(bad)

	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "solution", verr.Field)

	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr), "nothing should be written")
}

func TestCreate_DuplicateNamesCoexist(t *testing.T) {
	s := newTestStore(t, "id-1", "id-2", "id-3")

	for _, name := range []string{"Foo", "foo", "Foo"} {
		_, err := s.Create(input(name))
		require.NoError(t, err)
	}

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"id-1", "id-2", "id-3"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestResolve_EmptyIdentifier(t *testing.T) {
	s := newTestStore(t, "abc")

	p, err := s.Resolve("")
	assert.NoError(t, err)
	assert.Nil(t, p)

	_, err = s.Create(input("Only"))
	require.NoError(t, err)

	p, err = s.Resolve("")
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestResolve_Tiers(t *testing.T) {
	s := newTestStore(t,
		"abc12345-0000",
		"abc99999-0000",
		"def00000-0000",
		"abc",
	)
	for _, name := range []string{"alpha", "beta", "abc1", "exact"} {
		_, err := s.Create(input(name))
		require.NoError(t, err)
	}

	tests := []struct {
		name       string
		identifier string
		wantID     string
		ambiguous  bool
	}{
		{"exact id wins over prefix collision", "abc", "abc", false},
		{"unique prefix", "abc1", "abc12345-0000", false},
		{"full id", "def00000-0000", "def00000-0000", false},
		{"ambiguous prefix", "ab", "", true},
		{"name when no id matches", "beta", "abc99999-0000", false},
		{"unknown", "zzz", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := s.Resolve(tt.identifier)
			if tt.ambiguous {
				var amb *AmbiguousIdentifierError
				require.True(t, errors.As(err, &amb), "got %v", err)
				assert.Equal(t, tt.identifier, amb.Identifier)
				assert.Len(t, amb.Matches, 3)
				return
			}
			require.NoError(t, err)
			if tt.wantID == "" {
				assert.Nil(t, p)
				return
			}
			require.NotNil(t, p)
			assert.Equal(t, tt.wantID, p.ID)
		})
	}
}

func TestResolve_AmbiguityListsBoth(t *testing.T) {
	s := newTestStore(t, "7f3a1111-x", "7f3a2222-y")
	_, err := s.Create(input("first"))
	require.NoError(t, err)
	_, err = s.Create(input("second"))
	require.NoError(t, err)

	_, err = s.Resolve("7f3a")
	var amb *AmbiguousIdentifierError
	require.True(t, errors.As(err, &amb))
	require.Len(t, amb.Matches, 2)
	assert.ElementsMatch(t, []string{"first", "second"}, []string{amb.Matches[0].Name, amb.Matches[1].Name})

	msg := amb.Error()
	assert.Contains(t, msg, "7f3a1111  first")
	assert.Contains(t, msg, "7f3a2222  second")
}

func TestResolve_OrderIndependent(t *testing.T) {
	base := []models.Pattern{
		{ID: "aa11", Name: "dup", CreatedAt: epoch.Add(2 * time.Hour)},
		{ID: "aa22", Name: "other", CreatedAt: epoch},
		{ID: "bb33", Name: "dup", CreatedAt: epoch.Add(time.Hour)},
		{ID: "cc44", Name: "aa", CreatedAt: epoch},
	}
	permutations := [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {2, 0, 3, 1}, {1, 3, 0, 2}}
	identifiers := []string{"aa11", "aa", "bb", "dup", "other", "cc", "missing"}

	var want []string
	for i, perm := range permutations {
		patterns := make([]models.Pattern, len(perm))
		for j, k := range perm {
			patterns[j] = base[k]
		}

		var got []string
		for _, id := range identifiers {
			idx, err := resolveIndex(patterns, id)
			switch {
			case err != nil:
				got = append(got, "ambiguous")
			case idx < 0:
				got = append(got, "none")
			default:
				got = append(got, patterns[idx].ID)
			}
		}

		if i == 0 {
			want = got
			assert.Equal(t, []string{"aa11", "ambiguous", "bb33", "bb33", "aa22", "cc44", "none"}, got)
			continue
		}
		assert.Equal(t, want, got, "permutation %v", perm)
	}
}

func TestResolveByName(t *testing.T) {
	s := newTestStore(t, "name-id", "other")
	_, err := s.Create(input("Deploy checklist"))
	require.NoError(t, err)
	_, err = s.Create(input("name"))
	require.NoError(t, err)

	p, err := s.ResolveByName("name")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "other", p.ID, "name-only lookup must ignore id prefixes")

	p, err = s.ResolveByName("deploy checklist")
	require.NoError(t, err)
	assert.Nil(t, p, "name lookup is case-sensitive")
}

func TestRemove(t *testing.T) {
	s := newTestStore(t, "aaaa-1", "aaaa-2", "bbbb-3")
	for _, name := range []string{"one", "two", "three"} {
		_, err := s.Create(input(name))
		require.NoError(t, err)
	}

	removed, err := s.Remove("aaaa")
	var amb *AmbiguousIdentifierError
	require.True(t, errors.As(err, &amb))
	assert.False(t, removed)

	removed, err = s.Remove("missing")
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = s.Remove("two")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Remove("bbbb")
	require.NoError(t, err)
	assert.True(t, removed)

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "one", list[0].Name)
}

func TestRemoveByName(t *testing.T) {
	s := newTestStore(t, "x1", "x2")
	_, err := s.Create(input("keep"))
	require.NoError(t, err)
	_, err = s.Create(input("x1"))
	require.NoError(t, err)

	removed, err := s.RemoveByName("x1")
	require.NoError(t, err)
	assert.True(t, removed)

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "x1", list[0].ID)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "12345678", ShortID("12345678-aaaa-bbbb"))
	assert.Equal(t, "abc", ShortID("abc"))
}

func ExampleAmbiguousIdentifierError() {
	err := &AmbiguousIdentifierError{
		Identifier: "7f",
		Matches: []models.Pattern{
			{ID: "7f3a9c01-0000", Name: "Retry with backoff"},
			{ID: "7f88d2e4-0000", Name: "Retry budget"},
		},
	}
	fmt.Println(err)
	// Output:
	// identifier "7f" matches 2 patterns:
	//   7f3a9c01  Retry with backoff
	//   7f88d2e4  Retry budget
}

package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/latentspace/match-engine/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	profile           *types.UserProfile
	counts            map[types.InteractionAction]int
	matchTotal        int
	matchSuccessful   int
	interactionTotal  int
	interactionStaged int
	since             time.Time
}

func (s *fakeStore) GetProfile(context.Context, uuid.UUID) (*types.UserProfile, error) {
	return s.profile, nil
}

func (s *fakeStore) ActivityCounts(context.Context, uuid.UUID) (map[types.InteractionAction]int, error) {
	if s.counts == nil {
		return map[types.InteractionAction]int{}, nil
	}
	return s.counts, nil
}

func (s *fakeStore) MatchStats(_ context.Context, since time.Time) (int, int, error) {
	s.since = since
	return s.matchTotal, s.matchSuccessful, nil
}

func (s *fakeStore) InteractionStats(context.Context, time.Time) (int, int, error) {
	return s.interactionTotal, s.interactionStaged, nil
}

func fullProfile() *types.UserProfile {
	return &types.UserProfile{
		UserID:           uuid.New(),
		RoleIntent:       types.RoleCTO,
		Seniority:        types.SenioritySenior,
		Timezone:         "Europe/Berlin",
		WeeklyHours:      40,
		LocationCity:     "Berlin",
		RemotePreference: types.RemoteFirst,
		Skills:           []string{"go"},
		Industries:       []string{"fintech"},
		Bio:              "builder",
		Embedding:        []float32{0.1, 0.2},
	}
}

func TestCompleteness(t *testing.T) {
	assert.Equal(t, 0, Completeness(nil))

	full := fullProfile()
	assert.Equal(t, 100, Completeness(full))

	// Idempotent: same input, same score
	assert.Equal(t, Completeness(full), Completeness(full))

	// Strictly increases as empty fields are filled
	p := &types.UserProfile{RoleIntent: types.RoleCTO}
	before := Completeness(p)
	p.Bio = "building a fintech startup"
	after := Completeness(p)
	assert.Greater(t, after, before)

	// Whitespace-only text fields do not count
	p2 := &types.UserProfile{Bio: "   "}
	assert.Equal(t, 0, Completeness(p2))
}

func TestSystemMetrics(t *testing.T) {
	store := &fakeStore{
		matchTotal:        20,
		matchSuccessful:   5,
		interactionTotal:  100,
		interactionStaged: 30,
	}
	a := New(store)

	m, err := a.SystemMetrics(context.Background(), types.RangeWeek)
	require.NoError(t, err)

	assert.Equal(t, types.RangeWeek, m.Range)
	assert.Equal(t, 20, m.TotalMatches)
	assert.Equal(t, 5, m.SuccessfulMatches)
	assert.InDelta(t, 0.25, m.SuccessRate, 1e-9)
	assert.InDelta(t, 0.3, m.EngagementRate, 1e-9)
	assert.Nil(t, m.ResponseRate)
	assert.Nil(t, m.ConversionRate)

	// Window start matches the requested range
	wantSince := time.Now().Add(-types.RangeWeek.Duration())
	assert.WithinDuration(t, wantSince, store.since, time.Minute)
}

func TestSystemMetrics_EmptyWindow(t *testing.T) {
	a := New(&fakeStore{})
	m, err := a.SystemMetrics(context.Background(), types.RangeQuarter)
	require.NoError(t, err)
	assert.Zero(t, m.SuccessRate)
	assert.Zero(t, m.EngagementRate)
}

func TestSystemMetrics_InvalidRange(t *testing.T) {
	a := New(&fakeStore{})
	_, err := a.SystemMetrics(context.Background(), types.TimeRange("decade"))
	assert.Error(t, err)
}

func TestUserInsights_Recommendations(t *testing.T) {
	tests := []struct {
		name    string
		profile *types.UserProfile
		counts  map[types.InteractionAction]int
		want    []string
		exclude []string
	}{
		{
			name:    "sparse profile no activity",
			profile: &types.UserProfile{RoleIntent: types.RoleCTO},
			counts:  map[types.InteractionAction]int{},
			want: []string{
				"Complete your profile to improve match quality",
				"Start browsing candidates to receive personalized matches",
			},
		},
		{
			name:    "high views low likes",
			profile: fullProfile(),
			counts:  map[types.InteractionAction]int{types.ActionView: 50, types.ActionLike: 2},
			want:    []string{"You view many profiles but like few; consider loosening your filters"},
			exclude: []string{"Complete your profile to improve match quality"},
		},
		{
			name:    "likes without connects",
			profile: fullProfile(),
			counts:  map[types.InteractionAction]int{types.ActionLike: 6},
			want:    []string{"You have liked several candidates without connecting; try reaching out"},
		},
		{
			name:    "healthy activity",
			profile: fullProfile(),
			counts: map[types.InteractionAction]int{
				types.ActionView:    30,
				types.ActionLike:    10,
				types.ActionConnect: 3,
			},
			exclude: []string{
				"You view many profiles but like few; consider loosening your filters",
				"You have liked several candidates without connecting; try reaching out",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(&fakeStore{profile: tt.profile, counts: tt.counts})
			got, err := a.UserInsights(context.Background(), uuid.New())
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, got.Recommendations, w)
			}
			for _, e := range tt.exclude {
				assert.NotContains(t, got.Recommendations, e)
			}
		})
	}
}

func TestUserInsights_IncludesActivityAndCompleteness(t *testing.T) {
	counts := map[types.InteractionAction]int{types.ActionView: 3}
	a := New(&fakeStore{profile: fullProfile(), counts: counts})

	got, err := a.UserInsights(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 100, got.ProfileCompleteness)
	assert.Equal(t, 3, got.ActivityCounts[types.ActionView])
	assert.False(t, got.GeneratedAt.IsZero())
}

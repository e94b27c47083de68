package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierFor(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		completed int
		rating    float64
		want      Tier
	}{
		{name: "new driver", completed: 0, rating: 0, want: Bronze},
		{name: "below prata", completed: 49, rating: 5, want: Bronze},
		{name: "prata exact", completed: 50, rating: 4.0, want: Prata},
		{name: "prata low rating", completed: 80, rating: 3.9, want: Bronze},
		{name: "unrated veteran", completed: 600, rating: 0, want: Bronze},
		{name: "ouro", completed: 200, rating: 4.5, want: Ouro},
		{name: "many deliveries ouro rating", completed: 900, rating: 4.7, want: Ouro},
		{name: "diamante", completed: 500, rating: 4.8, want: Diamante},
		{name: "negative count", completed: -3, rating: 5, want: Bronze},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, TierFor(tc.completed, tc.rating))
		})
	}
}

func TestTierForIsMonotone(t *testing.T) {
	ratings := []float64{0, 3.5, 4.0, 4.5, 4.8, 5}
	for _, r := range ratings {
		prev := Bronze
		for n := 0; n <= 600; n += 10 {
			got := TierFor(n, r)
			require.GreaterOrEqual(t, int(got), int(prev), "deliveries=%d rating=%.1f", n, r)
			prev = got
		}
	}
	for n := 0; n <= 600; n += 50 {
		prev := Bronze
		for _, r := range ratings {
			got := TierFor(n, r)
			require.GreaterOrEqual(t, int(got), int(prev), "deliveries=%d rating=%.1f", n, r)
			prev = got
		}
	}
}

func TestCompute(t *testing.T) {
	st := Compute(25, 4.9)
	assert.Equal(t, Bronze, st.Tier)
	require.NotNil(t, st.Next)
	assert.Equal(t, Prata, st.Next.Tier)
	assert.Equal(t, 25, st.DeliveriesToNext)
	assert.InDelta(t, 0.5, st.Progress, 1e-9)

	st = Compute(125, 4.6)
	assert.Equal(t, Prata, st.Tier)
	require.NotNil(t, st.Next)
	assert.Equal(t, Ouro, st.Next.Tier)
	assert.Equal(t, 75, st.DeliveriesToNext)
	assert.InDelta(t, 0.5, st.Progress, 1e-9)

	st = Compute(700, 4.9)
	assert.Equal(t, Diamante, st.Tier)
	assert.Nil(t, st.Next)
	assert.Equal(t, 1.0, st.Progress)

	// enough deliveries but rating holds the tier back
	st = Compute(300, 4.2)
	assert.Equal(t, Prata, st.Tier)
	assert.Equal(t, 0, st.DeliveriesToNext)
	assert.Equal(t, 1.0, st.Progress)
}

func TestTierNames(t *testing.T) {
	assert.Equal(t, "ouro", Ouro.String())
	assert.Equal(t, "desconhecido", Tier(42).String())

	tier, ok := ParseTier(" Diamante ")
	assert.True(t, ok)
	assert.Equal(t, Diamante, tier)

	_, ok = ParseTier("platina")
	assert.False(t, ok)

	text, err := Prata.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "prata", string(text))
}

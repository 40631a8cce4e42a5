package recap

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/royale"
	"github.com/Delaurensbot/BrabantRoyale/lib/snapshotstore"

	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestMovement(t *testing.T) {
	require.Equal(t, "unknown", movement(nil, nil))
	require.Equal(t, "unknown", movement(intp(3), nil))
	require.Equal(t, "unknown", movement(nil, intp(3)))
	require.Equal(t, "improved", movement(intp(2), intp(5)))
	require.Equal(t, "worsened", movement(intp(5), intp(2)))
	require.Equal(t, "unchanged", movement(intp(4), intp(4)))
}

func TestSummarizeParticipants(t *testing.T) {
	report := &EndWarReport{Missers: []Misser{}}
	summarizeParticipants(report, []royale.Participant{
		{Name: "Alice", Tag: "AAA111", Attacks: 16, Points: 3200},
		{Name: "Bob", Tag: "BBB222", Attacks: 16, Points: 3400},
		{Name: "Carol", Attacks: 12, Points: 2100},
		{Name: "Dave", Attacks: 3, Points: 600},
		{Name: "Ghost", Attacks: 0, Points: 0},
	})

	require.NotNil(t, report.TopPlayer)
	require.Equal(t, "Bob", report.TopPlayer.Name)

	require.Equal(t, 2, report.Count16)
	require.Equal(t, 6600, report.SumPoints16)

	// Carol missed 4, Dave missed 13; Ghost never started and is not a
	// misser.
	require.Equal(t, 17, report.MissedAttacksTotal)
	require.Len(t, report.Missers, 2)
	require.Equal(t, Misser{Name: "Carol", Attacks: 12, Missed: 4, Points: 2100}, report.Missers[0])
	require.Equal(t, Misser{Name: "Dave", Attacks: 3, Missed: 13, Points: 600}, report.Missers[1])
}

func TestSummarizeParticipantsEmpty(t *testing.T) {
	report := &EndWarReport{Missers: []Misser{}}
	summarizeParticipants(report, nil)

	require.Nil(t, report.TopPlayer)
	require.Zero(t, report.Count16)
	require.Empty(t, report.Missers)
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := snapshotstore.New(filepath.Join(t.TempDir(), "snapshots.json"))

	_, ok, err := store.Latest("9YP8UY")
	require.NoError(t, err)
	require.False(t, ok)

	first, err := store.Append("9YP8UY", 12, 4500, time.Now())
	require.NoError(t, err)
	require.Equal(t, 12, first.Rank)

	_, err = store.Append("9YP8UY", 9, 4550, time.Now())
	require.NoError(t, err)

	latest, ok, err := store.Latest("9YP8UY")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 9, latest.Rank)
	require.Equal(t, 4550, latest.Trophies)

	// Movement against the stored rank: 8 today beats the stored 9.
	require.Equal(t, "improved", movement(intp(8), &latest.Rank))
}

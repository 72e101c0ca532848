package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compass/residence-engine/absence"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func day(year int, month time.Month, d int) absence.Day {
	return absence.NewDay(year, month, d)
}

func trip(id string, exit, ret absence.Day) absence.Trip {
	return absence.Trip{ID: id, Exit: exit, Return: ret}
}

func TestTripCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := trip("t1", day(2024, time.January, 10), day(2024, time.January, 20))
	a.Note = "holiday"
	require.NoError(t, store.AddTrip(ctx, a, false))

	got, planned, err := store.GetTrip(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, planned)
	assert.True(t, got.Exit.Equal(a.Exit))
	assert.True(t, got.Return.Equal(a.Return))
	assert.Equal(t, "holiday", got.Note)

	a.Return = day(2024, time.January, 25)
	a.Note = "extended"
	require.NoError(t, store.UpdateTrip(ctx, a))

	got, _, err = store.GetTrip(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, got.Return.Equal(day(2024, time.January, 25)))
	assert.Equal(t, "extended", got.Note)

	require.NoError(t, store.DeleteTrip(ctx, "t1"))
	_, _, err = store.GetTrip(ctx, "t1")
	assert.ErrorIs(t, err, ErrTripNotFound)
}

func TestTripNotFoundSentinels(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.DeleteTrip(ctx, "ghost"), ErrTripNotFound)
	assert.ErrorIs(t, store.UpdateTrip(ctx, trip("ghost", day(2024, time.May, 1), day(2024, time.May, 2))), ErrTripNotFound)
	assert.ErrorIs(t, store.Promote(ctx, "ghost", trip("x", day(2024, time.May, 1), day(2024, time.May, 2))), ErrTripNotFound)
}

func TestListTrips_SplitsByPlannedFlagAndOrdersByExit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddTrip(ctx, trip("p1", day(2024, time.March, 1), day(2024, time.March, 10)), false))
	require.NoError(t, store.AddTrip(ctx, trip("p2", day(2024, time.January, 5), day(2024, time.January, 8)), false))
	require.NoError(t, store.AddTrip(ctx, trip("f1", day(2024, time.September, 1), day(2024, time.September, 10)), true))

	past, err := store.ListTrips(ctx, false)
	require.NoError(t, err)
	require.Len(t, past, 2)
	assert.Equal(t, "p2", past[0].ID, "exit-date order")
	assert.Equal(t, "p1", past[1].ID)

	planned, err := store.ListTrips(ctx, true)
	require.NoError(t, err)
	require.Len(t, planned, 1)
	assert.Equal(t, "f1", planned[0].ID)
}

func TestPromote_MovesPlannedIntoLog(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddTrip(ctx, trip("plan", day(2024, time.August, 1), day(2024, time.August, 15)), true))

	actual := trip("actual", day(2024, time.August, 2), day(2024, time.August, 14))
	require.NoError(t, store.Promote(ctx, "plan", actual))

	_, _, err := store.GetTrip(ctx, "plan")
	assert.ErrorIs(t, err, ErrTripNotFound, "planned trip should be consumed")

	got, planned, err := store.GetTrip(ctx, "actual")
	require.NoError(t, err)
	assert.False(t, planned)
	assert.True(t, got.Exit.Equal(day(2024, time.August, 2)))
}

func TestPromote_RejectsLoggedTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddTrip(ctx, trip("logged", day(2024, time.March, 1), day(2024, time.March, 5)), false))

	err := store.Promote(ctx, "logged", trip("x", day(2024, time.March, 1), day(2024, time.March, 5)))
	assert.ErrorIs(t, err, ErrNotPlanned)

	// The original record must survive a failed promotion.
	_, _, err = store.GetTrip(ctx, "logged")
	assert.NoError(t, err)
}

func TestReplaceAll_SwapsEverything(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddTrip(ctx, trip("old", day(2023, time.June, 1), day(2023, time.June, 10)), false))

	past := []absence.Trip{trip("n1", day(2024, time.January, 1), day(2024, time.January, 9))}
	future := []absence.Trip{trip("n2", day(2024, time.December, 1), day(2024, time.December, 9))}
	require.NoError(t, store.ReplaceAll(ctx, past, future))

	gotPast, err := store.ListTrips(ctx, false)
	require.NoError(t, err)
	require.Len(t, gotPast, 1)
	assert.Equal(t, "n1", gotPast[0].ID)

	gotFuture, err := store.ListTrips(ctx, true)
	require.NoError(t, err)
	require.Len(t, gotFuture, 1)
	assert.Equal(t, "n2", gotFuture[0].ID)
}

func TestAddAll_AppendsWithoutClearing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddTrip(ctx, trip("keep", day(2023, time.June, 1), day(2023, time.June, 10)), false))
	require.NoError(t, store.AddAll(ctx,
		[]absence.Trip{trip("n1", day(2024, time.January, 1), day(2024, time.January, 9))},
		[]absence.Trip{trip("n2", day(2024, time.December, 1), day(2024, time.December, 9))}))

	past, err := store.ListTrips(ctx, false)
	require.NoError(t, err)
	assert.Len(t, past, 2)
}

func TestSettings_DefaultsUntilSaved(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	settings, err := store.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Traveller", settings.Name)
	assert.Equal(t, "skilled", settings.VisaType)
	assert.Equal(t, 5, settings.QualifyingYears)
	assert.Nil(t, settings.ResidenceStart)
}

func TestSettings_UpsertRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	start := day(2020, time.January, 1)
	require.NoError(t, store.SaveSettings(ctx, Settings{
		Name:            "Ada",
		VisaType:        "global-talent",
		QualifyingYears: 3,
		ResidenceStart:  &start,
	}))

	got, err := store.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "global-talent", got.VisaType)
	assert.Equal(t, 3, got.QualifyingYears)
	require.NotNil(t, got.ResidenceStart)
	assert.True(t, got.ResidenceStart.Equal(start))

	// Second save overwrites the single row.
	require.NoError(t, store.SaveSettings(ctx, Settings{Name: "Ada", VisaType: "skilled", QualifyingYears: 5}))
	got, err = store.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, got.QualifyingYears)
	assert.Nil(t, got.ResidenceStart)
}

func TestReset_ClearsTripsAndSettings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddTrip(ctx, trip("t1", day(2024, time.January, 1), day(2024, time.January, 9)), false))
	require.NoError(t, store.SaveSettings(ctx, Settings{Name: "Ada", VisaType: "skilled", QualifyingYears: 5}))

	require.NoError(t, store.Reset(ctx))

	trips, err := store.ListTrips(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, trips)

	settings, err := store.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), settings)
}

package importer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compass/residence-engine/absence"
	"github.com/compass/residence-engine/importer"
)

func day(year int, month time.Month, d int) absence.Day {
	return absence.NewDay(year, month, d)
}

func TestParse_NamedHeaders(t *testing.T) {
	// GIVEN: A CSV with recognizable column names in a shuffled order
	csv := "note,departure date,arrival back\n" +
		"holiday,2024-01-10,2024-01-20\n" +
		"work,2024-03-01,2024-03-05\n"

	result := importer.Parse(strings.NewReader(csv))

	require.Empty(t, result.Errors)
	require.Len(t, result.Trips, 2)

	first := result.Trips[0]
	assert.True(t, first.Exit.Equal(day(2024, time.January, 10)))
	assert.True(t, first.Return.Equal(day(2024, time.January, 20)))
	assert.Equal(t, "holiday", first.Note)
	assert.NotEmpty(t, first.ID)
}

func TestParse_FallbackColumns(t *testing.T) {
	// No recognizable header names: columns 2 and 3 are assumed to be dates.
	csv := "id,from,to\n" +
		"1,2024-01-10,2024-01-20\n"

	result := importer.Parse(strings.NewReader(csv))

	require.Len(t, result.Trips, 1)
	assert.True(t, result.Trips[0].Exit.Equal(day(2024, time.January, 10)))
}

func TestParse_ReportsBadRowsAndKeepsGoing(t *testing.T) {
	csv := "exit,return\n" +
		"2024-01-10,2024-01-20\n" +
		"not-a-date,2024-02-01\n" +
		"2024-03-05,2024-03-01\n" +
		",2024-04-01\n" +
		"2024-05-01,2024-05-09\n"

	result := importer.Parse(strings.NewReader(csv))

	require.Len(t, result.Trips, 2)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "row 3")
	assert.Contains(t, result.Errors[0], "invalid exit date")
	assert.Contains(t, result.Errors[1], "row 4")
	assert.Contains(t, result.Errors[1], "return is not after exit")
	assert.Contains(t, result.Errors[2], "row 5")
	assert.Contains(t, result.Errors[2], "missing dates")
}

func TestParse_EmptyInput(t *testing.T) {
	result := importer.Parse(strings.NewReader(""))

	assert.Empty(t, result.Trips)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "no data found", result.Errors[0])
}

func TestParseDate_Formats(t *testing.T) {
	cases := []struct {
		in   string
		want absence.Day
	}{
		{"2024-01-31", day(2024, time.January, 31)},
		// First component over 12 forces day-first.
		{"15/01/2024", day(2024, time.January, 15)},
		// Otherwise month-first, matching spreadsheet exports.
		{"01/02/2024", day(2024, time.February, 1)},
		{"15.01.2024", day(2024, time.January, 15)},
		{"15-01-24", day(2024, time.January, 15)},
	}
	for _, tc := range cases {
		got, err := importer.ParseDate(tc.in)
		require.NoError(t, err, tc.in)
		assert.True(t, got.Equal(tc.want), "%s parsed to %s, want %s", tc.in, got, tc.want)
	}
}

func TestParseDate_Rejections(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2024/01", "31/31/2024", "30/02/2024"} {
		_, err := importer.ParseDate(in)
		assert.Error(t, err, in)
	}
}

func TestSplit_PartitionsByExitDate(t *testing.T) {
	today := day(2024, time.June, 1)
	trips := []absence.Trip{
		{Exit: day(2024, time.May, 1), Return: day(2024, time.May, 10)},
		{Exit: today, Return: day(2024, time.June, 5)},
		{Exit: day(2024, time.July, 1), Return: day(2024, time.July, 10)},
	}

	past, future := importer.Split(trips, today)

	// A trip departing today counts as already departed.
	assert.Len(t, past, 2)
	require.Len(t, future, 1)
	assert.True(t, future[0].Exit.Equal(day(2024, time.July, 1)))
}

func TestKey_IdentifiesByDatePair(t *testing.T) {
	a := absence.Trip{ID: "x", Exit: day(2024, time.May, 1), Return: day(2024, time.May, 10)}
	b := absence.Trip{ID: "y", Exit: day(2024, time.May, 1), Return: day(2024, time.May, 10)}
	c := absence.Trip{ID: "z", Exit: day(2024, time.May, 2), Return: day(2024, time.May, 10)}

	assert.Equal(t, importer.Key(a), importer.Key(b))
	assert.NotEqual(t, importer.Key(a), importer.Key(c))
}

/*
Package importer turns raw CSV travel history into validated Trip records.

PURPOSE:
  The absence engine assumes well-formed, already-validated trips; this is
  the boundary where messy external exports (banking apps, spreadsheets,
  airline history) get cleaned up. Parsing is tolerant, reporting is strict:
  every rejected row is reported with its row number and reason so the user
  can fix the source file.

HEADER DETECTION:
  Columns are matched by name: anything containing "exit" or "depart" is the
  exit date, "return" or "arriv" the return date, "note" the note. Without a
  match, columns 2 and 3 are assumed to be the dates.

DATE FORMATS:
  ISO (2024-01-31) is preferred. Slash/dot/dash triples are accepted;
  a first component over 12 is read day-first, otherwise month-first.

SEE ALSO:
  - absence/types.go: the Trip record this produces
  - api/handlers.go: the /api/import endpoint driving this
*/
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/compass/residence-engine/absence"
)

// Result is the outcome of an import: the rows that parsed cleanly and a
// per-row error report for the rest.
type Result struct {
	Trips  []absence.Trip
	Errors []string
}

var (
	exitHeader   = regexp.MustCompile(`(?i)exit|depart`)
	returnHeader = regexp.MustCompile(`(?i)return|arriv`)
	noteHeader   = regexp.MustCompile(`(?i)note`)
)

// Parse reads CSV travel history. Rows that fail validation are reported in
// Result.Errors (numbered as they appear in the file, header = row 1) and
// excluded from Result.Trips; a bad row never aborts the import.
func Parse(r io.Reader) Result {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	var result Result

	header, err := cr.Read()
	if err != nil {
		result.Errors = append(result.Errors, "no data found")
		return result
	}

	exitCol, returnCol, noteCol := detectColumns(header)

	for row := 2; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row, err))
			continue
		}

		exitRaw := field(record, exitCol)
		returnRaw := field(record, returnCol)
		if exitRaw == "" || returnRaw == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: missing dates", row))
			continue
		}

		exit, err := ParseDate(exitRaw)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: invalid exit date %q", row, exitRaw))
			continue
		}
		ret, err := ParseDate(returnRaw)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: invalid return date %q", row, returnRaw))
			continue
		}
		if ret.BeforeOrEqual(exit) {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: return is not after exit", row))
			continue
		}

		result.Trips = append(result.Trips, absence.Trip{
			ID:     uuid.NewString(),
			Exit:   exit,
			Return: ret,
			Note:   field(record, noteCol),
		})
	}

	if len(result.Trips) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "no data found")
	}
	return result
}

func detectColumns(header []string) (exitCol, returnCol, noteCol int) {
	exitCol, returnCol, noteCol = 1, 2, -1
	for i, h := range header {
		name := strings.TrimSpace(h)
		switch {
		case exitHeader.MatchString(name):
			exitCol = i
		case returnHeader.MatchString(name):
			returnCol = i
		case noteHeader.MatchString(name):
			noteCol = i
		}
	}
	return exitCol, returnCol, noteCol
}

func field(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return strings.Trim(strings.TrimSpace(record[col]), `"`)
}

var datePartsSep = regexp.MustCompile(`[/.\-]`)

// ParseDate accepts ISO dates plus the slash/dot/dash triples common in
// spreadsheet exports. Two-digit years are read as 20xx.
func ParseDate(s string) (absence.Day, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return absence.DayOf(t), nil
	}

	parts := datePartsSep.Split(s, -1)
	if len(parts) != 3 {
		return absence.Day{}, fmt.Errorf("unrecognized date %q", s)
	}
	a, err1 := strconv.Atoi(parts[0])
	b, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return absence.Day{}, fmt.Errorf("unrecognized date %q", s)
	}
	if year < 100 {
		year += 2000
	}

	// Day-first when the first component cannot be a month.
	month, day := a, b
	if a > 12 {
		month, day = b, a
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return absence.Day{}, fmt.Errorf("date out of range %q", s)
	}

	d := absence.NewDay(year, time.Month(month), day)
	if d.Month() != time.Month(month) || d.DayOfMonth() != day {
		return absence.Day{}, fmt.Errorf("date out of range %q", s)
	}
	return d, nil
}

// Split partitions imported trips into past travel (already departed) and
// future plans, relative to today.
func Split(trips []absence.Trip, today absence.Day) (past, future []absence.Trip) {
	for _, t := range trips {
		if t.Exit.BeforeOrEqual(today) {
			past = append(past, t)
		} else {
			future = append(future, t)
		}
	}
	return past, future
}

// Key identifies a trip by its date pair, used to suppress duplicates when
// merging an import into an existing log.
func Key(t absence.Trip) string {
	return t.Exit.String() + "_" + t.Return.String()
}

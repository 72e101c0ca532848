/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built travel histories that populate the store with
  realistic data for demos. Each scenario is defined relative to today so
  the dashboard always lands in the intended risk band, whenever it is
  loaded.

AVAILABLE SCENARIOS:
  safe-traveller:  A few short holidays, comfortably inside the cap
  frequent-flyer:  Regular long trips, amber zone
  near-breach:     175 rolling days, five from the cap
  planned-risk:    Safe history, but planned trips that project over 150

NOTE:
  Loading a scenario resets the store. Only use in development and demos.

SEE ALSO:
  - handlers.go: writeJSON/writeError helpers
  - store/sqlite: Reset and trip persistence
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/compass/residence-engine/absence"
	"github.com/compass/residence-engine/store/sqlite"
)

var scenarios = []ScenarioDTO{
	{
		ID:          "safe-traveller",
		Name:        "Safe Traveller",
		Description: "Three short holidays in the last year, large buffer",
	},
	{
		ID:          "frequent-flyer",
		Name:        "Frequent Flyer",
		Description: "Six long trips in the last year, amber zone",
	},
	{
		ID:          "near-breach",
		Name:        "Near Breach",
		Description: "175 rolling absence days, five from the cap",
	},
	{
		ID:          "planned-risk",
		Name:        "Planned Travel Risk",
		Description: "Safe today, but planned trips project past the amber threshold",
	},
}

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// ResetStore clears all trips and settings.
func (h *Handler) ResetStore(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// LoadScenario resets the store and seeds the selected scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}

	today := h.Now()
	var err error
	switch req.ScenarioID {
	case "safe-traveller":
		err = h.loadSafeTraveller(ctx, today)
	case "frequent-flyer":
		err = h.loadFrequentFlyer(ctx, today)
	case "near-breach":
		err = h.loadNearBreach(ctx, today)
	case "planned-risk":
		err = h.loadPlannedRisk(ctx, today)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario_id": req.ScenarioID})
}

// seedTrip inserts a trip that departed daysAgo and spent absentDays days
// absent (endpoints excluded, so the return lands absentDays+1 later).
func (h *Handler) seedTrip(ctx context.Context, today absence.Day, daysAgo, absentDays int, note string, planned bool) error {
	exit := today.AddDays(-daysAgo)
	return h.Store.AddTrip(ctx, absence.Trip{
		ID:     uuid.NewString(),
		Exit:   exit,
		Return: exit.AddDays(absentDays + 1),
		Note:   note,
	}, planned)
}

func (h *Handler) seedSettings(ctx context.Context, today absence.Day, name string) error {
	start := today.AddDays(-1600) // about 4.4 years into a 5-year period
	return h.Store.SaveSettings(ctx, sqlite.Settings{
		Name:            name,
		VisaType:        "skilled",
		QualifyingYears: 5,
		ResidenceStart:  &start,
	})
}

func (h *Handler) loadSafeTraveller(ctx context.Context, today absence.Day) error {
	trips := []struct {
		daysAgo, absent int
		note            string
	}{
		{300, 9, "Spring holiday"},
		{180, 12, "Summer holiday"},
		{60, 7, "City break"},
	}
	for _, t := range trips {
		if err := h.seedTrip(ctx, today, t.daysAgo, t.absent, t.note, false); err != nil {
			return err
		}
	}
	return h.seedSettings(ctx, today, "Sam Safe")
}

func (h *Handler) loadFrequentFlyer(ctx context.Context, today absence.Day) error {
	// Six 26-day trips inside the trailing year: 156 rolling days, amber.
	for i := 0; i < 6; i++ {
		daysAgo := 40 + i*55
		if err := h.seedTrip(ctx, today, daysAgo, 26, "Contract work abroad", false); err != nil {
			return err
		}
	}
	return h.seedSettings(ctx, today, "Frankie Flyer")
}

func (h *Handler) loadNearBreach(ctx context.Context, today absence.Day) error {
	// 100 + 75 = 175 rolling days, five from the cap.
	if err := h.seedTrip(ctx, today, 330, 100, "Family emergency", false); err != nil {
		return err
	}
	if err := h.seedTrip(ctx, today, 106, 75, "Extended assignment", false); err != nil {
		return err
	}
	return h.seedSettings(ctx, today, "Nia Nearmiss")
}

func (h *Handler) loadPlannedRisk(ctx context.Context, today absence.Day) error {
	// 120 rolling days today, with 45 more planned: projects past amber.
	if err := h.seedTrip(ctx, today, 250, 60, "Sabbatical", false); err != nil {
		return err
	}
	if err := h.seedTrip(ctx, today, 120, 60, "Secondment", false); err != nil {
		return err
	}

	plannedExit := today.AddDays(45)
	if err := h.Store.AddTrip(ctx, absence.Trip{
		ID:     uuid.NewString(),
		Exit:   plannedExit,
		Return: plannedExit.AddDays(46),
		Note:   "Planned long trip",
	}, true); err != nil {
		return err
	}

	return h.seedSettings(ctx, today, "Pat Planner")
}

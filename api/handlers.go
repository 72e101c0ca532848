/*
handlers.go - HTTP API handlers for the residence absence engine

PURPOSE:
  Exposes the absence engine via REST API. Every computation endpoint
  follows the same shape: load a consistent snapshot from the store, run
  the pure engine over it, serialize the result records. The engine owns no
  state, so there is nothing to invalidate between requests.

ENDPOINTS:
  Trips:
    GET    /api/trips                  Travel log
    POST   /api/trips                  Add a trip
    DELETE /api/trips/{id}             Remove a trip

  Planned travel:
    GET    /api/planned                Planned trips
    POST   /api/planned                Add a planned trip
    PUT    /api/planned/{id}           Edit a planned trip
    DELETE /api/planned/{id}           Remove a planned trip
    POST   /api/planned/{id}/promote   Record what actually happened

  Settings:
    GET/PUT /api/settings

  Computation:
    GET  /api/dashboard                Composite rolling/projected summary
    GET  /api/insights                 Ordered advisory list
    GET  /api/timeline                 Qualifying-period projection
    POST /api/simulate                 Stress-test a hypothetical trip

  Data:
    POST /api/import?mode=merge|replace  CSV travel history
    GET  /api/report                     HTML compliance report

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Trip not found
  - 500: Store failures

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/compass/residence-engine/absence"
	"github.com/compass/residence-engine/advisor"
	"github.com/compass/residence-engine/importer"
	"github.com/compass/residence-engine/qualify"
	"github.com/compass/residence-engine/report"
	"github.com/compass/residence-engine/store/sqlite"
)

// maxImportBytes caps CSV upload size.
const maxImportBytes = 2 << 20

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store

	// Now supplies the reference date; injectable for tests.
	Now func() absence.Day
}

// NewHandler creates a handler backed by the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{Store: store, Now: absence.Today}
}

// snapshot is one consistent read of the store, the unit every computation
// runs over.
type snapshot struct {
	Past     []absence.Trip
	Planned  []absence.Trip
	Settings sqlite.Settings
	Timeline *qualify.Timeline
}

func (h *Handler) loadSnapshot(r *http.Request) (snapshot, error) {
	ctx := r.Context()

	past, err := h.Store.ListTrips(ctx, false)
	if err != nil {
		return snapshot{}, err
	}
	planned, err := h.Store.ListTrips(ctx, true)
	if err != nil {
		return snapshot{}, err
	}
	settings, err := h.Store.Settings(ctx)
	if err != nil {
		return snapshot{}, err
	}

	snap := snapshot{Past: past, Planned: planned, Settings: settings}
	if settings.ResidenceStart != nil {
		tl := qualify.NewTimeline(*settings.ResidenceStart, settings.QualifyingYears)
		snap.Timeline = &tl
	}
	return snap, nil
}

// =============================================================================
// TRIP HANDLERS
// =============================================================================

// ListTrips returns the travel log.
func (h *Handler) ListTrips(w http.ResponseWriter, r *http.Request) {
	h.listTrips(w, r, false)
}

// ListPlanned returns planned trips.
func (h *Handler) ListPlanned(w http.ResponseWriter, r *http.Request) {
	h.listTrips(w, r, true)
}

func (h *Handler) listTrips(w http.ResponseWriter, r *http.Request, planned bool) {
	trips, err := h.Store.ListTrips(r.Context(), planned)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list trips", err)
		return
	}
	writeJSON(w, http.StatusOK, tripDTOs(trips))
}

// CreateTrip adds a trip to the travel log.
func (h *Handler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	h.createTrip(w, r, false)
}

// CreatePlanned adds a planned trip.
func (h *Handler) CreatePlanned(w http.ResponseWriter, r *http.Request) {
	h.createTrip(w, r, true)
}

func (h *Handler) createTrip(w http.ResponseWriter, r *http.Request, planned bool) {
	var req TripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	trip, err := tripFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid trip", err)
		return
	}

	if err := h.Store.AddTrip(r.Context(), trip, planned); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save trip", err)
		return
	}
	writeJSON(w, http.StatusCreated, tripDTO(trip))
}

// UpdatePlanned edits a planned trip's dates or note.
func (h *Handler) UpdatePlanned(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req TripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	trip, err := tripFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid trip", err)
		return
	}
	trip.ID = id

	if _, planned, err := h.Store.GetTrip(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	} else if !planned {
		writeError(w, http.StatusBadRequest, "Not a planned trip", nil)
		return
	}

	if err := h.Store.UpdateTrip(r.Context(), trip); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tripDTO(trip))
}

// DeleteTrip removes a trip (log or planned).
func (h *Handler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteTrip(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PromotePlanned moves a planned trip into the travel log with the dates
// that actually happened. The planned entry is removed in the same
// transaction.
func (h *Handler) PromotePlanned(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req PromoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	actual, err := tripFromRequest(TripRequest(req))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid trip", err)
		return
	}

	if err := h.Store.Promote(r.Context(), id, actual); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tripDTO(actual))
}

func tripFromRequest(req TripRequest) (absence.Trip, error) {
	if err := req.Validate(); err != nil {
		return absence.Trip{}, err
	}
	exit, err := absence.ParseDay(req.ExitDate)
	if err != nil {
		return absence.Trip{}, err
	}
	ret, err := absence.ParseDay(req.ReturnDate)
	if err != nil {
		return absence.Trip{}, err
	}
	if ret.BeforeOrEqual(exit) {
		return absence.Trip{}, errors.New("return date must be after exit date")
	}
	return absence.Trip{ID: uuid.NewString(), Exit: exit, Return: ret, Note: req.Note}, nil
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the stored profile (or defaults).
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.Settings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settingsDTO(settings))
}

// UpdateSettings saves the profile.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid settings", err)
		return
	}

	settings := sqlite.Settings{
		Name:            req.Name,
		VisaType:        req.VisaType,
		QualifyingYears: req.QualifyingYears,
	}
	if req.ResidenceStart != "" {
		start, err := absence.ParseDay(req.ResidenceStart)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid residence_start (use YYYY-MM-DD)", err)
			return
		}
		settings.ResidenceStart = &start
	}

	if err := h.Store.SaveSettings(r.Context(), settings); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settingsDTO(settings))
}

func settingsDTO(s sqlite.Settings) SettingsDTO {
	dto := SettingsDTO{
		Name:            s.Name,
		VisaType:        s.VisaType,
		QualifyingYears: s.QualifyingYears,
	}
	if s.ResidenceStart != nil {
		dto.ResidenceStart = s.ResidenceStart.String()
	}
	return dto
}

// =============================================================================
// COMPUTATION HANDLERS
// =============================================================================

// GetDashboard assembles the composite rolling/projected summary.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.loadSnapshot(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}
	today := h.Now()

	rolling := absence.BuildSeries(snap.Past, today)
	combined := append(append([]absence.Trip{}, snap.Past...), snap.Planned...)
	projected := absence.BuildSeries(combined, today)

	plannedTotal := 0
	for _, t := range snap.Planned {
		plannedTotal += t.AbsentDays()
	}

	maxSafe := absence.CapDays - rolling.Current - plannedTotal - 5
	if maxSafe < 0 {
		maxSafe = 0
	}

	writeJSON(w, http.StatusOK, DashboardDTO{
		Today:              today.String(),
		Current:            rolling.Current,
		Buffer:             absence.Buffer(rolling.Current),
		RiskLevel:          absence.Classify(rolling.Current).String(),
		RBI:                absence.BufferIndex(rolling.Current, plannedTotal),
		PlannedDaysTotal:   plannedTotal,
		MaxSafePlannedDays: maxSafe,
		Rolling:            seriesDTO(rolling),
		Projected:          seriesDTO(projected),
		ProjectedRiskLevel: absence.Classify(projected.Current).String(),
		ProjectedBuffer:    absence.Buffer(projected.Current),
		TripCount:          len(snap.Past),
		PlannedCount:       len(snap.Planned),
	})
}

// GetInsights runs the advisory rule engine over the current snapshot.
func (h *Handler) GetInsights(w http.ResponseWriter, r *http.Request) {
	snap, err := h.loadSnapshot(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}

	state := advisor.BuildState(snap.Past, snap.Planned, snap.Timeline, h.Now())
	writeJSON(w, http.StatusOK, insightDTOs(advisor.Generate(state)))
}

// GetTimeline returns the qualifying-period projection, or 404 when no
// residence start date is configured.
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	snap, err := h.loadSnapshot(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}
	if snap.Timeline == nil {
		writeError(w, http.StatusNotFound, "No residence start date configured", nil)
		return
	}

	tl := *snap.Timeline
	today := h.Now()
	writeJSON(w, http.StatusOK, TimelineDTO{
		ResidenceStart:       tl.Start.String(),
		QualifyingYears:      tl.Years,
		QualifyingDate:       tl.QualifyingDate.String(),
		EarlyApplicationDate: tl.EarlyApplicationDate.String(),
		DaysUntilQualifying:  qualify.DaysUntil(tl.QualifyingDate, today),
		DaysUntilEarlyWindow: qualify.DaysUntil(tl.EarlyApplicationDate, today),
		ProgressPercent:      qualify.ProgressPercent(today, tl.Start, tl.QualifyingDate),
		Complete:             tl.Complete(today),
	})
}

// Simulate stress-tests one hypothetical trip against the log plus planned
// travel. Nothing is persisted.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid simulation", err)
		return
	}

	snap, err := h.loadSnapshot(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}

	result := absence.Simulate(snap.Past, snap.Planned,
		absence.Hypothetical{StartInDays: req.StartInDays, DurationDays: req.DurationDays},
		h.Now())
	writeJSON(w, http.StatusOK, result)
}

// =============================================================================
// IMPORT / REPORT HANDLERS
// =============================================================================

// ImportCSV ingests a CSV travel history. mode=replace swaps the entire
// store; the default merge mode adds rows whose date pair is not already
// present.
func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read upload", err)
		return
	}

	result := importer.Parse(bytes.NewReader(body))
	today := h.Now()
	past, future := importer.Split(result.Trips, today)

	ctx := r.Context()
	skipped := 0

	switch r.URL.Query().Get("mode") {
	case "replace":
		if err := h.Store.ReplaceAll(ctx, past, future); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to replace trips", err)
			return
		}
	default: // merge
		existingPast, err := h.Store.ListTrips(ctx, false)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load trips", err)
			return
		}
		existingFuture, err := h.Store.ListTrips(ctx, true)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load trips", err)
			return
		}

		seen := make(map[string]bool)
		for _, t := range existingPast {
			seen[importer.Key(t)] = true
		}
		for _, t := range existingFuture {
			seen[importer.Key(t)] = true
		}

		past, skipped = dropDuplicates(past, seen, skipped)
		future, skipped = dropDuplicates(future, seen, skipped)

		if err := h.Store.AddAll(ctx, past, future); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to add trips", err)
			return
		}
	}

	writeJSON(w, http.StatusOK, ImportResponse{
		Imported: len(past) + len(future),
		Past:     len(past),
		Future:   len(future),
		Skipped:  skipped,
		Errors:   result.Errors,
	})
}

func dropDuplicates(trips []absence.Trip, seen map[string]bool, skipped int) ([]absence.Trip, int) {
	kept := trips[:0]
	for _, t := range trips {
		key := importer.Key(t)
		if seen[key] {
			skipped++
			continue
		}
		seen[key] = true
		kept = append(kept, t)
	}
	return kept, skipped
}

// GetReport renders the HTML compliance report.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	snap, err := h.loadSnapshot(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}
	today := h.Now()

	rolling := absence.BuildSeries(snap.Past, today)
	plannedTotal := 0
	for _, t := range snap.Planned {
		plannedTotal += t.AbsentDays()
	}

	level := absence.Classify(rolling.Current)
	data := report.Data{
		Name:        snap.Settings.Name,
		GeneratedOn: today.Time().Format("Monday, 2 January 2006"),
		Current:     rolling.Current,
		RiskLevel:   level.String(),
		RiskClass:   riskClass(level),
		Buffer:      absence.Buffer(rolling.Current),
		Peak:        rolling.Peak,
		RBI:         absence.BufferIndex(rolling.Current, plannedTotal),
		TripCount:   len(snap.Past),
	}
	if rolling.PeakDate != nil {
		data.PeakDate = rolling.PeakDate.FormatLong()
	}
	if snap.Timeline != nil {
		data.HasTimeline = true
		data.QualifyingDate = snap.Timeline.QualifyingDate.FormatLong()
		data.EarlyAppDate = snap.Timeline.EarlyApplicationDate.FormatLong()
	}

	for i, t := range snap.Past {
		atReturn := absence.RollingTotal(snap.Past, t.Return)
		rowLevel := absence.Classify(atReturn)
		data.Trips = append(data.Trips, report.TripRow{
			Index:           i + 1,
			Exit:            t.Exit.FormatLong(),
			Return:          t.Return.FormatLong(),
			AbsentDays:      t.AbsentDays(),
			RollingAtReturn: atReturn,
			RiskLevel:       rowLevel.String(),
			RiskClass:       riskClass(rowLevel),
			Note:            t.Note,
		})
	}
	for _, t := range snap.Planned {
		data.Planned = append(data.Planned, report.TripRow{
			Exit:       t.Exit.FormatLong(),
			Return:     t.Return.FormatLong(),
			AbsentDays: t.AbsentDays(),
			Note:       t.Note,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.Render(w, data); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render report", err)
	}
}

func riskClass(level absence.RiskLevel) string {
	switch level {
	case absence.RiskBreach:
		return "breach"
	case absence.RiskRed:
		return "red"
	case absence.RiskAmber:
		return "amber"
	case absence.RiskCaution:
		return "caution"
	default:
		return "safe"
	}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sqlite.ErrTripNotFound):
		writeError(w, http.StatusNotFound, "Trip not found", nil)
	case errors.Is(err, sqlite.ErrNotPlanned):
		writeError(w, http.StatusBadRequest, "Not a planned trip", nil)
	default:
		writeError(w, http.StatusInternalServerError, "Store failure", err)
	}
}

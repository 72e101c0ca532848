/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's value records from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry ozzo-validation Validate() methods for field-level
  checks (required, format, ranges). Cross-field rules that need parsed
  dates (return after exit) live in the handlers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/compass/residence-engine/absence"
	"github.com/compass/residence-engine/advisor"
)

const dateLayout = "2006-01-02"

// =============================================================================
// TRIPS
// =============================================================================

// TripDTO represents a travel-log or planned trip in API responses.
type TripDTO struct {
	ID         string `json:"id"`
	ExitDate   string `json:"exit_date"`
	ReturnDate string `json:"return_date"`
	Note       string `json:"note,omitempty"`
	DaysAbsent int    `json:"days_absent"`
}

func tripDTO(t absence.Trip) TripDTO {
	return TripDTO{
		ID:         t.ID,
		ExitDate:   t.Exit.String(),
		ReturnDate: t.Return.String(),
		Note:       t.Note,
		DaysAbsent: t.AbsentDays(),
	}
}

func tripDTOs(trips []absence.Trip) []TripDTO {
	dtos := make([]TripDTO, len(trips))
	for i, t := range trips {
		dtos[i] = tripDTO(t)
	}
	return dtos
}

// TripRequest is the body for creating or updating a trip.
type TripRequest struct {
	ExitDate   string `json:"exit_date"`
	ReturnDate string `json:"return_date"`
	Note       string `json:"note"`
}

func (r TripRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ExitDate, validation.Required, validation.Date(dateLayout)),
		validation.Field(&r.ReturnDate, validation.Required, validation.Date(dateLayout)),
		validation.Field(&r.Note, validation.Length(0, 500)),
	)
}

// PromoteRequest records what actually happened to a planned trip.
type PromoteRequest struct {
	ExitDate   string `json:"exit_date"`
	ReturnDate string `json:"return_date"`
	Note       string `json:"note"`
}

func (r PromoteRequest) Validate() error {
	return TripRequest(r).Validate()
}

// =============================================================================
// SETTINGS
// =============================================================================

// SettingsDTO is the stored profile.
type SettingsDTO struct {
	Name            string `json:"name"`
	VisaType        string `json:"visa_type"`
	QualifyingYears int    `json:"qualifying_years"`
	ResidenceStart  string `json:"residence_start,omitempty"`
}

// SettingsRequest updates the profile. An empty residence_start clears it.
type SettingsRequest struct {
	Name            string `json:"name"`
	VisaType        string `json:"visa_type"`
	QualifyingYears int    `json:"qualifying_years"`
	ResidenceStart  string `json:"residence_start"`
}

func (r SettingsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.VisaType, validation.Required, is.LowerCase),
		validation.Field(&r.QualifyingYears, validation.Required, validation.Min(1), validation.Max(10)),
		validation.Field(&r.ResidenceStart, validation.Date(dateLayout)),
	)
}

// =============================================================================
// COMPUTED VIEWS
// =============================================================================

// SeriesDTO carries one scanner run.
type SeriesDTO struct {
	Current  int              `json:"current"`
	Peak     int              `json:"peak"`
	PeakDate string           `json:"peak_date,omitempty"`
	Weekly   []absence.Sample `json:"weekly"`
	Monthly  []absence.Sample `json:"monthly"`
}

func seriesDTO(s absence.Series) SeriesDTO {
	dto := SeriesDTO{
		Current: s.Current,
		Peak:    s.Peak,
		Weekly:  s.Weekly,
		Monthly: s.Monthly,
	}
	if s.PeakDate != nil {
		dto.PeakDate = s.PeakDate.String()
	}
	return dto
}

// DashboardDTO is the composite view behind the main screen.
type DashboardDTO struct {
	Today              string    `json:"today"`
	Current            int       `json:"current"`
	Buffer             int       `json:"buffer"`
	RiskLevel          string    `json:"risk_level"`
	RBI                int       `json:"rbi"`
	PlannedDaysTotal   int       `json:"planned_days_total"`
	MaxSafePlannedDays int       `json:"max_safe_planned_days"`
	Rolling            SeriesDTO `json:"rolling"`
	Projected          SeriesDTO `json:"projected"`
	ProjectedRiskLevel string    `json:"projected_risk_level"`
	ProjectedBuffer    int       `json:"projected_buffer"`
	TripCount          int       `json:"trip_count"`
	PlannedCount       int       `json:"planned_count"`
}

// TimelineDTO is the qualifying-period projection.
type TimelineDTO struct {
	ResidenceStart       string `json:"residence_start"`
	QualifyingYears      int    `json:"qualifying_years"`
	QualifyingDate       string `json:"qualifying_date"`
	EarlyApplicationDate string `json:"early_application_date"`
	DaysUntilQualifying  int    `json:"days_until_qualifying"`
	DaysUntilEarlyWindow int    `json:"days_until_early_window"`
	ProgressPercent      int    `json:"progress_percent"`
	Complete             bool   `json:"complete"`
}

// InsightDTO mirrors advisor.Insight.
type InsightDTO struct {
	Kind   string `json:"kind"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Action string `json:"action"`
}

func insightDTOs(insights []advisor.Insight) []InsightDTO {
	dtos := make([]InsightDTO, len(insights))
	for i, in := range insights {
		dtos[i] = InsightDTO{Kind: string(in.Kind), Title: in.Title, Body: in.Body, Action: in.Action}
	}
	return dtos
}

// SimulateRequest describes a stress-test trip.
type SimulateRequest struct {
	StartInDays  int `json:"start_in_days"`
	DurationDays int `json:"duration_days"`
}

func (r SimulateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.StartInDays, validation.Min(0)),
		validation.Field(&r.DurationDays, validation.Required, validation.Min(1), validation.Max(730)),
	)
}

// ImportResponse summarizes a CSV import.
type ImportResponse struct {
	Imported int      `json:"imported"`
	Past     int      `json:"past"`
	Future   int      `json:"future"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// =============================================================================
// SCENARIOS / ERRORS
// =============================================================================

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

func (r LoadScenarioRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ScenarioID, validation.Required),
	)
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

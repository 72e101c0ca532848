// Package report renders a printable HTML compliance report from the
// engine's result records. It is a pure presentation layer: all numbers are
// computed upstream and passed in, nothing is recalculated here.
package report

import (
	"html/template"
	"io"
)

// TripRow is one line of the travel-history table.
type TripRow struct {
	Index           int
	Exit            string
	Return          string
	AbsentDays      int
	RollingAtReturn int
	RiskLevel       string
	RiskClass       string
	Note            string
}

// Data carries everything the report shows.
type Data struct {
	Name        string
	GeneratedOn string

	Current   int
	RiskLevel string
	RiskClass string
	Buffer    int
	Peak      int
	PeakDate  string
	RBI       int
	TripCount int

	HasTimeline    bool
	QualifyingDate string
	EarlyAppDate   string

	Trips   []TripRow
	Planned []TripRow
}

// Render writes the full HTML document.
func Render(w io.Writer, data Data) error {
	return reportTemplate.Execute(w, data)
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html><head><title>Residence Compliance Report — {{.Name}}</title>
<style>
body{font-family:Georgia,serif;max-width:820px;margin:50px auto;color:#111;line-height:1.6}
h1{font-size:28px;margin-bottom:4px;border-bottom:3px solid #b00;padding-bottom:10px}
h2{font-size:16px;margin:28px 0 10px;color:#333;border-bottom:1px solid #eee;padding-bottom:5px}
.r{display:flex;justify-content:space-between;padding:7px 0;border-bottom:1px solid #f5f5f5;font-size:14px}
table{width:100%;border-collapse:collapse;margin-top:12px;font-size:13px}
th,td{border:1px solid #e5e5e5;padding:8px 12px}th{background:#f5f5f5}
.safe{color:#2a8f46}.amber,.caution{color:#b97d0c}.red,.breach{color:#b00}
.footer{margin-top:40px;padding:12px;background:#f9f9f9;font-size:11px;color:#888;border-left:3px solid #ddd}
</style></head><body>
<h1>Residence Compliance Report</h1>
<p style="color:#666;font-size:13px">Generated {{.GeneratedOn}} · {{.Name}}</p>
<h2>Summary</h2>
<div class="r"><span>Rolling 12-Month Absences</span><span class="{{.RiskClass}}">{{.Current}} days ({{.RiskLevel}})</span></div>
<div class="r"><span>Buffer Remaining</span><span>{{.Buffer}} days</span></div>
<div class="r"><span>Peak Rolling (Historical)</span><span>{{.Peak}} days{{if .PeakDate}} — {{.PeakDate}}{{end}}</span></div>
<div class="r"><span>Risk Buffer Index</span><span>{{.RBI}}/100</span></div>
<div class="r"><span>Total Trips</span><span>{{.TripCount}}</span></div>
{{if .HasTimeline}}<div class="r"><span>Qualifying Date</span><span>{{.QualifyingDate}}</span></div>
<div class="r"><span>Earliest Application (28-day rule)</span><span>{{.EarlyAppDate}}</span></div>{{end}}
<h2>Travel History</h2>
<table><tr><th>#</th><th>Exit</th><th>Return</th><th>Days Absent</th><th>Rolling at Return</th><th>Status</th></tr>
{{range .Trips}}<tr><td>{{.Index}}</td><td>{{.Exit}}</td><td>{{.Return}}</td><td>{{.AbsentDays}}</td><td>{{.RollingAtReturn}}</td><td class="{{.RiskClass}}">{{.RiskLevel}}</td></tr>
{{end}}</table>
{{if .Planned}}<h2>Planned Future Travel</h2>
<table><tr><th>Exit</th><th>Return</th><th>Days</th><th>Note</th></tr>
{{range .Planned}}<tr><td>{{.Exit}}</td><td>{{.Return}}</td><td>{{.AbsentDays}}</td><td>{{if .Note}}{{.Note}}{{else}}—{{end}}</td></tr>
{{end}}</table>{{end}}
<div class="footer">For informational purposes only. Not legal advice. Verify compliance with the relevant immigration authority.</div>
</body></html>
`))

package render

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"

	"job-insights/models"
)

// Page is one rendered analysis.
type Page struct {
	View  string
	Title string
	HTML  []byte
}

type section struct {
	Heading string
	Note    string
	Columns []string
	Rows    []tableRow
}

type tableRow struct {
	Cells []string
	Bar   float64 // 0..100, drawn behind the first cell
}

type heatCell struct {
	Count int
	Alpha float64
}

type pageData struct {
	Title     string
	Generated string
	Empty     bool
	Summary   []string
	Sections  []section
	HeatHours []int
	HeatRows  []heatRow
}

type heatRow struct {
	Day   string
	Cells []heatCell
	Total int
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"pct": func(f float64) string { return fmt.Sprintf("%.1f", f) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 32px; color: #1f2933; background: #fff; }
h1 { font-size: 24px; margin-bottom: 4px; }
.generated { color: #7b8794; font-size: 12px; margin-bottom: 24px; }
.summary span { display: inline-block; margin-right: 24px; font-size: 14px; }
h2 { font-size: 18px; margin-top: 28px; }
.note { color: #52606d; font-size: 13px; }
table { border-collapse: collapse; width: 100%; margin-top: 8px; font-size: 13px; }
th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid #e4e7eb; }
td.bar { position: relative; }
td.bar div { position: absolute; left: 0; top: 2px; bottom: 2px; background: #c1eac5; z-index: 0; }
td.bar span { position: relative; z-index: 1; }
.empty { color: #9aa5b1; font-style: italic; }
.heat td { width: 22px; height: 18px; padding: 0; text-align: center; font-size: 10px; border: 1px solid #fff; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="generated">Generated {{.Generated}}</div>
{{if .Empty}}<p class="empty">No data available</p>{{else}}
<div class="summary">{{range .Summary}}<span>{{.}}</span>{{end}}</div>
{{range .Sections}}
<h2>{{.Heading}}</h2>
{{if .Note}}<div class="note">{{.Note}}</div>{{end}}
{{if .Rows}}<table>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}{{$bar := .Bar}}<tr>{{range $i, $c := .Cells}}{{if eq $i 0}}<td class="bar"><div style="width: {{pct $bar}}%"></div><span>{{$c}}</span></td>{{else}}<td>{{$c}}</td>{{end}}{{end}}</tr>
{{end}}</table>{{else}}<p class="empty">No data available</p>{{end}}
{{end}}
{{if .HeatRows}}<table class="heat">
<tr><th></th>{{range .HeatHours}}<th>{{.}}</th>{{end}}<th>Total</th></tr>
{{range .HeatRows}}<tr><th>{{.Day}}</th>{{range .Cells}}<td style="background: rgba(37, 99, 235, {{pct .Alpha}}%)">{{if .Count}}{{.Count}}{{end}}</td>{{end}}<th>{{.Total}}</th></tr>
{{end}}</table>{{end}}
{{end}}
</body>
</html>
`))

// RenderPage renders one analysis result as a standalone HTML document.
func RenderPage(view, title string, result any, now time.Time) (Page, error) {
	data, err := buildPage(title, result)
	if err != nil {
		return Page{}, err
	}
	data.Generated = now.Format("2006-01-02 15:04 MST")

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return Page{}, fmt.Errorf("render: execute %s: %w", view, err)
	}
	return Page{View: view, Title: title, HTML: buf.Bytes()}, nil
}

func buildPage(title string, result any) (pageData, error) {
	d := pageData{Title: title}
	switch r := result.(type) {
	case models.TierReport:
		d.Empty = r.Empty
		d.Summary = summaryLine(r)
		d.Sections = []section{tierSection("Tiers", r)}
	case models.BudgetReport:
		d.Empty = r.Empty
		d.Summary = []string{fmt.Sprintf("%s budgets", humanize.Comma(int64(r.Total)))}
		if r.Rejected > 0 {
			d.Summary = append(d.Summary, fmt.Sprintf("%d skipped", r.Rejected))
		}
		d.Sections = []section{tierSection(r.Hourly.Title, r.Hourly), tierSection(r.Fixed.Title, r.Fixed)}
	case models.CategoryReport:
		d.Empty = r.Empty
		d.Summary = []string{
			fmt.Sprintf("%s jobs", humanize.Comma(int64(r.Total))),
			fmt.Sprintf("%s distinct", humanize.Comma(int64(r.Distinct))),
		}
		d.Sections = []section{categorySection(r.Title, "Name", r.Items)}
	case models.TimelineReport:
		d.Empty = r.Empty
		d.Summary = []string{
			fmt.Sprintf("%s jobs", humanize.Comma(int64(r.Total))),
			fmt.Sprintf("peak %s (%d)", r.PeakDate, r.PeakCount),
			fmt.Sprintf("%.2f per day", r.DailyAverage),
		}
		s := section{Heading: "Jobs per day", Columns: []string{"Date", "Jobs"}}
		for _, day := range r.Days {
			s.Rows = append(s.Rows, tableRow{
				Cells: []string{day.Date, fmt.Sprint(day.Count)},
				Bar:   share(day.Count, r.PeakCount),
			})
		}
		d.Sections = []section{s}
	case models.HeatmapReport:
		d.Empty = r.Empty
		d.Summary = []string{
			fmt.Sprintf("%s jobs", humanize.Comma(int64(r.Total))),
			fmt.Sprintf("peak %s at %02d:00", r.PeakDay, r.PeakHour),
			fmt.Sprintf("times in %s", r.Location),
		}
		heatmap(&d, r)
	case models.ClientActivityReport:
		d.Empty = r.Empty
		d.Summary = []string{
			fmt.Sprintf("%d clients", len(r.Points)),
			fmt.Sprintf("top spend $%s", humanize.CommafWithDigits(r.MaxSpent, 2)),
		}
		d.Sections = []section{categorySection("Client categories", "Category", r.Categories)}
	case models.OpportunityReport:
		d.Empty = r.Empty
		d.Summary = []string{fmt.Sprintf("%s jobs scored", humanize.Comma(int64(r.Total)))}
		tiers := categorySection("Quality tiers", "Tier", r.Tiers)
		top := section{Heading: "Top opportunities", Columns: []string{"Title", "Budget", "Value", "Success", "Tier"}}
		for i, j := range r.Jobs {
			if i == 20 {
				break
			}
			top.Rows = append(top.Rows, tableRow{
				Cells: []string{j.Title, j.Budget, fmt.Sprintf("%.0f", j.Score.OpportunityValue),
					fmt.Sprintf("%.0f%%", j.Score.SuccessProbability), j.Score.QualityTier},
				Bar: j.Score.OpportunityValue,
			})
		}
		d.Sections = []section{tiers, top}
	default:
		return d, fmt.Errorf("render: no page layout for %T", result)
	}
	return d, nil
}

func summaryLine(r models.TierReport) []string {
	return []string{
		fmt.Sprintf("%s values", humanize.Comma(int64(r.Total))),
		"average " + humanize.CommafWithDigits(r.Summary.Average, 2),
		"median " + humanize.CommafWithDigits(r.Summary.Median, 2),
	}
}

func tierSection(heading string, r models.TierReport) section {
	s := section{Heading: heading, Columns: []string{"Tier", "Count", "Share", "Average"}}
	if !r.Empty {
		s.Note = fmt.Sprintf("%s values, median %s", humanize.Comma(int64(r.Total)),
			humanize.CommafWithDigits(r.Summary.Median, 2))
	}
	for _, t := range r.Tiers {
		s.Rows = append(s.Rows, tableRow{
			Cells: []string{t.Label, humanize.Comma(int64(t.Count)), fmt.Sprintf("%.1f%%", t.Percentage),
				humanize.CommafWithDigits(t.Average, 2)},
			Bar: t.Percentage,
		})
	}
	return s
}

func categorySection(heading, label string, items []models.CategoryCount) section {
	s := section{Heading: heading, Columns: []string{label, "Count", "Share"}}
	for _, c := range items {
		s.Rows = append(s.Rows, tableRow{
			Cells: []string{c.Key, humanize.Comma(int64(c.Count)), fmt.Sprintf("%.1f%%", c.Percentage)},
			Bar:   c.Percentage,
		})
	}
	return s
}

var dayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func heatmap(d *pageData, r models.HeatmapReport) {
	for h := 0; h < 24; h++ {
		d.HeatHours = append(d.HeatHours, h)
	}
	for day, cells := range r.Grid {
		row := heatRow{Day: dayNames[day], Total: r.DailyTotals[day]}
		for _, c := range cells {
			row.Cells = append(row.Cells, heatCell{Count: c, Alpha: share(c, r.MaxCell)})
		}
		d.HeatRows = append(d.HeatRows, row)
	}
	d.Sections = []section{{
		Heading: "Timing",
		Columns: []string{"Signal", "Jobs"},
		Rows: []tableRow{
			{Cells: []string{"Weekdays", fmt.Sprint(r.Weekday)}, Bar: share(r.Weekday, r.Total)},
			{Cells: []string{"Weekend", fmt.Sprint(r.Weekend)}, Bar: share(r.Weekend, r.Total)},
			{Cells: []string{"Business hours (9-17)", fmt.Sprint(r.BusinessHours)}, Bar: share(r.BusinessHours, r.Total)},
			{Cells: []string{"Off hours", fmt.Sprint(r.OffHours)}, Bar: share(r.OffHours, r.Total)},
		},
	}}
}

func share(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

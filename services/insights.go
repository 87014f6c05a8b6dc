package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"job-insights/models"
	"job-insights/utils"
)

// InsightService renders analysis results for the terminal.
type InsightService struct {
	logger *utils.Logger
	out    io.Writer
}

func NewInsightService(logger *utils.Logger, out io.Writer) *InsightService {
	return &InsightService{logger: logger, out: out}
}

// Print renders one view's result.
func (s *InsightService) Print(view string, result any) error {
	s.write(pterm.DefaultHeader.WithFullWidth().Sprintln(ViewTitle(view)))

	var err error
	switch r := result.(type) {
	case models.TierReport:
		err = s.printTiers(r, dollarsFor(view))
	case models.BudgetReport:
		err = s.printBudgets(r)
	case models.CategoryReport:
		err = s.printCategories(r)
	case models.TimelineReport:
		err = s.printTimeline(r)
	case models.HeatmapReport:
		err = s.printHeatmap(r)
	case models.ClientActivityReport:
		err = s.printClientActivity(r)
	case models.OpportunityReport:
		err = s.printOpportunities(r)
	default:
		return fmt.Errorf("insights: no printer for %T", result)
	}
	s.write("\n")
	return err
}

// PrintJobs renders the job list.
func (s *InsightService) PrintJobs(rows []models.JobSummary) error {
	s.write(pterm.DefaultHeader.WithFullWidth().Sprintln("Jobs"))
	if len(rows) == 0 {
		s.write(pterm.Warning.Sprintln("No jobs match the current filters"))
		return nil
	}
	data := pterm.TableData{{"Posted", "Title", "Budget", "Level", "Client", "Proposals", "Tier"}}
	for _, r := range rows {
		data = append(data, []string{
			r.Posted, truncate(r.Title, 48), truncate(r.Budget, 20), r.ExperienceLevel,
			truncate(r.ClientLocation, 18), r.Proposals, r.QualityTier,
		})
	}
	return s.table(data)
}

// ViewTitle returns the display title of a view key.
func ViewTitle(view string) string {
	switch view {
	case ViewJobsOverTime:
		return "Jobs Over Time"
	case ViewSkillsDemand:
		return "Skills Demand"
	case ViewBudgetAnalysis:
		return "Budget Distribution by Type"
	case ViewPremiumMap:
		return "Premium Client Map"
	case ViewOpportunityMap:
		return "Opportunity Map"
	case ViewClientCountries:
		return "Client Countries"
	case ViewClientSpending:
		return "Client Spending Tiers"
	case ViewClientHireRate:
		return "Client Hire Rate"
	case ViewClientHourlyRate:
		return "Hourly Rate Distribution"
	case ViewConnectsRequired:
		return "Connects Required"
	case ViewInterviewRate:
		return "Interviewing Activity"
	case ViewPostingHeatmap:
		return "Job Posting Heatmap"
	}
	return view
}

func dollarsFor(view string) bool {
	return view == ViewClientSpending || view == ViewClientHourlyRate
}

func (s *InsightService) printTiers(r models.TierReport, dollars bool) error {
	if r.Empty {
		s.noData(r.Title)
		return nil
	}
	format := plainNumber
	if dollars {
		format = Money
	}
	s.write(fmt.Sprintf("  %s values | average %s | median %s | range %s – %s\n\n",
		humanize.Comma(int64(r.Total)), format(r.Summary.Average), format(r.Summary.Median),
		format(r.Summary.Min), format(r.Summary.Max)))

	data := pterm.TableData{{"Tier", "Count", "Share", "Average"}}
	bars := make(pterm.Bars, 0, len(r.Tiers))
	for _, t := range r.Tiers {
		data = append(data, []string{t.Label, humanize.Comma(int64(t.Count)),
			fmt.Sprintf("%.1f%%", t.Percentage), format(t.Average)})
		bars = append(bars, pterm.Bar{Label: t.Label, Value: t.Count})
	}
	if err := s.table(data); err != nil {
		return err
	}
	return s.bars(bars)
}

func (s *InsightService) printBudgets(r models.BudgetReport) error {
	if r.Empty {
		s.noData("budget")
		return nil
	}
	for _, part := range []models.TierReport{r.Hourly, r.Fixed} {
		s.write(pterm.DefaultSection.Sprintln(part.Title))
		if err := s.printTiers(part, true); err != nil {
			return err
		}
	}
	if r.Rejected > 0 {
		s.write(pterm.Info.Sprintf("%d budgets skipped (non-USD or unreadable)\n", r.Rejected))
	}
	return nil
}

func (s *InsightService) printCategories(r models.CategoryReport) error {
	if r.Empty {
		s.noData(r.Title)
		return nil
	}
	s.write(fmt.Sprintf("  %s jobs | %s distinct\n\n",
		humanize.Comma(int64(r.Total)), humanize.Comma(int64(r.Distinct))))
	data := pterm.TableData{{"#", "Name", "Jobs", "Share"}}
	bars := make(pterm.Bars, 0, len(r.Items))
	for i, c := range r.Items {
		data = append(data, []string{fmt.Sprint(i + 1), c.Key, humanize.Comma(int64(c.Count)),
			fmt.Sprintf("%.1f%%", c.Percentage)})
		bars = append(bars, pterm.Bar{Label: truncate(c.Key, 24), Value: c.Count})
	}
	if err := s.table(data); err != nil {
		return err
	}
	return s.bars(bars)
}

func (s *InsightService) printTimeline(r models.TimelineReport) error {
	if r.Empty {
		s.noData("posting date")
		return nil
	}
	s.write(fmt.Sprintf("  %s jobs over %d days | peak %s (%d) | %.2f per day\n\n",
		humanize.Comma(int64(r.Total)), len(r.Days), r.PeakDate, r.PeakCount, r.DailyAverage))
	bars := make(pterm.Bars, 0, len(r.Days))
	for _, d := range r.Days {
		bars = append(bars, pterm.Bar{Label: d.Date, Value: d.Count})
	}
	return s.bars(bars)
}

var heatShades = []string{" ", "░", "▒", "▓", "█"}

func (s *InsightService) printHeatmap(r models.HeatmapReport) error {
	if r.Empty {
		s.noData("posting time")
		return nil
	}
	var b strings.Builder
	b.WriteString("      ")
	for h := 0; h < 24; h++ {
		fmt.Fprintf(&b, "%-2d", h)
	}
	b.WriteString("\n")
	for d := 0; d < 7; d++ {
		fmt.Fprintf(&b, "  %s ", weekdays[d][:3])
		for h := 0; h < 24; h++ {
			shade := heatShades[r.Grid[d][h]*(len(heatShades)-1)/r.MaxCell]
			b.WriteString(shade + shade)
		}
		fmt.Fprintf(&b, " %d\n", r.DailyTotals[d])
	}
	s.write(b.String())

	s.write(fmt.Sprintf("\n  Times shown in %s\n", r.Location))
	data := pterm.TableData{
		{"Signal", "Jobs", "Share"},
		{"Peak day: " + r.PeakDay, fmt.Sprint(r.DailyTotals[dayIndex(r.PeakDay)]), share(r.DailyTotals[dayIndex(r.PeakDay)], r.Total)},
		{fmt.Sprintf("Peak hour: %02d:00", r.PeakHour), fmt.Sprint(r.HourlyTotals[r.PeakHour]), share(r.HourlyTotals[r.PeakHour], r.Total)},
		{"Weekdays", fmt.Sprint(r.Weekday), share(r.Weekday, r.Total)},
		{"Weekend", fmt.Sprint(r.Weekend), share(r.Weekend, r.Total)},
		{"Business hours (9-17)", fmt.Sprint(r.BusinessHours), share(r.BusinessHours, r.Total)},
		{"Off hours", fmt.Sprint(r.OffHours), share(r.OffHours, r.Total)},
		{"Morning (7-11)", fmt.Sprint(r.Morning), share(r.Morning, r.Total)},
		{"Lunch (11-14)", fmt.Sprint(r.Lunch), share(r.Lunch, r.Total)},
		{"Afternoon (14-18)", fmt.Sprint(r.Afternoon), share(r.Afternoon, r.Total)},
		{"Evening (18-22)", fmt.Sprint(r.Evening), share(r.Evening, r.Total)},
	}
	if r.Skipped > 0 {
		s.write(pterm.Info.Sprintf("%d jobs without a readable timestamp skipped\n", r.Skipped))
	}
	return s.table(data)
}

func dayIndex(name string) int {
	for i, d := range weekdays {
		if d == name {
			return i
		}
	}
	return 0
}

func (s *InsightService) printClientActivity(r models.ClientActivityReport) error {
	if r.Empty {
		s.noData("client activity")
		return nil
	}
	s.write(fmt.Sprintf("  %d clients | most jobs posted %s | top spend %s\n\n",
		len(r.Points), plainNumber(r.MaxJobs), Money(r.MaxSpent)))
	data := pterm.TableData{{"Category", "Clients", "Share"}}
	for _, c := range r.Categories {
		data = append(data, []string{c.Key, fmt.Sprint(c.Count), fmt.Sprintf("%.1f%%", c.Percentage)})
	}
	return s.table(data)
}

func (s *InsightService) printOpportunities(r models.OpportunityReport) error {
	if r.Empty {
		s.noData("opportunity")
		return nil
	}
	tiers := pterm.TableData{{"Quality", "Jobs", "Share"}}
	for _, t := range r.Tiers {
		tiers = append(tiers, []string{t.Key, fmt.Sprint(t.Count), fmt.Sprintf("%.1f%%", t.Percentage)})
	}
	if err := s.table(tiers); err != nil {
		return err
	}

	top := r.Jobs
	if len(top) > 10 {
		top = top[:10]
	}
	data := pterm.TableData{{"Title", "Budget", "Value", "Success", "Competition", "Tier"}}
	for _, j := range top {
		data = append(data, []string{
			truncate(j.Title, 44), truncate(j.Budget, 18),
			fmt.Sprintf("%.0f", j.Score.OpportunityValue),
			fmt.Sprintf("%.0f%%", j.Score.SuccessProbability),
			fmt.Sprintf("%.0f", j.Score.CompetitionLevel),
			j.Score.QualityTier,
		})
	}
	s.write("\n")
	return s.table(data)
}

func (s *InsightService) table(data pterm.TableData) error {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("insights: render table: %w", err)
	}
	s.write(out + "\n")
	return nil
}

func (s *InsightService) bars(bars pterm.Bars) error {
	if len(bars) == 0 {
		return nil
	}
	out, err := pterm.DefaultBarChart.WithHorizontal().WithShowValue().WithBars(bars).Srender()
	if err != nil {
		return fmt.Errorf("insights: render bars: %w", err)
	}
	s.write(out + "\n")
	return nil
}

func (s *InsightService) noData(what string) {
	s.write(pterm.Warning.Sprintf("No %s data available\n", strings.ToLower(what)))
}

func (s *InsightService) write(text string) {
	if _, err := io.WriteString(s.out, text); err != nil {
		s.logger.Warn("[insights] write failed: %v", err)
	}
}

// Money formats a dollar amount with thousands separators.
func Money(v float64) string {
	return "$" + humanize.CommafWithDigits(v, 2)
}

func plainNumber(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}

func share(n, total int) string {
	return fmt.Sprintf("%.1f%%", percent(n, total))
}

func truncate(s string, max int) string {
	if len([]rune(s)) <= max {
		return s
	}
	return string([]rune(s)[:max-3]) + "..."
}

package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"job-insights/models"
	"job-insights/utils"
)

// View keys, in sidebar order.
const (
	ViewJobsOverTime     = "jobs-over-time"
	ViewSkillsDemand     = "skills-demand"
	ViewBudgetAnalysis   = "budget-analysis"
	ViewPremiumMap       = "premium-map"
	ViewOpportunityMap   = "opportunity-map"
	ViewClientCountries  = "client-countries"
	ViewClientSpending   = "client-spending"
	ViewClientHireRate   = "client-hire-rate"
	ViewClientHourlyRate = "client-hourly-rate"
	ViewConnectsRequired = "connects-required"
	ViewInterviewRate    = "interview-rate"
	ViewPostingHeatmap   = "posting-heatmap"
)

var viewOrder = []string{
	ViewJobsOverTime, ViewSkillsDemand, ViewBudgetAnalysis, ViewPremiumMap,
	ViewOpportunityMap, ViewClientCountries, ViewClientSpending, ViewClientHireRate,
	ViewClientHourlyRate, ViewConnectsRequired, ViewInterviewRate, ViewPostingHeatmap,
}

// ErrUnknownView is returned for a view key Analyze does not know.
var ErrUnknownView = errors.New("unknown view")

const (
	topCountries  = 12
	topSkills     = 15
	maxHourlyRate = 200
)

var weekdays = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Views lists every view key.
func Views() []string {
	return append([]string(nil), viewOrder...)
}

// Analyzer runs the chart analyses. It holds configuration only; every call
// recomputes from the records it is given.
type Analyzer struct {
	logger   *utils.Logger
	cleaner  *Cleaner
	tiers    TierSet
	scorer   *Scorer
	location *time.Location
}

// NewAnalyzer creates an Analyzer. Heatmap cells are read in the process's
// local zone. A nil scorer uses the default tables and the wall clock.
func NewAnalyzer(logger *utils.Logger, tiers TierSet, scorer *Scorer) *Analyzer {
	if scorer == nil {
		scorer = NewScorer(DefaultScoreTables(), nil)
	}
	return &Analyzer{
		logger:   logger,
		cleaner:  NewCleaner(logger),
		tiers:    tiers,
		scorer:   scorer,
		location: time.Local,
	}
}

// WithLocation overrides the zone used by the heatmap.
func (a *Analyzer) WithLocation(loc *time.Location) *Analyzer {
	cp := *a
	cp.location = loc
	return &cp
}

// Scorer returns the analyzer's opportunity scorer.
func (a *Analyzer) Scorer() *Scorer { return a.scorer }

// Clean parses records with the analyzer's cleaner.
func (a *Analyzer) Clean(records []*models.JobRecord) []*models.Job {
	return a.cleaner.Clean(records)
}

// Analyze parses records and runs the named view.
func (a *Analyzer) Analyze(view string, records []*models.JobRecord) (any, error) {
	jobs := a.cleaner.Clean(records)
	var result any
	switch view {
	case ViewJobsOverTime:
		result = AnalyzeTimeline(jobs)
	case ViewSkillsDemand:
		result = AnalyzeSkills(jobs)
	case ViewBudgetAnalysis:
		result = AnalyzeBudgets(jobs, a.tiers)
	case ViewPremiumMap:
		result = AnalyzeClientActivity(jobs)
	case ViewOpportunityMap:
		result = AnalyzeOpportunities(jobs, a.scorer.Pinned())
	case ViewClientCountries:
		result = AnalyzeCountries(jobs)
	case ViewClientSpending:
		result = AnalyzeClientSpending(jobs, a.tiers.Spending)
	case ViewClientHireRate:
		result = AnalyzeHireRates(jobs, a.tiers.HireRate)
	case ViewClientHourlyRate:
		result = AnalyzeHourlyRates(jobs, a.tiers.HourlyRate)
	case ViewConnectsRequired:
		result = AnalyzeConnects(jobs, a.tiers.Connects)
	case ViewInterviewRate:
		result = AnalyzeInterviewing(jobs, a.tiers.Interviewing)
	case ViewPostingHeatmap:
		result = AnalyzeHeatmap(jobs, a.location)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
	a.logger.Debug("[analyzer] %s over %d records (%d parsed)", view, len(records), len(jobs))
	return result, nil
}

// tierReport builds the shared tiered output over already-parsed values.
func tierReport(title string, values []float64, tiers TierTable) models.TierReport {
	return models.TierReport{
		Title:   title,
		Total:   len(values),
		Summary: Summarize(values),
		Tiers:   Bucketize(values, tiers),
		Empty:   len(values) == 0,
	}
}

// collect gathers one optional field across jobs, keeping values accepted by keep.
func collect(jobs []*models.Job, field func(*models.Job) *float64, keep func(float64) bool) []float64 {
	values := make([]float64, 0, len(jobs))
	for _, j := range jobs {
		if v := field(j); v != nil && keep(*v) {
			values = append(values, *v)
		}
	}
	return values
}

func positive(v float64) bool { return v > 0 }
func always(float64) bool { return true }

// AnalyzeClientSpending tiers clients by total spent.
func AnalyzeClientSpending(jobs []*models.Job, tiers TierTable) models.TierReport {
	values := collect(jobs, func(j *models.Job) *float64 { return j.ClientSpent }, always)
	return tierReport("Client Spending", values, tiers)
}

// AnalyzeHireRates tiers clients by hire rate.
func AnalyzeHireRates(jobs []*models.Job, tiers TierTable) models.TierReport {
	values := collect(jobs, func(j *models.Job) *float64 { return j.ClientHireRate }, always)
	return tierReport("Client Hire Rate", values, tiers)
}

// AnalyzeConnects tiers jobs by connects required; zero means unknown.
func AnalyzeConnects(jobs []*models.Job, tiers TierTable) models.TierReport {
	values := collect(jobs, func(j *models.Job) *float64 { return j.Connects }, positive)
	return tierReport("Connects Required", values, tiers)
}

// AnalyzeInterviewing tiers jobs by number of candidates interviewing.
func AnalyzeInterviewing(jobs []*models.Job, tiers TierTable) models.TierReport {
	values := collect(jobs, func(j *models.Job) *float64 { return j.Interviewing }, always)
	return tierReport("Interviewing", values, tiers)
}

// AnalyzeHourlyRates tiers hourly budgets, ignoring implausible rates.
func AnalyzeHourlyRates(jobs []*models.Job, tiers TierTable) models.TierReport {
	var values []float64
	for _, j := range jobs {
		if j.BudgetType != models.BudgetHourly || j.Budget == nil {
			continue
		}
		if v := *j.Budget; v > 0 && v <= maxHourlyRate {
			values = append(values, v)
		}
	}
	return tierReport("Hourly Rates", values, tiers)
}

// AnalyzeBudgets splits budgets into hourly and fixed distributions.
func AnalyzeBudgets(jobs []*models.Job, tiers TierSet) models.BudgetReport {
	var hourly, fixed []float64
	report := models.BudgetReport{}
	for _, j := range jobs {
		if j.BudgetRejected {
			report.Rejected++
			continue
		}
		if j.Budget == nil {
			continue
		}
		switch j.BudgetType {
		case models.BudgetHourly:
			hourly = append(hourly, *j.Budget)
		case models.BudgetFixed:
			fixed = append(fixed, *j.Budget)
		}
	}
	report.Hourly = tierReport("Hourly", hourly, tiers.HourlyRate)
	report.Fixed = tierReport("Fixed", fixed, tiers.FixedBudget)
	report.Total = len(hourly) + len(fixed)
	report.Empty = report.Total == 0
	return report
}

// AnalyzeCountries ranks client locations.
func AnalyzeCountries(jobs []*models.Job) models.CategoryReport {
	counts, included := CountByCategory(jobs, func(j *models.Job) (string, bool) {
		return j.ClientCountry, j.ClientCountry != ""
	}, 0)
	distinct := len(counts)
	if len(counts) > topCountries {
		counts = counts[:topCountries]
	}
	return models.CategoryReport{
		Title:    "Client Countries",
		Total:    included,
		Distinct: distinct,
		Items:    counts,
		Empty:    included == 0,
	}
}

// AnalyzeSkills ranks skills by the number of jobs mentioning them. Each
// job counts a skill at most once; percentages are of jobs with any skill.
func AnalyzeSkills(jobs []*models.Job) models.CategoryReport {
	var mentions []string
	contributing := 0
	for _, j := range jobs {
		skills := JobSkills(j)
		if len(skills) == 0 {
			continue
		}
		contributing++
		mentions = append(mentions, skills...)
	}

	counts, _ := CountByCategory(mentions, func(s string) (string, bool) { return s, true }, 0)
	distinct := len(counts)
	if len(counts) > topSkills {
		counts = counts[:topSkills]
	}
	for i := range counts {
		counts[i].Percentage = percent(counts[i].Count, contributing)
	}
	return models.CategoryReport{
		Title:    "Skills Demand",
		Total:    contributing,
		Distinct: distinct,
		Items:    counts,
		Empty:    contributing == 0,
	}
}

// AnalyzeTimeline counts postings per UTC calendar day.
func AnalyzeTimeline(jobs []*models.Job) models.TimelineReport {
	byDate := make(map[string]int)
	total := 0
	for _, j := range jobs {
		if j.PostedAt == nil {
			continue
		}
		byDate[j.PostedAt.UTC().Format("2006-01-02")]++
		total++
	}

	report := models.TimelineReport{Days: make([]models.DayCount, 0, len(byDate)), Total: total}
	for _, date := range sortedKeys(byDate) {
		c := byDate[date]
		report.Days = append(report.Days, models.DayCount{Date: date, Count: c})
		if c > report.PeakCount {
			report.PeakCount = c
			report.PeakDate = date
		}
	}
	if len(report.Days) > 0 {
		report.DailyAverage = round2(float64(total) / float64(len(report.Days)))
	}
	report.Empty = total == 0
	return report
}

// AnalyzeHeatmap builds the 7×24 posting grid in loc. Timestamps are not
// normalized to the poster's zone; the grid reflects loc's wall clock.
func AnalyzeHeatmap(jobs []*models.Job, loc *time.Location) models.HeatmapReport {
	if loc == nil {
		loc = time.Local
	}
	r := models.HeatmapReport{Location: loc.String()}
	for _, j := range jobs {
		if j.PostedAt == nil {
			r.Skipped++
			continue
		}
		t := j.PostedAt.In(loc)
		day, hour := int(t.Weekday()), t.Hour()
		r.Grid[day][hour]++
		r.DailyTotals[day]++
		r.HourlyTotals[hour]++
		r.Total++
		if r.Grid[day][hour] > r.MaxCell {
			r.MaxCell = r.Grid[day][hour]
		}
	}
	if r.Total == 0 {
		r.Empty = true
		return r
	}

	peakDay := 0
	for d, c := range r.DailyTotals {
		if c > r.DailyTotals[peakDay] {
			peakDay = d
		}
	}
	r.PeakDay = weekdays[peakDay]
	for h, c := range r.HourlyTotals {
		if c > r.HourlyTotals[r.PeakHour] {
			r.PeakHour = h
		}
	}

	r.Weekend = r.DailyTotals[0] + r.DailyTotals[6]
	r.Weekday = r.Total - r.Weekend
	r.BusinessHours = sumHours(r.HourlyTotals, 9, 17)
	r.OffHours = r.Total - r.BusinessHours
	r.Morning = sumHours(r.HourlyTotals, 7, 11)
	r.Lunch = sumHours(r.HourlyTotals, 11, 14)
	r.Afternoon = sumHours(r.HourlyTotals, 14, 18)
	r.Evening = sumHours(r.HourlyTotals, 18, 22)
	return r
}

func sumHours(hours [24]int, from, to int) int {
	total := 0
	for h := from; h < to; h++ {
		total += hours[h]
	}
	return total
}

// Client activity categories, highest first.
const (
	ActivityHigh     = "High Volume & High Spend"
	ActivityActive   = "Active Clients"
	ActivityModerate = "Moderate Activity"
	ActivityLow      = "Low Activity"
)

// AnalyzeClientActivity places clients by jobs posted and total spent,
// categorized relative to the busiest and biggest-spending client.
func AnalyzeClientActivity(jobs []*models.Job) models.ClientActivityReport {
	report := models.ClientActivityReport{Points: make([]models.ClientPoint, 0)}
	for _, j := range jobs {
		if j.ClientJobsPosted == nil || j.ClientSpent == nil {
			continue
		}
		if *j.ClientJobsPosted <= 0 || *j.ClientSpent <= 0 {
			continue
		}
		location := j.ClientCountry
		if location == "" {
			location = "Unknown"
		}
		report.Points = append(report.Points, models.ClientPoint{
			JobID:      j.Record.ID,
			Location:   location,
			JobsPosted: *j.ClientJobsPosted,
			TotalSpent: *j.ClientSpent,
		})
		report.MaxJobs = math.Max(report.MaxJobs, *j.ClientJobsPosted)
		report.MaxSpent = math.Max(report.MaxSpent, *j.ClientSpent)
	}
	if len(report.Points) == 0 {
		report.Empty = true
		report.Categories = []models.CategoryCount{}
		return report
	}

	for i := range report.Points {
		p := &report.Points[i]
		p.Category, p.Size = activityCategory(p.JobsPosted/report.MaxJobs, p.TotalSpent/report.MaxSpent)
	}
	report.Categories, _ = CountByCategory(report.Points, func(p models.ClientPoint) (string, bool) {
		return p.Category, true
	}, 0)
	return report
}

func activityCategory(jobsShare, spentShare float64) (string, int) {
	switch {
	case jobsShare >= 0.7 && spentShare >= 0.7:
		return ActivityHigh, 35
	case jobsShare >= 0.5 || spentShare >= 0.5:
		return ActivityActive, 30
	case jobsShare >= 0.3 || spentShare >= 0.3:
		return ActivityModerate, 25
	}
	return ActivityLow, 20
}

// AnalyzeOpportunities scores every job and ranks by opportunity value.
// Ties keep store order.
func AnalyzeOpportunities(jobs []*models.Job, scorer *Scorer) models.OpportunityReport {
	report := models.OpportunityReport{Jobs: make([]models.ScoredJob, 0, len(jobs))}
	for _, j := range jobs {
		report.Jobs = append(report.Jobs, models.ScoredJob{
			JobID:  j.Record.ID,
			Title:  j.Record.Title.Text(),
			URL:    j.Record.JobURL.Text(),
			Budget: j.Record.BudgetAmount.Text(),
			Score:  scorer.Score(j),
		})
	}
	sort.SliceStable(report.Jobs, func(i, k int) bool {
		return report.Jobs[i].Score.OpportunityValue > report.Jobs[k].Score.OpportunityValue
	})
	report.Tiers, _ = CountByCategory(report.Jobs, func(s models.ScoredJob) (string, bool) {
		return s.Score.QualityTier, true
	}, 0)
	report.Total = len(report.Jobs)
	report.Empty = report.Total == 0
	return report
}

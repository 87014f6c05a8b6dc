package services

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"job-insights/models"
	"job-insights/utils"
)

func testAnalyzer() *Analyzer {
	return NewAnalyzer(utils.Discard(), DefaultTierSet(), testScorer()).WithLocation(time.UTC)
}

func sampleRecords() []*models.JobRecord {
	verified := true
	rating := 4.9
	return []*models.JobRecord{
		{
			ID: 1, JobURL: models.Str("https://example.com/jobs/1"), Title: models.Str("React developer"),
			CreatedAt: models.Str("2024-03-04T10:30:00Z"), BudgetAmount: models.Str("$40.00"),
			BudgetType: models.Str("Hourly"), ExperienceLevel: models.Str("Expert"),
			ClientLocation: models.Str("United States"), ClientTotalSpent: models.Str("$30,000"),
			ClientHireRate: models.Str("85%"), ClientRating: &rating, PaymentVerified: &verified,
			ProposalsCount: models.Str("15 to 20"), ConnectsRequired: models.Str("12"),
			Skills: `["React","Node.js"]`,
		},
		{
			ID: 2, JobURL: models.Str("https://example.com/jobs/2"), Title: models.Str("Logo design"),
			CreatedAt: models.Str("2024-03-04T10:45:00Z"), BudgetAmount: models.Str("$150"),
			BudgetType: models.Str("Fixed-price"), ExperienceLevel: models.Str("Entry level"),
			ClientLocation: models.Str("Germany"), ProposalsCount: models.Str("50+"),
		},
		{
			ID: 3, JobURL: models.Str("https://example.com/jobs/3"), Title: models.Str("Translate docs"),
			CreatedAt: models.Str("2024-03-09T20:00:00Z"), BudgetAmount: models.Str("₹5,000"),
			BudgetType: models.Str("Fixed-price"), ClientLocation: models.Str("India"),
		},
	}
}

func TestViewsListsEveryView(t *testing.T) {
	views := Views()
	if len(views) != 12 {
		t.Fatalf("Views() = %d keys; want 12", len(views))
	}
	views[0] = "changed"
	if Views()[0] != ViewJobsOverTime {
		t.Error("Views() shares its backing array")
	}
}

func TestAnalyzeUnknownView(t *testing.T) {
	_, err := testAnalyzer().Analyze("nope", sampleRecords())
	if !errors.Is(err, ErrUnknownView) {
		t.Errorf("Analyze(nope) err = %v; want ErrUnknownView", err)
	}
}

func TestAnalyzeIsRepeatable(t *testing.T) {
	a := testAnalyzer()
	records := sampleRecords()
	for _, view := range Views() {
		first, err := a.Analyze(view, records)
		if err != nil {
			t.Fatalf("Analyze(%s): %v", view, err)
		}
		second, _ := a.Analyze(view, records)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Analyze(%s) differs between identical calls", view)
		}
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	a := testAnalyzer()
	for _, view := range Views() {
		result, err := a.Analyze(view, nil)
		if err != nil {
			t.Fatalf("Analyze(%s, nil): %v", view, err)
		}
		var empty bool
		switch r := result.(type) {
		case models.TierReport:
			empty = r.Empty && r.Tiers != nil
		case models.BudgetReport:
			empty = r.Empty && r.Hourly.Tiers != nil && r.Fixed.Tiers != nil
		case models.CategoryReport:
			empty = r.Empty && r.Items != nil
		case models.TimelineReport:
			empty = r.Empty && r.Days != nil
		case models.HeatmapReport:
			empty = r.Empty
		case models.ClientActivityReport:
			empty = r.Empty && r.Points != nil && r.Categories != nil
		case models.OpportunityReport:
			empty = r.Empty && r.Jobs != nil && r.Tiers != nil
		default:
			t.Fatalf("Analyze(%s) returned %T", view, result)
		}
		if !empty {
			t.Errorf("Analyze(%s, nil) = %+v; want empty report with non-nil slices", view, result)
		}
	}
}

func TestAnalyzeHeatmap(t *testing.T) {
	records := append(sampleRecords(), &models.JobRecord{ID: 4, Title: models.Str("No date")})
	r := AnalyzeHeatmap(testAnalyzer().Clean(records), time.UTC)

	if r.Total != 3 || r.Skipped != 1 {
		t.Fatalf("total/skipped = %d/%d; want 3/1", r.Total, r.Skipped)
	}
	if r.Grid[1][10] != 2 || r.MaxCell != 2 {
		t.Errorf("Monday 10:00 = %d, max %d; want 2, 2", r.Grid[1][10], r.MaxCell)
	}
	if r.PeakDay != "Monday" || r.PeakHour != 10 {
		t.Errorf("peak = %s %d; want Monday 10", r.PeakDay, r.PeakHour)
	}
	if r.Weekday != 2 || r.Weekend != 1 {
		t.Errorf("weekday/weekend = %d/%d; want 2/1", r.Weekday, r.Weekend)
	}
	if r.BusinessHours != 2 || r.OffHours != 1 || r.Morning != 2 || r.Evening != 1 {
		t.Errorf("hour bands = %+v", r)
	}
	if r.Location != "UTC" {
		t.Errorf("location = %q; want UTC", r.Location)
	}

	shifted := AnalyzeHeatmap(testAnalyzer().Clean(records), time.FixedZone("UTC+3", 3*3600))
	if shifted.Grid[1][13] != 2 {
		t.Errorf("UTC+3 Monday 13:00 = %d; want 2", shifted.Grid[1][13])
	}
}

func TestAnalyzeHourlyRatesIgnoresImplausible(t *testing.T) {
	jobs := testAnalyzer().Clean([]*models.JobRecord{
		{ID: 1, BudgetType: models.Str("Hourly"), BudgetAmount: models.Str("$20")},
		{ID: 2, BudgetType: models.Str("Hourly"), BudgetAmount: models.Str("$250")},
		{ID: 3, BudgetType: models.Str("Hourly"), BudgetAmount: models.Str("$0")},
		{ID: 4, BudgetType: models.Str("Fixed-price"), BudgetAmount: models.Str("$100")},
		{ID: 5, BudgetType: models.Str("Hourly"), BudgetAmount: models.Str("$200")},
	})
	r := AnalyzeHourlyRates(jobs, DefaultTierSet().HourlyRate)
	if r.Total != 2 || r.Summary.Max != 200 {
		t.Errorf("hourly rates = %+v; want 2 values up to 200", r)
	}
}

func TestAnalyzeBudgetsCountsRejected(t *testing.T) {
	r := AnalyzeBudgets(testAnalyzer().Clean(sampleRecords()), DefaultTierSet())
	if r.Total != 2 || r.Rejected != 1 {
		t.Errorf("budgets total/rejected = %d/%d; want 2/1", r.Total, r.Rejected)
	}
	if r.Hourly.Total != 1 || r.Fixed.Total != 1 {
		t.Errorf("hourly/fixed = %d/%d; want 1/1", r.Hourly.Total, r.Fixed.Total)
	}
}

func TestAnalyzeCountries(t *testing.T) {
	countries := []string{
		"US", "US", "DE", "FR", "IN", "BR", "CA", "AU", "JP", "NL", "ES", "IT", "PL", "SE",
		"Unknown", "",
	}
	records := make([]*models.JobRecord, 0, len(countries))
	for i, c := range countries {
		records = append(records, &models.JobRecord{ID: int64(i), ClientLocation: models.Str(c)})
	}
	r := AnalyzeCountries(testAnalyzer().Clean(records))

	if r.Total != 14 || r.Distinct != 13 {
		t.Errorf("total/distinct = %d/%d; want 14/13", r.Total, r.Distinct)
	}
	if len(r.Items) != 12 {
		t.Errorf("items = %d; want top 12", len(r.Items))
	}
	if r.Items[0].Key != "US" || r.Items[0].Count != 2 {
		t.Errorf("first = %+v; want US x2", r.Items[0])
	}
	for _, c := range r.Items {
		if c.Key == "Unknown" {
			t.Error("Unknown location counted")
		}
	}
}

func TestAnalyzeSkillsCountsOncePerJob(t *testing.T) {
	jobs := testAnalyzer().Clean([]*models.JobRecord{
		{ID: 1, Title: models.Str("React developer"), Skills: `["React","react","ReactJS"]`},
		{ID: 2, Title: models.Str("JavaScript expert")},
		{ID: 3, Title: models.Str("Copy editing")},
	})
	r := AnalyzeSkills(jobs)

	if r.Total != 2 {
		t.Fatalf("contributing jobs = %d; want 2", r.Total)
	}
	want := []models.CategoryCount{
		{Key: "React", Count: 1, Percentage: 50},
		{Key: "JavaScript", Count: 1, Percentage: 50},
	}
	if !reflect.DeepEqual(r.Items, want) {
		t.Errorf("items = %+v; want %+v", r.Items, want)
	}
}

func TestAnalyzeTimeline(t *testing.T) {
	jobs := testAnalyzer().Clean([]*models.JobRecord{
		{ID: 1, CreatedAt: models.Str("2024-03-01T23:30:00-02:00")},
		{ID: 2, CreatedAt: models.Str("2024-03-01T10:00:00Z")},
		{ID: 3, CreatedAt: models.Str("2024-03-01T11:00:00Z")},
		{ID: 4, CreatedAt: models.Str("garbage")},
	})
	r := AnalyzeTimeline(jobs)

	want := []models.DayCount{{Date: "2024-03-01", Count: 2}, {Date: "2024-03-02", Count: 1}}
	if !reflect.DeepEqual(r.Days, want) {
		t.Errorf("days = %+v; want %+v", r.Days, want)
	}
	if r.Total != 3 || r.PeakDate != "2024-03-01" || r.PeakCount != 2 || r.DailyAverage != 1.5 {
		t.Errorf("timeline = %+v", r)
	}
}

func TestAnalyzeClientActivity(t *testing.T) {
	client := func(id int64, posted, spent string) *models.JobRecord {
		return &models.JobRecord{
			ID: id, ClientJobsPosted: models.Str(posted), ClientTotalSpent: models.Str(spent),
			ClientLocation: models.Str("Canada"),
		}
	}
	r := AnalyzeClientActivity(testAnalyzer().Clean([]*models.JobRecord{
		client(1, "10", "$100,000"),
		client(2, "6", "$10,000"),
		client(3, "1", "$35,000"),
		client(4, "1", "$1,000"),
		client(5, "0", "$5"),
	}))

	if len(r.Points) != 4 || r.MaxJobs != 10 || r.MaxSpent != 100000 {
		t.Fatalf("points = %d, max %v/%v; want 4, 10/100000", len(r.Points), r.MaxJobs, r.MaxSpent)
	}
	wantCategories := []string{ActivityHigh, ActivityActive, ActivityModerate, ActivityLow}
	for i, p := range r.Points {
		if p.Category != wantCategories[i] {
			t.Errorf("point %d category = %q; want %q", p.JobID, p.Category, wantCategories[i])
		}
	}
	if r.Points[0].Size != 35 || r.Points[3].Size != 20 {
		t.Errorf("sizes = %d/%d; want 35/20", r.Points[0].Size, r.Points[3].Size)
	}
}

func TestAnalyzeOpportunitiesRanksByValue(t *testing.T) {
	jobs := testAnalyzer().Clean([]*models.JobRecord{
		{ID: 1, BudgetType: models.Str("Fixed-price"), BudgetAmount: models.Str("$100")},
		{ID: 2, BudgetType: models.Str("Hourly"), BudgetAmount: models.Str("$80")},
	})
	r := AnalyzeOpportunities(jobs, testScorer())

	if r.Total != 2 || r.Jobs[0].JobID != 2 || r.Jobs[1].JobID != 1 {
		t.Fatalf("ranking = %+v; want job 2 before job 1", r.Jobs)
	}
	if math.Abs(r.Jobs[0].Score.OpportunityValue-60) > 1e-9 {
		t.Errorf("top value = %v; want 60", r.Jobs[0].Score.OpportunityValue)
	}
	if r.Tiers[0].Key != "decent" || r.Tiers[1].Key != "basic" {
		t.Errorf("tiers = %+v; want decent then basic", r.Tiers)
	}
}

func TestHourlyRatesWithoutOpenTierDropOutliers(t *testing.T) {
	jobs := testAnalyzer().Clean([]*models.JobRecord{
		{ID: 1, BudgetType: models.Str("hourly"), BudgetAmount: models.Str("$10")},
		{ID: 2, BudgetType: models.Str("hourly"), BudgetAmount: models.Str("$30")},
		{ID: 3, BudgetType: models.Str("hourly"), BudgetAmount: models.Str("$100")},
	})
	tiers := TierTable{
		{Label: "Budget", Min: 0, Max: 25},
		{Label: "Standard", Min: 25, Max: 40},
		{Label: "Premium", Min: 40, Max: 60},
	}
	r := AnalyzeHourlyRates(jobs, tiers)

	if r.Total != 3 || len(r.Tiers) != 2 {
		t.Fatalf("report = %+v; want 3 values in 2 tiers", r)
	}
	if r.Tiers[0].Label != "Budget" || r.Tiers[0].Count != 1 || math.Abs(r.Tiers[0].Percentage-100.0/3) > 1e-9 {
		t.Errorf("first tier = %+v; want Budget x1 (33.3%%)", r.Tiers[0])
	}
	for _, tier := range r.Tiers {
		if tier.Label == "Premium" {
			t.Error("100 must not land in the last finite tier")
		}
	}
}

func TestAnalyzeSkillsMergesCaseVariants(t *testing.T) {
	jobs := testAnalyzer().Clean([]*models.JobRecord{
		{ID: 1, Title: models.Str("Landing page"), Skills: `["Web Design"]`},
		{ID: 2, Title: models.Str("Shop redesign"), Skills: `["WEB DESIGN"]`},
		{ID: 3, Title: models.Str("Portfolio site"), Skills: `["web design"]`},
	})
	r := AnalyzeSkills(jobs)

	want := []models.CategoryCount{{Key: "Web design", Count: 3, Percentage: 100}}
	if !reflect.DeepEqual(r.Items, want) {
		t.Errorf("items = %+v; want %+v", r.Items, want)
	}
	if r.Distinct != 1 {
		t.Errorf("distinct = %d; want 1", r.Distinct)
	}
}

func TestAnalyzeSkillsKeepsTopAndDistinct(t *testing.T) {
	var records []*models.JobRecord
	for i := 0; i < topSkills+5; i++ {
		records = append(records, &models.JobRecord{
			ID:     int64(i + 1),
			Title:  models.Str("Gig"),
			Skills: `["Skill` + string(rune('a'+i)) + `","Common"]`,
		})
	}
	r := AnalyzeSkills(testAnalyzer().Clean(records))

	if len(r.Items) != topSkills {
		t.Fatalf("items = %d; want %d", len(r.Items), topSkills)
	}
	if r.Distinct != topSkills+6 {
		t.Errorf("distinct = %d; want %d", r.Distinct, topSkills+6)
	}
	if r.Items[0].Key != "Common" || r.Items[0].Percentage != 100 {
		t.Errorf("top = %+v; want Common at 100%%", r.Items[0])
	}
}

func TestAnalyzeOpportunitiesUsesOneClockReading(t *testing.T) {
	tick := scoreNow
	clock := func() time.Time {
		tick = tick.Add(48 * time.Hour)
		return tick
	}
	a := NewAnalyzer(utils.Discard(), DefaultTierSet(), NewScorer(DefaultScoreTables(), clock))
	posted := scoreNow.Format(time.RFC3339)
	records := []*models.JobRecord{
		{ID: 1, Title: models.Str("Same gig"), CreatedAt: models.Str(posted)},
		{ID: 2, Title: models.Str("Same gig"), CreatedAt: models.Str(posted)},
		{ID: 3, Title: models.Str("Same gig"), CreatedAt: models.Str(posted)},
	}
	out, err := a.Analyze(ViewOpportunityMap, records)
	if err != nil {
		t.Fatal(err)
	}
	r := out.(models.OpportunityReport)
	for _, j := range r.Jobs {
		if j.Score.UrgencyScore != 15 {
			t.Errorf("job %d urgency = %v; want 15 for every job", j.JobID, j.Score.UrgencyScore)
		}
	}

	rows := a.ListJobs(records, JobFilter{}, 0)
	for _, row := range rows[1:] {
		if row.Posted != rows[0].Posted {
			t.Errorf("job %d posted %q; want %q like the first row", row.ID, row.Posted, rows[0].Posted)
		}
	}
}

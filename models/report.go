package models

import (
	"encoding/json"
	"math"
	"time"
)

// TierStat is one populated row of a tier breakdown.
type TierStat struct {
	Label      string  `json:"label"`
	Color      string  `json:"color,omitempty"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"` // +Inf for the open top tier
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Average    float64 `json:"average"`
}

// Open reports whether the tier has no upper bound.
func (t TierStat) Open() bool {
	return math.IsInf(t.Max, 1)
}

// MarshalJSON writes an open top tier's bound as null; JSON has no infinity.
func (t TierStat) MarshalJSON() ([]byte, error) {
	type plain TierStat
	out := struct {
		plain
		Max *float64 `json:"max"`
	}{plain: plain(t)}
	if !math.IsInf(t.Max, 1) {
		out.Max = &t.Max
	}
	return json.Marshal(out)
}

// CategoryCount is one row of a grouped count.
type CategoryCount struct {
	Key        string  `json:"key"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Summary describes a set of numeric values.
type Summary struct {
	Count   int     `json:"count"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
	Median  float64 `json:"median"`
}

// TierReport is the output shared by every tiered chart view.
type TierReport struct {
	Title   string     `json:"title"`
	Total   int        `json:"total"`
	Summary Summary    `json:"summary"`
	Tiers   []TierStat `json:"tiers"`
	Empty   bool       `json:"empty"`
}

// BudgetReport splits budgets by hourly and fixed price.
type BudgetReport struct {
	Total    int        `json:"total"`
	Hourly   TierReport `json:"hourly"`
	Fixed    TierReport `json:"fixed"`
	Rejected int        `json:"rejected"` // non-USD or unparsable amounts
	Empty    bool       `json:"empty"`
}

// DayCount is one day on the posting timeline.
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD, UTC
	Count int    `json:"count"`
}

// TimelineReport counts postings per day.
type TimelineReport struct {
	Days         []DayCount `json:"days"`
	Total        int        `json:"total"`
	PeakDate     string     `json:"peak_date"`
	PeakCount    int        `json:"peak_count"`
	DailyAverage float64    `json:"daily_average"`
	Empty        bool       `json:"empty"`
}

// HeatmapReport is the day-of-week by hour-of-day posting grid.
type HeatmapReport struct {
	Grid          [7][24]int `json:"grid"` // [0]=Sunday
	DailyTotals   [7]int     `json:"daily_totals"`
	HourlyTotals  [24]int    `json:"hourly_totals"`
	Total         int        `json:"total"`
	Skipped       int        `json:"skipped"`
	MaxCell       int        `json:"max_cell"`
	PeakDay       string     `json:"peak_day"`
	PeakHour      int        `json:"peak_hour"`
	Weekday       int        `json:"weekday"`
	Weekend       int        `json:"weekend"`
	BusinessHours int        `json:"business_hours"`
	OffHours      int        `json:"off_hours"`
	Morning       int        `json:"morning"`
	Lunch         int        `json:"lunch"`
	Afternoon     int        `json:"afternoon"`
	Evening       int        `json:"evening"`
	Location      string     `json:"location"`
	Empty         bool       `json:"empty"`
}

// CategoryReport is a ranked top-N grouping (countries, skills).
type CategoryReport struct {
	Title    string          `json:"title"`
	Total    int             `json:"total"`
	Distinct int             `json:"distinct"`
	Items    []CategoryCount `json:"items"`
	Empty    bool            `json:"empty"`
}

// ClientPoint is one client on the activity scatter.
type ClientPoint struct {
	JobID      int64   `json:"job_id"`
	Location   string  `json:"location"`
	JobsPosted float64 `json:"jobs_posted"`
	TotalSpent float64 `json:"total_spent"`
	Category   string  `json:"category"`
	Size       int     `json:"size"`
}

// ClientActivityReport groups clients by posting volume and spend.
type ClientActivityReport struct {
	Points     []ClientPoint   `json:"points"`
	Categories []CategoryCount `json:"categories"`
	MaxJobs    float64         `json:"max_jobs"`
	MaxSpent   float64         `json:"max_spent"`
	Empty      bool            `json:"empty"`
}

// OpportunityScore is the full scoring tuple for one record.
type OpportunityScore struct {
	BudgetScore        float64 `json:"budget_score"`
	ClientQualityScore float64 `json:"client_quality_score"`
	CompetitionLevel   float64 `json:"competition_level"`
	UrgencyScore       float64 `json:"urgency_score"`
	OverallScore       float64 `json:"overall_score"`
	SuccessProbability float64 `json:"success_probability"`
	OpportunityValue   float64 `json:"opportunity_value"`
	QualityTier        string  `json:"quality_tier"`
}

// ScoredJob pairs a record's identity with its score.
type ScoredJob struct {
	JobID  int64            `json:"job_id"`
	Title  string           `json:"title"`
	URL    string           `json:"url"`
	Budget string           `json:"budget"`
	Score  OpportunityScore `json:"score"`
}

// OpportunityReport ranks records by opportunity value.
type OpportunityReport struct {
	Jobs  []ScoredJob     `json:"jobs"`
	Tiers []CategoryCount `json:"tiers"`
	Total int             `json:"total"`
	Empty bool            `json:"empty"`
}

// JobSummary is one row of the searchable job list.
type JobSummary struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	Budget          string    `json:"budget"`
	BudgetType      string    `json:"budget_type"`
	ExperienceLevel string    `json:"experience_level"`
	Skills          []string  `json:"skills"`
	ClientLocation  string    `json:"client_location"`
	Proposals       string    `json:"proposals"`
	PostedAt        time.Time `json:"posted_at"`
	Posted          string    `json:"posted"`
	QualityTier     string    `json:"quality_tier"`
}

package services

import (
	"fmt"
	"strings"
	"time"

	"job-insights/models"
)

// JobFilter selects jobs for the list view.
type JobFilter struct {
	Term            string
	ExperienceLevel string // "" or "all" matches every level
}

// SearchJobs returns the jobs matching f in their original order. The term
// matches case-insensitively against title, description, client location
// and skills; with no term every job matches, including untitled ones.
func SearchJobs(jobs []*models.Job, f JobFilter) []*models.Job {
	term := strings.ToLower(strings.TrimSpace(f.Term))
	level := strings.ToLower(strings.TrimSpace(f.ExperienceLevel))
	if level == "all" {
		level = ""
	}
	if level != "" {
		level = normaliseExperience(level)
	}

	out := make([]*models.Job, 0, len(jobs))
	for _, j := range jobs {
		if level != "" && j.Experience != level {
			continue
		}
		if term != "" && !matchesTerm(j, term) {
			continue
		}
		out = append(out, j)
	}
	return out
}

func matchesTerm(j *models.Job, term string) bool {
	if strings.Contains(strings.ToLower(j.Text), term) {
		return true
	}
	if strings.Contains(strings.ToLower(j.Record.ClientLocation.Text()), term) {
		return true
	}
	for _, s := range j.Skills {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

// SummarizeJob builds the list row for one job.
func SummarizeJob(j *models.Job, scorer *Scorer) models.JobSummary {
	r := j.Record
	summary := models.JobSummary{
		ID:              r.ID,
		Title:           r.Title.Text(),
		URL:             r.JobURL.Text(),
		Budget:          r.BudgetAmount.Text(),
		BudgetType:      r.BudgetType.Text(),
		ExperienceLevel: r.ExperienceLevel.Text(),
		Skills:          j.Skills,
		ClientLocation:  r.ClientLocation.Text(),
		Proposals:       r.ProposalsCount.Text(),
		Posted:          "N/A",
	}
	if summary.Budget == "" {
		summary.Budget = "Not specified"
	}
	now := time.Now
	if scorer != nil {
		now = scorer.now
		summary.QualityTier = scorer.Score(j).QualityTier
	}
	if j.PostedAt != nil {
		summary.PostedAt = *j.PostedAt
		summary.Posted = RelativeTime(*j.PostedAt, now())
	}
	return summary
}

// RelativeTime renders how long ago t was, as "3 hours ago".
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	minutes := int(d.Minutes())
	hours := int(d.Hours())
	days := hours / 24

	switch {
	case minutes < 1:
		return "just now"
	case minutes < 60:
		return plural(minutes, "minute")
	case hours < 24:
		return plural(hours, "hour")
	case days < 7:
		return plural(days, "day")
	case days/7 < 4:
		return plural(days/7, "week")
	case days/30 < 12:
		// days 28 and 29 are past four weeks but short of 30
		return plural(max(days/30, 1), "month")
	}
	return plural(days/365, "year")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// ListJobs parses records, applies f, and summarizes at most limit matches
// (limit <= 0 means all), newest input first as given.
func (a *Analyzer) ListJobs(records []*models.JobRecord, f JobFilter, limit int) []models.JobSummary {
	matched := SearchJobs(a.cleaner.Clean(records), f)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	scorer := a.scorer.Pinned()
	rows := make([]models.JobSummary, 0, len(matched))
	for _, j := range matched {
		rows = append(rows, SummarizeJob(j, scorer))
	}
	a.logger.Debug("[analyzer] job list: %d of %d records matched", len(rows), len(records))
	return rows
}

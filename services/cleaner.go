package services

import (
	"strings"

	"job-insights/models"
	"job-insights/utils"
)

// Cleaner turns raw JobRecords into parsed Jobs. It never drops a record
// for a bad field; each field parses independently and failures leave that
// field nil.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean parses every record. Records sharing a job URL are scraped
// duplicates; only the first (newest, given store order) is kept.
func (c *Cleaner) Clean(records []*models.JobRecord) []*models.Job {
	seen := make(map[string]struct{})
	result := make([]*models.Job, 0, len(records))

	for _, r := range records {
		if r == nil {
			continue
		}
		if url := r.JobURL.Text(); url != "" {
			if _, dup := seen[url]; dup {
				c.logger.Debug("[cleaner] Duplicate URL skipped: %s", url)
				continue
			}
			seen[url] = struct{}{}
		}
		result = append(result, ParseJob(r))
	}

	if dropped := len(records) - len(result); dropped > 0 {
		c.logger.Debug("[cleaner] Parsed %d → %d jobs (dropped %d duplicates)",
			len(records), len(result), dropped)
	}
	return result
}

// ParseJob runs every field parser over one record.
func ParseJob(r *models.JobRecord) *models.Job {
	job := &models.Job{
		Record:          r,
		BudgetType:      parseBudgetType(r.BudgetType.Text()),
		Experience:      normaliseExperience(r.ExperienceLevel.Text()),
		ClientCountry:   normaliseCountry(r.ClientLocation.Text()),
		PaymentVerified: r.PaymentVerified != nil && *r.PaymentVerified,
		Skills:          ParseSkills(r.Skills),
	}

	if amount := r.BudgetAmount.Text(); amount != "" {
		if v, ok := ParseMoneyUSD(amount); ok {
			job.Budget = &v
		} else {
			job.BudgetRejected = true
		}
	}

	job.ClientSpent = optional(ParseMoneyUSD(r.ClientTotalSpent.Text()))
	job.ClientHireRate = optional(ParsePercentage(r.ClientHireRate.Text()))
	job.ClientRating = optional(ParseRating(r.ClientRating))
	job.ClientTotalHires = optional(ParseCount(r.ClientTotalHires.Text()))
	job.ClientJobsPosted = optional(ParseCount(r.ClientJobsPosted.Text()))
	job.Proposals = optional(ParseCount(r.ProposalsCount.Text()))
	job.Interviewing = optional(ParseCount(r.InterviewingCount.Text()))
	job.Connects = optional(ParseCount(r.ConnectsRequired.Text()))

	if t, ok := ParseTimestamp(r.CreatedAt.Text()); ok {
		job.PostedAt = &t
	}

	job.Text = strings.TrimSpace(r.Title.Text() + " " + DescriptionText(r.Description.Text()))
	return job
}

func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

func parseBudgetType(s string) models.BudgetType {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "hourly"):
		return models.BudgetHourly
	case strings.Contains(s, "fixed"):
		return models.BudgetFixed
	}
	return models.BudgetUnknown
}

func normaliseExperience(s string) string {
	s = strings.ToLower(normaliseText(s))
	switch {
	case strings.HasPrefix(s, "entry"):
		return "entry level"
	case strings.HasPrefix(s, "intermediate"):
		return "intermediate"
	case strings.HasPrefix(s, "expert"):
		return "expert"
	}
	return s
}

// normaliseCountry returns "" for blank or placeholder locations.
func normaliseCountry(s string) string {
	s = normaliseText(s)
	if strings.EqualFold(s, "unknown") || strings.EqualFold(s, "n/a") {
		return ""
	}
	return s
}

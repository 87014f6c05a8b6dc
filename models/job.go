package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NullString is a nullable text column. Scraped rows store numbers, counts
// and money as free text, and some sources hand them back as JSON numbers,
// so decoding accepts strings, numbers and booleans alike.
type NullString struct {
	String string
	Valid  bool
}

// Str builds a valid NullString.
func Str(s string) NullString {
	return NullString{String: s, Valid: true}
}

// Text returns the trimmed value, or "" when null.
func (n NullString) Text() string {
	if !n.Valid {
		return ""
	}
	return strings.TrimSpace(n.String)
}

// Present reports whether the value is non-null and not blank.
func (n NullString) Present() bool {
	return n.Text() != ""
}

func (n *NullString) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*n = NullString{}
	case string:
		*n = Str(t)
	case float64:
		*n = Str(strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		*n = Str(strconv.FormatBool(t))
	default:
		// arrays and objects keep their JSON text
		*n = Str(string(data))
	}
	return nil
}

func (n NullString) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.String)
}

// Scan implements sql.Scanner.
func (n *NullString) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*n = NullString{}
	case string:
		*n = Str(v)
	case []byte:
		*n = Str(string(v))
	case int64:
		*n = Str(strconv.FormatInt(v, 10))
	case float64:
		*n = Str(strconv.FormatFloat(v, 'f', -1, 64))
	case bool:
		*n = Str(strconv.FormatBool(v))
	case time.Time:
		*n = Str(v.Format(time.RFC3339Nano))
	default:
		return fmt.Errorf("models: cannot scan %T into NullString", value)
	}
	return nil
}

// JobRecord is one row of the scraped_jobs table exactly as the record store
// returns it. Nothing here is parsed; see services for the field parsers.
type JobRecord struct {
	ID                  int64      `json:"id"`
	JobURL              NullString `json:"job_url"`
	JobID               NullString `json:"job_id"`
	CreatedAt           NullString `json:"created_at"`
	UpdatedAt           NullString `json:"updated_at"`
	Title               NullString `json:"title"`
	PostedDate          NullString `json:"posted_date"`
	Location            NullString `json:"location"`
	Description         NullString `json:"description"`
	BudgetAmount        NullString `json:"budget_amount"`
	BudgetType          NullString `json:"budget_type"`
	ExperienceLevel     NullString `json:"experience_level"`
	ProjectType         NullString `json:"project_type"`
	Skills              any        `json:"skills"`
	ProposalsCount      NullString `json:"proposals_count"`
	LastViewedByClient  NullString `json:"last_viewed_by_client"`
	InterviewingCount   NullString `json:"interviewing_count"`
	InvitesSent         NullString `json:"invites_sent"`
	UnansweredInvites   NullString `json:"unanswered_invites"`
	ConnectsRequired    NullString `json:"connects_required"`
	PaymentVerified     *bool      `json:"payment_method_verified"`
	ClientRating        *float64   `json:"client_rating"`
	ClientReviewsScore  *float64   `json:"client_reviews_score"`
	ClientReviewsCount  *float64   `json:"client_reviews_count"`
	ClientLocation      NullString `json:"client_location"`
	ClientJobsPosted    NullString `json:"client_jobs_posted"`
	ClientTotalSpent    NullString `json:"client_total_spent"`
	ClientTotalHires    NullString `json:"client_total_hires"`
	ClientActiveHires   NullString `json:"client_active_hires"`
	ClientMemberSince   NullString `json:"client_member_since"`
	ClientHireRate      NullString `json:"client_hire_rate"`
	ClientOpenJobs      NullString `json:"client_open_jobs"`
	ClientAvgHourlyRate NullString `json:"client_avg_hourly_rate"`
	ClientTotalHours    NullString `json:"client_total_hours"`
	ClientIndustry      NullString `json:"client_industry"`
	ClientCompanySize   NullString `json:"client_company_size"`
}

// Columns lists the scraped_jobs columns in the order Fields returns them.
var Columns = []string{
	"id", "job_url", "job_id", "created_at", "updated_at", "title", "posted_date",
	"location", "description", "budget_amount", "budget_type", "experience_level",
	"project_type", "skills", "proposals_count", "last_viewed_by_client",
	"interviewing_count", "invites_sent", "unanswered_invites", "connects_required",
	"payment_method_verified", "client_rating", "client_reviews_score",
	"client_reviews_count", "client_location", "client_jobs_posted",
	"client_total_spent", "client_total_hires", "client_active_hires",
	"client_member_since", "client_hire_rate", "client_open_jobs",
	"client_avg_hourly_rate", "client_total_hours", "client_industry",
	"client_company_size",
}

// Fields returns scan targets for every column in Columns order. Skills is
// scanned through a byte slice by the caller since its shape varies.
func (j *JobRecord) Fields(skills *[]byte) []any {
	return []any{
		&j.ID, &j.JobURL, &j.JobID, &j.CreatedAt, &j.UpdatedAt, &j.Title, &j.PostedDate,
		&j.Location, &j.Description, &j.BudgetAmount, &j.BudgetType, &j.ExperienceLevel,
		&j.ProjectType, skills, &j.ProposalsCount, &j.LastViewedByClient,
		&j.InterviewingCount, &j.InvitesSent, &j.UnansweredInvites, &j.ConnectsRequired,
		&j.PaymentVerified, &j.ClientRating, &j.ClientReviewsScore,
		&j.ClientReviewsCount, &j.ClientLocation, &j.ClientJobsPosted,
		&j.ClientTotalSpent, &j.ClientTotalHires, &j.ClientActiveHires,
		&j.ClientMemberSince, &j.ClientHireRate, &j.ClientOpenJobs,
		&j.ClientAvgHourlyRate, &j.ClientTotalHours, &j.ClientIndustry,
		&j.ClientCompanySize,
	}
}

// BudgetType classifies how a job pays.
type BudgetType string

const (
	BudgetHourly  BudgetType = "hourly"
	BudgetFixed   BudgetType = "fixed"
	BudgetUnknown BudgetType = ""
)

// Job is a JobRecord after field parsing. A nil pointer means the field was
// absent or malformed and is excluded from that field's aggregates only.
type Job struct {
	Record *JobRecord

	Budget         *float64 // USD; mean of a range
	BudgetType     BudgetType
	BudgetRejected bool // amount present but foreign or unparsable
	Experience     string

	ClientSpent      *float64
	ClientHireRate   *float64
	ClientRating     *float64
	ClientTotalHires *float64
	ClientJobsPosted *float64
	ClientCountry    string
	PaymentVerified  bool

	Proposals    *float64
	Interviewing *float64
	Connects     *float64

	PostedAt *time.Time
	Skills   []string // explicit skills column only
	Text     string   // title plus plain-text description, for matching
}

package services

import (
	"math"
	"time"

	"job-insights/models"
)

// Step awards Points to any value >= Min. Step tables are ordered by
// descending Min and the first matching step wins.
type Step struct {
	Min    float64
	Points float64
}

// StepTable is a descending threshold table.
type StepTable []Step

// Points returns the score of the first step whose Min v reaches, or 0.
func (t StepTable) Points(v float64) float64 {
	for _, s := range t {
		if v >= s.Min {
			return s.Points
		}
	}
	return 0
}

// ScoreWeights holds the composite weights. Success probability is bounded
// to [ProbabilityFloor, ProbabilityCeiling].
type ScoreWeights struct {
	OverallBudget      float64
	OverallClient      float64
	OverallUrgency     float64
	SuccessOverall     float64
	SuccessOpenness    float64
	ValueBudget        float64
	ValueClient        float64
	ProbabilityFloor   float64
	ProbabilityCeiling float64
}

// QualityTier maps a minimum overall score to a label.
type QualityTier struct {
	Min   float64
	Label string
}

// ScoreTables is every threshold the opportunity scorer uses.
type ScoreTables struct {
	HourlyBudget StepTable
	FixedBudget  StepTable

	ClientSpent     StepTable // up to 50
	ClientHireRate  StepTable // up to 25
	ClientRating    StepTable // up to 20
	PaymentVerified float64   // up to 10
	ClientHires     StepTable // up to 15
	Experience      map[string]float64
	ClientCap       float64

	Proposals      StepTable
	Connects       StepTable
	CompetitionCap float64

	UrgencyDays StepTable // keyed on negative days so the table stays descending

	Weights      ScoreWeights
	QualityTiers []QualityTier
}

// DefaultScoreTables returns the built-in scoring configuration.
func DefaultScoreTables() ScoreTables {
	return ScoreTables{
		HourlyBudget: StepTable{{75, 100}, {50, 90}, {35, 75}, {25, 60}, {15, 40}, {0.01, 20}},
		FixedBudget:  StepTable{{5000, 100}, {2500, 90}, {1000, 75}, {500, 60}, {250, 40}, {0.01, 20}},

		ClientSpent:     StepTable{{100000, 50}, {25000, 40}, {5000, 30}, {1000, 20}, {0.01, 10}},
		ClientHireRate:  StepTable{{80, 25}, {60, 20}, {40, 15}, {20, 10}, {0.01, 5}},
		ClientRating:    StepTable{{4.8, 20}, {4.5, 15}, {4.0, 10}, {0.01, 5}},
		PaymentVerified: 10,
		ClientHires:     StepTable{{50, 15}, {20, 12}, {10, 9}, {5, 6}, {1, 3}},
		Experience:      map[string]float64{"expert": 10, "intermediate": 5},
		ClientCap:       100,

		Proposals:      StepTable{{50, 90}, {20, 70}, {15, 55}, {10, 40}, {5, 25}, {0, 10}},
		Connects:       StepTable{{21, 10}, {16, 7}, {11, 5}, {6, 2}},
		CompetitionCap: 100,

		UrgencyDays: StepTable{{-1, 20}, {-3, 15}, {-7, 10}, {-14, 5}},

		Weights: ScoreWeights{
			OverallBudget:      0.4,
			OverallClient:      0.4,
			OverallUrgency:     0.2,
			SuccessOverall:     0.7,
			SuccessOpenness:    0.3,
			ValueBudget:        0.6,
			ValueClient:        0.4,
			ProbabilityFloor:   5,
			ProbabilityCeiling: 95,
		},
		QualityTiers: []QualityTier{{75, "premium"}, {55, "good"}, {35, "decent"}, {math.Inf(-1), "basic"}},
	}
}

// Scorer computes opportunity scores. Now is injected so urgency is
// reproducible.
type Scorer struct {
	tables ScoreTables
	now    func() time.Time
}

// NewScorer builds a scorer; a nil now uses time.Now.
func NewScorer(tables ScoreTables, now func() time.Time) *Scorer {
	if now == nil {
		now = time.Now
	}
	return &Scorer{tables: tables, now: now}
}

// Pinned returns a copy of s whose clock is frozen at the current reading,
// so every job in one pass is scored against the same instant.
func (s *Scorer) Pinned() *Scorer {
	t := s.now()
	return &Scorer{tables: s.tables, now: func() time.Time { return t }}
}

// Score computes the full tuple for one job. Missing inputs contribute zero
// to their sub-score.
func (s *Scorer) Score(job *models.Job) models.OpportunityScore {
	w := s.tables.Weights
	budget := s.BudgetScore(job)
	client := s.ClientQualityScore(job)
	competition := s.CompetitionLevel(job)
	urgency := s.UrgencyScore(job)

	overall := w.OverallBudget*budget + w.OverallClient*client + w.OverallUrgency*urgency
	success := w.SuccessOverall*overall + w.SuccessOpenness*(100-competition)
	success = math.Max(w.ProbabilityFloor, math.Min(w.ProbabilityCeiling, success))
	value := w.ValueBudget*budget + w.ValueClient*client

	return models.OpportunityScore{
		BudgetScore:        budget,
		ClientQualityScore: client,
		CompetitionLevel:   competition,
		UrgencyScore:       urgency,
		OverallScore:       round2(overall),
		SuccessProbability: round2(success),
		OpportunityValue:   round2(value),
		QualityTier:        s.QualityTier(overall),
	}
}

// BudgetScore rates the job's budget on the hourly or fixed table.
func (s *Scorer) BudgetScore(job *models.Job) float64 {
	if job.Budget == nil {
		return 0
	}
	switch job.BudgetType {
	case models.BudgetHourly:
		return s.tables.HourlyBudget.Points(*job.Budget)
	case models.BudgetFixed:
		return s.tables.FixedBudget.Points(*job.Budget)
	}
	return 0
}

// ClientQualityScore sums the client's history signals, capped.
func (s *Scorer) ClientQualityScore(job *models.Job) float64 {
	t := s.tables
	var score float64
	if job.ClientSpent != nil {
		score += t.ClientSpent.Points(*job.ClientSpent)
	}
	if job.ClientHireRate != nil {
		score += t.ClientHireRate.Points(*job.ClientHireRate)
	}
	if job.ClientRating != nil {
		score += t.ClientRating.Points(*job.ClientRating)
	}
	if job.PaymentVerified {
		score += t.PaymentVerified
	}
	if job.ClientTotalHires != nil {
		score += t.ClientHires.Points(*job.ClientTotalHires)
	}
	score += t.Experience[job.Experience]
	return math.Min(score, t.ClientCap)
}

// CompetitionLevel estimates how contested the job is from its proposal
// count and connects price.
func (s *Scorer) CompetitionLevel(job *models.Job) float64 {
	var level float64
	if job.Proposals != nil {
		level += s.tables.Proposals.Points(*job.Proposals)
	}
	if job.Connects != nil {
		level += s.tables.Connects.Points(*job.Connects)
	}
	return math.Min(level, s.tables.CompetitionCap)
}

// UrgencyScore rewards recent postings.
func (s *Scorer) UrgencyScore(job *models.Job) float64 {
	if job.PostedAt == nil {
		return 0
	}
	days := s.now().Sub(*job.PostedAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	return s.tables.UrgencyDays.Points(-days)
}

// QualityTier labels an overall score.
func (s *Scorer) QualityTier(overall float64) string {
	for _, t := range s.tables.QualityTiers {
		if overall >= t.Min {
			return t.Label
		}
	}
	return ""
}

package services

import (
	"math"
	"testing"
	"time"

	"job-insights/models"
)

var scoreNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func testScorer() *Scorer {
	return NewScorer(DefaultScoreTables(), func() time.Time { return scoreNow })
}

func fp(v float64) *float64 { return &v }

func postedAgo(d time.Duration) *time.Time {
	t := scoreNow.Add(-d)
	return &t
}

func TestScoreStrongJob(t *testing.T) {
	job := &models.Job{
		Record:           &models.JobRecord{},
		Budget:           fp(40),
		BudgetType:       models.BudgetHourly,
		Experience:       "expert",
		ClientSpent:      fp(30000),
		ClientHireRate:   fp(85),
		ClientRating:     fp(4.9),
		ClientTotalHires: fp(12),
		PaymentVerified:  true,
		Proposals:        fp(17.5),
		Connects:         fp(12),
		PostedAt:         postedAgo(48 * time.Hour),
	}
	s := testScorer().Score(job)

	checks := []struct {
		name      string
		got, want float64
	}{
		{"budget", s.BudgetScore, 75},
		{"client", s.ClientQualityScore, 100},
		{"competition", s.CompetitionLevel, 60},
		{"urgency", s.UrgencyScore, 15},
		{"overall", s.OverallScore, 73},
		{"success", s.SuccessProbability, 63.1},
		{"value", s.OpportunityValue, 85},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s = %v; want %v", c.name, c.got, c.want)
		}
	}
	if s.QualityTier != "good" {
		t.Errorf("tier = %q; want good", s.QualityTier)
	}
}

func TestScoreEmptyJob(t *testing.T) {
	s := testScorer().Score(&models.Job{Record: &models.JobRecord{}})
	if s.OverallScore != 0 || s.OpportunityValue != 0 {
		t.Errorf("empty job overall/value = %v/%v; want 0/0", s.OverallScore, s.OpportunityValue)
	}
	if s.SuccessProbability != 30 {
		t.Errorf("empty job success = %v; want 30", s.SuccessProbability)
	}
	if s.QualityTier != "basic" {
		t.Errorf("empty job tier = %q; want basic", s.QualityTier)
	}
}

func TestZeroHireRateScoresNothing(t *testing.T) {
	job := ParseJob(&models.JobRecord{ClientHireRate: models.Str("0")})
	if job.ClientHireRate == nil || *job.ClientHireRate != 0 {
		t.Fatalf("hire rate \"0\" parsed as %v; want 0", job.ClientHireRate)
	}
	if got := testScorer().ClientQualityScore(job); got != 0 {
		t.Errorf("ClientQualityScore = %v; want 0", got)
	}
}

func TestSuccessProbabilityFloor(t *testing.T) {
	job := &models.Job{Record: &models.JobRecord{}, Proposals: fp(50), Connects: fp(25)}
	s := testScorer().Score(job)
	if s.CompetitionLevel != 100 {
		t.Fatalf("competition = %v; want 100", s.CompetitionLevel)
	}
	if s.SuccessProbability != 5 {
		t.Errorf("success = %v; want floor 5", s.SuccessProbability)
	}
}

func TestBudgetScoreByType(t *testing.T) {
	s := testScorer()
	tests := []struct {
		typ    models.BudgetType
		budget *float64
		want   float64
	}{
		{models.BudgetHourly, fp(80), 100},
		{models.BudgetHourly, fp(10), 20},
		{models.BudgetFixed, fp(80), 20},
		{models.BudgetFixed, fp(2500), 90},
		{models.BudgetUnknown, fp(500), 0},
		{models.BudgetFixed, nil, 0},
		{models.BudgetFixed, fp(0), 0},
	}
	for _, tt := range tests {
		job := &models.Job{Record: &models.JobRecord{}, BudgetType: tt.typ, Budget: tt.budget}
		if got := s.BudgetScore(job); got != tt.want {
			t.Errorf("BudgetScore(%s, %v) = %v; want %v", tt.typ, tt.budget, got, tt.want)
		}
	}
}

func TestUrgencyScore(t *testing.T) {
	s := testScorer()
	tests := []struct {
		ago  time.Duration
		want float64
	}{
		{12 * time.Hour, 20},
		{-time.Hour, 20},
		{60 * time.Hour, 15},
		{5 * 24 * time.Hour, 10},
		{10 * 24 * time.Hour, 5},
		{30 * 24 * time.Hour, 0},
	}
	for _, tt := range tests {
		job := &models.Job{Record: &models.JobRecord{}, PostedAt: postedAgo(tt.ago)}
		if got := s.UrgencyScore(job); got != tt.want {
			t.Errorf("UrgencyScore(%v ago) = %v; want %v", tt.ago, got, tt.want)
		}
	}
}

func TestQualityTier(t *testing.T) {
	s := testScorer()
	tests := []struct {
		overall float64
		want    string
	}{
		{90, "premium"},
		{75, "premium"},
		{74.99, "good"},
		{55, "good"},
		{35, "decent"},
		{34.9, "basic"},
		{0, "basic"},
	}
	for _, tt := range tests {
		if got := s.QualityTier(tt.overall); got != tt.want {
			t.Errorf("QualityTier(%v) = %q; want %q", tt.overall, got, tt.want)
		}
	}
}

func TestPinnedScorerHoldsOneInstant(t *testing.T) {
	tick := scoreNow
	s := NewScorer(DefaultScoreTables(), func() time.Time {
		tick = tick.Add(36 * time.Hour)
		return tick
	})
	pinned := s.Pinned()
	job := &models.Job{Record: &models.JobRecord{}, PostedAt: postedAgo(0)}

	first := pinned.UrgencyScore(job)
	for i := 0; i < 5; i++ {
		if got := pinned.UrgencyScore(job); got != first {
			t.Fatalf("call %d urgency = %v; want %v", i, got, first)
		}
	}
	if first != 15 {
		t.Errorf("urgency = %v; want 15 (pinned 36h after posting)", first)
	}
}

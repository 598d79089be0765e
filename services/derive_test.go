package services

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"executive-analytics/models"
)

var refNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func daysAgo(n int) *time.Time {
	t := refNow.AddDate(0, 0, -n)
	return &t
}

func TestEngagementScoreRecentLoginAndTenure(t *testing.T) {
	v := models.Volunteer{LastLogin: daysAgo(10), VolunteerSince: daysAgo(3 * 365)}
	d := DeriveVolunteer(v, refNow)

	if math.Abs(d.Derived.EngagementScore-0.86) > 1e-9 {
		t.Errorf("EngagementScore: got %v, want 0.86", d.Derived.EngagementScore)
	}
	if math.Abs(d.Derived.RetentionRiskScore-0.14) > 1e-9 {
		t.Errorf("RetentionRiskScore: got %v, want 0.14", d.Derived.RetentionRiskScore)
	}
}

func TestEngagementScoreLoginBoundaries(t *testing.T) {
	tests := []struct {
		days int
		want float64
	}{
		{0, 0.8},
		{29, 0.8},
		{30, 0.6},
		{89, 0.6},
		{90, 0.5},
		{400, 0.5},
	}
	for _, tt := range tests {
		got := EngagementScore(models.Volunteer{LastLogin: daysAgo(tt.days)}, refNow)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("login %d days ago: got %v, want %v", tt.days, got, tt.want)
		}
	}
}

func TestEngagementScoreTenureSaturates(t *testing.T) {
	short := EngagementScore(models.Volunteer{VolunteerSince: daysAgo(365)}, refNow)
	long := EngagementScore(models.Volunteer{VolunteerSince: daysAgo(30 * 365)}, refNow)
	future := EngagementScore(models.Volunteer{VolunteerSince: daysAgo(-400)}, refNow)

	if math.Abs(short-0.52) > 1e-9 {
		t.Errorf("1 year tenure: got %v, want 0.52", short)
	}
	if math.Abs(long-0.7) > 1e-9 {
		t.Errorf("30 year tenure: got %v, want 0.7", long)
	}
	if want := 0.5 + (-400.0/365)*0.02; math.Abs(future-want) > 1e-9 {
		t.Errorf("future start date: got %v, want %v", future, want)
	}
	if empty := EngagementScore(models.Volunteer{}, refNow); empty != 0.5 {
		t.Errorf("no dates: got %v, want 0.5", empty)
	}
}

func TestEngagementAndRiskAlwaysSumToOne(t *testing.T) {
	for login := 0; login < 200; login += 7 {
		for tenure := -40000; tenure < 6000; tenure += 373 {
			d := DeriveVolunteer(models.Volunteer{LastLogin: daysAgo(login), VolunteerSince: daysAgo(tenure)}, refNow)
			e, r := d.Derived.EngagementScore, d.Derived.RetentionRiskScore
			if e < 0 || e > 1 {
				t.Fatalf("score out of range: %v", e)
			}
			if e+r != 1 {
				t.Fatalf("login=%d tenure=%d: %v + %v != 1", login, tenure, e, r)
			}
		}
	}
}

func TestEngagementScoreFutureStartLowersScore(t *testing.T) {
	tests := []struct {
		name string
		v    models.Volunteer
		want float64
	}{
		{"ten years ahead", models.Volunteer{VolunteerSince: daysAgo(-3650)}, 0.3},
		{"ten years ahead, recent login", models.Volunteer{VolunteerSince: daysAgo(-3650), LastLogin: daysAgo(1)}, 0.6},
		{"far future clamps to zero", models.Volunteer{VolunteerSince: daysAgo(-365 * 100)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EngagementScore(tt.v, refNow)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			d := DeriveVolunteer(tt.v, refNow)
			if d.Derived.EngagementScore+d.Derived.RetentionRiskScore != 1 {
				t.Errorf("score %v + risk %v != 1", d.Derived.EngagementScore, d.Derived.RetentionRiskScore)
			}
		})
	}
}

func TestDerivedVolunteerKeepsZeroRisk(t *testing.T) {
	d := DeriveVolunteer(models.Volunteer{LastLogin: daysAgo(0), VolunteerSince: daysAgo(30 * 365)}, refNow)
	if d.Derived.EngagementScore != 1 || d.Derived.RetentionRiskScore != 0 {
		t.Fatalf("got score %v risk %v, want 1 and 0", d.Derived.EngagementScore, d.Derived.RetentionRiskScore)
	}

	data, err := json.Marshal(d.Derived)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"retention_risk_score":0`) {
		t.Errorf("retention_risk_score missing from %s", data)
	}
}

func TestDonorCategoryLadder(t *testing.T) {
	tests := []struct {
		gift float64
		want models.DonorCategory
	}{
		{0, models.DonorAnnual},
		{5_000, models.DonorAnnual},
		{9_999.99, models.DonorAnnual},
		{10_000, models.DonorSustaining},
		{24_999, models.DonorSustaining},
		{25_000, models.DonorLeadership},
		{50_000, models.DonorLeadership},
		{99_999.99, models.DonorLeadership},
		{100_000, models.DonorMajor},
		{999_999, models.DonorMajor},
		{1_000_000, models.DonorMega},
		{5_000_000, models.DonorMega},
	}
	for _, tt := range tests {
		if got := DonorCategoryFor(tt.gift); got != tt.want {
			t.Errorf("DonorCategoryFor(%v): got %q, want %q", tt.gift, got, tt.want)
		}
	}
}

func TestDeriveDonorLifetimeValue(t *testing.T) {
	mega := DeriveDonor(models.Donor{GiftAmount: ptr(5_000_000.0)})
	if mega.Derived.DonorCategory != models.DonorMega {
		t.Errorf("category: got %q", mega.Derived.DonorCategory)
	}
	if mega.Derived.LifetimeValue == nil || *mega.Derived.LifetimeValue != 15_000_000 {
		t.Errorf("lifetime value: got %v, want 15000000", mega.Derived.LifetimeValue)
	}

	unknown := DeriveDonor(models.Donor{})
	if unknown.Derived.LifetimeValue != nil || unknown.Derived.DonorCategory != "" {
		t.Errorf("donor without gift should have no derived values: %+v", unknown.Derived)
	}
}

func TestDeriveApplicantFlags(t *testing.T) {
	tests := []struct {
		outcome, status *string
		converted       bool
		active          bool
	}{
		{ptr("Converted to Volunteer"), ptr("General Volunteer"), true, true},
		{ptr("Converted to Volunteer - Later Inactivated"), ptr("Event Based Volunteer"), false, true},
		{ptr("Pending"), ptr("Something New"), false, false},
		{nil, nil, false, false},
	}
	for i, tt := range tests {
		d := DeriveApplicant(models.Applicant{IntakeOutcome: tt.outcome, CurrentStatus: tt.status})
		if d.Derived.ConversionSuccess != tt.converted || d.Derived.IsActive != tt.active {
			t.Errorf("case %d: got converted=%v active=%v", i, d.Derived.ConversionSuccess, d.Derived.IsActive)
		}
	}
}

func TestDeriveDoesNotMutateRecord(t *testing.T) {
	v := models.Volunteer{CurrentStatus: ptr("General Volunteer"), LastLogin: daysAgo(3)}
	before := *v.LastLogin
	d := DeriveVolunteer(v, refNow)
	if !d.Record.LastLogin.Equal(before) || d.Record.CurrentStatus != v.CurrentStatus {
		t.Error("derived record differs from input")
	}
}

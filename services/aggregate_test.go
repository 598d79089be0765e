package services

import (
	"math"
	"reflect"
	"testing"

	"executive-analytics/models"
)

func TestRateZeroDenominator(t *testing.T) {
	if got := Rate(5, 0); got != 0 {
		t.Errorf("Rate(5, 0): got %v, want 0", got)
	}
	if got := Rate(1, 4); got != 25 {
		t.Errorf("Rate(1, 4): got %v, want 25", got)
	}
}

func TestCentralTendencyEmpty(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil): got %v", got)
	}
	if got := Median(nil); got != 0 {
		t.Errorf("Median(nil): got %v", got)
	}
	if got := PositiveMean([]float64{0, -3}); got != 0 {
		t.Errorf("PositiveMean of non-positive values: got %v", got)
	}
}

func TestMedian(t *testing.T) {
	in := []float64{9, 1, 5, 3}
	if got := Median(in); got != 4 {
		t.Errorf("even count: got %v, want 4", got)
	}
	if !reflect.DeepEqual(in, []float64{9, 1, 5, 3}) {
		t.Errorf("Median reordered its input: %v", in)
	}
	if got := Median([]float64{7, 2, 4}); got != 4 {
		t.Errorf("odd count: got %v, want 4", got)
	}
}

func TestTopKConcentration(t *testing.T) {
	if got := TopKConcentration([]float64{5_000_000, 50_000}, 10); got != 100 {
		t.Errorf("fewer than k values: got %v, want 100", got)
	}

	twelve := make([]float64, 12)
	for i := range twelve {
		twelve[i] = 1
	}
	if got := TopKConcentration(twelve, 10); math.Abs(got-1000.0/12) > 1e-9 {
		t.Errorf("12 equal values: got %v, want %v", got, 1000.0/12)
	}
	if got := TopKConcentration(nil, 10); got != 0 {
		t.Errorf("empty: got %v, want 0", got)
	}
}

func TestAggregateVolunteersEmptyApplicants(t *testing.T) {
	m := AggregateVolunteers(nil, nil, refNow)
	if m.Available {
		t.Error("section should be unavailable without applicants")
	}
	if m.ConversionRate != 0 || m.MonthlyNewApplications != 0 || m.RetentionRate != 0 {
		t.Errorf("expected zeroed metrics, got %+v", m)
	}
	if math.IsNaN(m.AverageEngagement) || math.IsNaN(m.AverageTimeToActivate) {
		t.Error("NaN in empty aggregate")
	}
}

func TestAggregateVolunteers(t *testing.T) {
	applicants := DeriveApplicants([]models.Applicant{
		{IntakeOutcome: ptr("Converted to Volunteer"), ApplicationDate: daysAgo(3), DaysToVolStart: ptr(int64(10))},
		{IntakeOutcome: ptr("Converted to Volunteer"), ApplicationDate: daysAgo(30), DaysToVolStart: ptr(int64(20))},
		{IntakeOutcome: ptr("Converted to Volunteer"), ApplicationDate: daysAgo(31), DaysToVolStart: ptr(int64(0))},
		{IntakeOutcome: ptr("Converted to Volunteer - Later Inactivated"), DaysToVolStart: ptr(int64(-4))},
		{IntakeOutcome: ptr("Pending")},
		{},
	})
	volunteers := DeriveVolunteers([]models.Volunteer{
		{CurrentStatus: ptr("General Volunteer"), LastLogin: daysAgo(1), DisasterResponse: true},
		{CurrentStatus: ptr("Prospective Volunteer")},
		{CurrentStatus: ptr("Youth Under 18"), LastLogin: daysAgo(45)},
		{CurrentStatus: ptr("Event Based Volunteer")},
	}, refNow)

	m := AggregateVolunteers(applicants, volunteers, refNow)

	if !m.Available || m.TotalApplicants != 6 || m.TotalVolunteers != 4 {
		t.Fatalf("unexpected totals: %+v", m)
	}
	if m.ConversionRate != 50 {
		t.Errorf("ConversionRate: got %v, want 50", m.ConversionRate)
	}
	if m.RetentionRate != 75 {
		t.Errorf("RetentionRate: got %v, want 75", m.RetentionRate)
	}
	if m.MonthlyNewApplications != 2 {
		t.Errorf("MonthlyNewApplications: got %d, want 2", m.MonthlyNewApplications)
	}
	if m.AverageTimeToActivate != 15 {
		t.Errorf("AverageTimeToActivate: got %v, want 15", m.AverageTimeToActivate)
	}
	if m.ActiveVolunteers != 1 || m.ProspectiveVolunteers != 1 || m.YouthVolunteers != 1 {
		t.Errorf("status counts: %+v", m)
	}
	if m.AtRiskVolunteers != 2 {
		t.Errorf("AtRiskVolunteers: got %d, want 2", m.AtRiskVolunteers)
	}
	if m.DisasterResponders != 1 {
		t.Errorf("DisasterResponders: got %d, want 1", m.DisasterResponders)
	}
	if math.Abs(m.AverageEngagement-(0.8+0.5+0.6+0.5)/4) > 1e-9 {
		t.Errorf("AverageEngagement: got %v", m.AverageEngagement)
	}
}

func TestAggregateDonors(t *testing.T) {
	donors := DeriveDonors([]models.Donor{
		{GiftAmount: ptr(5_000_000.0)},
		{GiftAmount: ptr(50_000.0)},
		{},
	})
	m := AggregateDonors(donors)

	if !m.Available || m.TotalDonors != 3 {
		t.Fatalf("unexpected totals: %+v", m)
	}
	if m.TotalRaised != 5_050_000 {
		t.Errorf("TotalRaised: got %v", m.TotalRaised)
	}
	if m.AverageGift != 2_525_000 || m.MedianGift != 2_525_000 {
		t.Errorf("average/median: got %v / %v", m.AverageGift, m.MedianGift)
	}
	if m.Top10Concentration != 100 {
		t.Errorf("Top10Concentration: got %v, want 100", m.Top10Concentration)
	}
	if m.DonorsOver100K != 1 || m.DonorsOver1M != 1 {
		t.Errorf("thresholds: >100K=%d >1M=%d", m.DonorsOver100K, m.DonorsOver1M)
	}
	if m.LifetimeValue != 15_150_000 {
		t.Errorf("LifetimeValue: got %v", m.LifetimeValue)
	}
	want := map[models.DonorCategory]int{models.DonorMega: 1, models.DonorLeadership: 1}
	if !reflect.DeepEqual(m.DonorsByCategory, want) {
		t.Errorf("DonorsByCategory: got %v, want %v", m.DonorsByCategory, want)
	}
}

func TestAggregateBloodDrivesZeroProjection(t *testing.T) {
	m := AggregateBloodDrives([]models.BloodDrive{
		{Year: ptr(int64(2024)), RBCProductsCollected: ptr(int64(40)), RBCProductProjection: ptr(int64(0))},
		{Year: ptr(int64(2024)), RBCProductsCollected: ptr(int64(10))},
	})
	if m.CollectionEfficiency != 0 || math.IsNaN(m.CollectionEfficiency) {
		t.Errorf("CollectionEfficiency: got %v, want 0", m.CollectionEfficiency)
	}
	if m.TotalProductsCollected != 50 {
		t.Errorf("TotalProductsCollected: got %d, want 50", m.TotalProductsCollected)
	}
}

func TestAggregateBloodDrivesByYear(t *testing.T) {
	m := AggregateBloodDrives([]models.BloodDrive{
		{Year: ptr(int64(2025)), AccountType: ptr("School"), RBCProductsCollected: ptr(int64(30)), RBCProductProjection: ptr(int64(40))},
		{Year: ptr(int64(2023)), AccountType: ptr("Church"), RBCProductsCollected: ptr(int64(50)), RBCProductProjection: ptr(int64(50))},
		{Year: ptr(int64(2025)), AccountType: ptr("School"), RBCProductsCollected: ptr(int64(30)), RBCProductProjection: ptr(int64(40))},
		{AccountType: ptr("Business"), RBCProductsCollected: ptr(int64(10)), RBCProductProjection: ptr(int64(20))},
	})

	if m.TotalBloodDrives != 4 {
		t.Errorf("TotalBloodDrives: got %d", m.TotalBloodDrives)
	}
	wantYears := []models.YearMetrics{
		{Year: 2023, Drives: 1, TotalCollected: 50, Efficiency: 100},
		{Year: 2025, Drives: 2, TotalCollected: 60, Efficiency: 75},
	}
	if !reflect.DeepEqual(m.DrivesByYear, wantYears) {
		t.Errorf("DrivesByYear: got %+v, want %+v", m.DrivesByYear, wantYears)
	}
	wantAccounts := []models.CountEntry{{Label: "School", Count: 2}, {Label: "Business", Count: 1}, {Label: "Church", Count: 1}}
	if !reflect.DeepEqual(m.AccountTypeBreakdown, wantAccounts) {
		t.Errorf("AccountTypeBreakdown: got %+v", m.AccountTypeBreakdown)
	}
	if m.CollectionEfficiency != 80 {
		t.Errorf("CollectionEfficiency: got %v, want 80", m.CollectionEfficiency)
	}
}

func TestAggregateGeographyTopTen(t *testing.T) {
	var volunteers []models.DerivedVolunteer
	states := []string{"CA", "CA", "CA", "TX", "TX", "NY", "AL", "AK", "AZ", "AR", "CO", "CT", "DE", "FL"}
	for _, s := range states {
		volunteers = append(volunteers, models.DerivedVolunteer{Record: models.Volunteer{State: ptr(s)}})
	}
	volunteers = append(volunteers, models.DerivedVolunteer{})

	g := AggregateGeography(nil, volunteers, nil)
	if len(g.VolunteerDistribution) != 10 {
		t.Fatalf("len: got %d, want 10", len(g.VolunteerDistribution))
	}
	want := []string{"CA", "TX", "AK", "AL", "AR", "AZ", "CO", "CT", "DE", "FL"}
	for i, e := range g.VolunteerDistribution {
		if e.Label != want[i] {
			t.Errorf("position %d: got %s, want %s", i, e.Label, want[i])
		}
	}
	if len(g.ApplicantDistribution) != 0 || len(g.BloodDriveDistribution) != 0 {
		t.Error("expected empty distributions for missing datasets")
	}
}

func TestAggregatesAreDeterministic(t *testing.T) {
	donors := DeriveDonors([]models.Donor{
		{GiftAmount: ptr(12_345.67)}, {GiftAmount: ptr(0.1)}, {GiftAmount: ptr(987_654.32)}, {GiftAmount: ptr(0.2)},
	})
	first := AggregateDonors(donors)
	for i := 0; i < 20; i++ {
		if again := AggregateDonors(donors); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first, again)
		}
	}
}

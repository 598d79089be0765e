package services

import (
	"reflect"
	"testing"
	"time"

	"executive-analytics/models"
)

func applied(year int, month time.Month, day int) models.DerivedApplicant {
	d := time.Date(year, month, day, 9, 0, 0, 0, time.UTC)
	return models.DerivedApplicant{Record: models.Applicant{ApplicationDate: &d}}
}

func TestVolunteerTimelineTrailingWindow(t *testing.T) {
	var applicants []models.DerivedApplicant
	// 20 months of history, one application each, except a gap in 2024-09
	start := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		m := start.AddDate(0, i, 0)
		if m.Year() == 2024 && m.Month() == time.September {
			continue
		}
		applicants = append(applicants, applied(m.Year(), m.Month(), 15))
	}
	applicants = append(applicants, applied(2025, time.January, 2), models.DerivedApplicant{})

	chart := VolunteerTimeline(applicants)

	if len(chart.Labels) != 12 {
		t.Fatalf("buckets: got %d, want 12", len(chart.Labels))
	}
	if chart.Labels[0] != "2024-02" || chart.Labels[11] != "2025-01" {
		t.Errorf("window: got %s..%s, want 2024-02..2025-01", chart.Labels[0], chart.Labels[11])
	}
	for i := 1; i < len(chart.Labels); i++ {
		if chart.Labels[i] <= chart.Labels[i-1] {
			t.Errorf("labels not chronological at %d: %v", i, chart.Labels)
		}
	}
	data := chart.Datasets[0].Data
	if data[7] != 0 {
		t.Errorf("2024-09 should be zero-filled, got %v", data[7])
	}
	if data[11] != 2 {
		t.Errorf("2025-01: got %v, want 2", data[11])
	}
}

func TestVolunteerTimelineShortHistory(t *testing.T) {
	chart := VolunteerTimeline([]models.DerivedApplicant{applied(2025, time.March, 1), applied(2025, time.May, 1)})
	if len(chart.Labels) != 12 || chart.Labels[0] != "2024-06" || chart.Labels[11] != "2025-05" {
		t.Errorf("labels: %v", chart.Labels)
	}
	if got := VolunteerTimeline(nil); len(got.Labels) != 0 || len(got.Datasets) != 0 {
		t.Errorf("empty input should give an empty chart, got %+v", got)
	}
}

func TestGiftBucketEdges(t *testing.T) {
	tests := []struct {
		gift float64
		want int
	}{
		{5_000, 0},
		{9_999.99, 0},
		{10_000, 1},
		{25_000, 2},
		{50_000, 3},
		{100_000, 4},
		{499_999, 4},
		{500_000, 5},
		{1_000_000, 6},
		{75_000_000, 6},
		{-1, -1},
	}
	for _, tt := range tests {
		if got := giftBucketIndex(tt.gift); got != tt.want {
			t.Errorf("giftBucketIndex(%v): got %d, want %d", tt.gift, got, tt.want)
		}
	}
}

func TestDonorDistribution(t *testing.T) {
	donors := DeriveDonors([]models.Donor{
		{GiftAmount: ptr(6_000.0)},
		{GiftAmount: ptr(10_000.0)},
		{GiftAmount: ptr(10_500.0)},
		{GiftAmount: ptr(2_000_000.0)},
		{},
	})
	chart := DonorDistribution(donors)

	wantLabels := []string{"$5K-10K", "$10K-25K", "$25K-50K", "$50K-100K", "$100K-500K", "$500K-1M", "$1M+"}
	if !reflect.DeepEqual(chart.Labels, wantLabels) {
		t.Errorf("labels: got %v", chart.Labels)
	}
	wantData := []float64{1, 2, 0, 0, 0, 0, 1}
	if !reflect.DeepEqual(chart.Datasets[0].Data, wantData) {
		t.Errorf("data: got %v, want %v", chart.Datasets[0].Data, wantData)
	}
}

func TestConversionFunnelPassesInconsistenciesThrough(t *testing.T) {
	applicants := DeriveApplicants([]models.Applicant{
		{IntakeOutcome: ptr("Converted to Volunteer")},
		{IntakeOutcome: ptr("Converted to Volunteer - Later Inactivated")},
		{IntakeOutcome: ptr("Converted to Volunteer - Later Inactivated")},
		{IntakeOutcome: ptr("Converted to Volunteer - Later Inactivated")},
		{IntakeOutcome: ptr("Pending")},
	})
	chart := ConversionFunnel(applicants)

	want := []models.FunnelStage{
		{Name: StageApplied, Value: 5},
		{Name: StageProcessed, Value: 4},
		{Name: StageConverted, Value: 1},
		{Name: StageActive, Value: -2},
	}
	if !reflect.DeepEqual(chart.Stages, want) {
		t.Errorf("stages: got %+v, want %+v", chart.Stages, want)
	}
}

func TestBloodDriveTrends(t *testing.T) {
	chart := BloodDriveTrends([]models.BloodDrive{
		{Year: ptr(int64(2024)), DrivesCount: ptr(int64(2)), RBCProductsCollected: ptr(int64(40))},
		{Year: ptr(int64(2023)), DrivesCount: ptr(int64(1))},
		{Year: ptr(int64(2024)), DrivesCount: ptr(int64(3)), RBCProductsCollected: ptr(int64(5))},
		{DrivesCount: ptr(int64(9))},
	})

	if !reflect.DeepEqual(chart.Labels, []string{"2023", "2024"}) {
		t.Errorf("labels: got %v", chart.Labels)
	}
	if !reflect.DeepEqual(chart.Datasets[0].Data, []float64{1, 5}) {
		t.Errorf("drives: got %v", chart.Datasets[0].Data)
	}
	if !reflect.DeepEqual(chart.Datasets[1].Data, []float64{0, 45}) || chart.Datasets[1].YAxisID != "y2" {
		t.Errorf("collected: got %+v", chart.Datasets[1])
	}
}

func TestGeographicHeatmapLimit(t *testing.T) {
	volunteers := make([]models.DerivedVolunteer, 0, 1200)
	volunteers = append(volunteers, models.DerivedVolunteer{Record: models.Volunteer{Latitude: ptr(1.0)}})
	for i := 0; i < 1200; i++ {
		volunteers = append(volunteers, models.DerivedVolunteer{Record: models.Volunteer{
			Latitude:  ptr(float64(i)),
			Longitude: ptr(-float64(i)),
		}})
	}
	chart := GeographicHeatmap(volunteers)

	if len(chart.Points) != 1000 {
		t.Fatalf("points: got %d, want 1000", len(chart.Points))
	}
	if p := chart.Points[0]; p.Lat != 0 || p.Lng != 0 || p.Intensity != 1 {
		t.Errorf("first point: %+v", p)
	}
}

func TestBuildChartsCoversEveryID(t *testing.T) {
	charts := BuildCharts(models.RecordSet{})
	for _, id := range models.ChartIDs {
		c, ok := charts[id]
		if !ok {
			t.Errorf("missing chart %s", id)
			continue
		}
		if c.ID != id {
			t.Errorf("chart %s carries id %s", id, c.ID)
		}
	}
}

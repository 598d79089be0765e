package services

import (
	"math"
	"sort"
	"strconv"
	"time"

	"executive-analytics/models"
)

const (
	timelineBuckets  = 12
	monthLabelLayout = "2006-01"
	heatmapLimit     = 1000
)

// giftBuckets are the donor histogram bands. Each lower edge is inclusive.
var giftBuckets = []struct {
	min   float64
	label string
}{
	{0, "$5K-10K"},
	{10_000, "$10K-25K"},
	{25_000, "$25K-50K"},
	{50_000, "$50K-100K"},
	{100_000, "$100K-500K"},
	{500_000, "$500K-1M"},
	{1_000_000, "$1M+"},
}

// Funnel stage names in order.
const (
	StageApplied   = "Applied"
	StageProcessed = "Processed"
	StageConverted = "Converted"
	StageActive    = "Active"
)

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// VolunteerTimeline counts applications per calendar month over the twelve
// months ending at the latest observed application month. Months without
// applications inside that window are emitted as 0.
func VolunteerTimeline(applicants []models.DerivedApplicant) models.ChartDataset {
	chart := models.ChartDataset{ID: models.ChartVolunteerTimeline}

	counts := make(map[time.Time]int)
	var latest time.Time
	for _, a := range applicants {
		if a.Record.ApplicationDate == nil {
			continue
		}
		m := monthStart(*a.Record.ApplicationDate)
		counts[m]++
		if m.After(latest) {
			latest = m
		}
	}
	if len(counts) == 0 {
		return chart
	}

	data := make([]float64, 0, timelineBuckets)
	for i := timelineBuckets - 1; i >= 0; i-- {
		m := latest.AddDate(0, -i, 0)
		chart.Labels = append(chart.Labels, m.Format(monthLabelLayout))
		data = append(data, float64(counts[m]))
	}
	chart.Datasets = []models.Series{{Label: "Monthly Applications", Data: data}}
	return chart
}

// giftBucketIndex returns the histogram band of gift, or -1 for a negative
// or non-finite amount.
func giftBucketIndex(gift float64) int {
	if gift < 0 || math.IsNaN(gift) {
		return -1
	}
	idx := -1
	for i, b := range giftBuckets {
		if gift >= b.min {
			idx = i
		}
	}
	return idx
}

// DonorDistribution is the gift-size histogram in ascending band order.
func DonorDistribution(donors []models.DerivedDonor) models.ChartDataset {
	chart := models.ChartDataset{ID: models.ChartDonorDistribution}
	if len(donors) == 0 {
		return chart
	}

	data := make([]float64, len(giftBuckets))
	for _, d := range donors {
		if d.Record.GiftAmount == nil {
			continue
		}
		if i := giftBucketIndex(*d.Record.GiftAmount); i >= 0 {
			data[i]++
		}
	}
	for _, b := range giftBuckets {
		chart.Labels = append(chart.Labels, b.label)
	}
	chart.Datasets = []models.Series{{Label: "Number of Donors", Data: data}}
	return chart
}

// ConversionFunnel builds the Applied, Processed, Converted and Active
// stages. Stage values are reported as computed; Active may exceed
// Converted or go negative when the source outcomes are inconsistent.
func ConversionFunnel(applicants []models.DerivedApplicant) models.ChartDataset {
	chart := models.ChartDataset{ID: models.ChartConversionFunnel}
	if len(applicants) == 0 {
		return chart
	}

	var pending, converted, laterInactive int
	for _, a := range applicants {
		switch {
		case outcomeIs(a.Record, outcomePending):
			pending++
		case outcomeIs(a.Record, outcomeLaterInactivated):
			laterInactive++
		}
		if a.Derived.ConversionSuccess {
			converted++
		}
	}

	total := len(applicants)
	chart.Stages = []models.FunnelStage{
		{Name: StageApplied, Value: total},
		{Name: StageProcessed, Value: total - pending},
		{Name: StageConverted, Value: converted},
		{Name: StageActive, Value: converted - laterInactive},
	}
	return chart
}

// BloodDriveTrends sums drives and products collected per year, ascending.
// Products collected is plotted against the secondary axis.
func BloodDriveTrends(drives []models.BloodDrive) models.ChartDataset {
	chart := models.ChartDataset{ID: models.ChartBloodDriveTrends}

	type totals struct{ drives, collected int64 }
	byYear := make(map[int64]*totals)
	for _, b := range drives {
		if b.Year == nil {
			continue
		}
		t, ok := byYear[*b.Year]
		if !ok {
			t = &totals{}
			byYear[*b.Year] = t
		}
		if b.DrivesCount != nil {
			t.drives += *b.DrivesCount
		}
		if b.RBCProductsCollected != nil {
			t.collected += *b.RBCProductsCollected
		}
	}
	if len(byYear) == 0 {
		return chart
	}

	years := make([]int64, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Slice(years, func(i, j int) bool { return years[i] < years[j] })

	drivesData := make([]float64, len(years))
	collectedData := make([]float64, len(years))
	for i, y := range years {
		chart.Labels = append(chart.Labels, strconv.FormatInt(y, 10))
		drivesData[i] = float64(byYear[y].drives)
		collectedData[i] = float64(byYear[y].collected)
	}
	chart.Datasets = []models.Series{
		{Label: "Total Drives", Data: drivesData},
		{Label: "Products Collected", Data: collectedData, YAxisID: "y2"},
	}
	return chart
}

// GeographicHeatmap returns the first volunteer coordinates, in input order.
func GeographicHeatmap(volunteers []models.DerivedVolunteer) models.ChartDataset {
	chart := models.ChartDataset{ID: models.ChartGeographicHeatmap}
	for _, v := range volunteers {
		if len(chart.Points) == heatmapLimit {
			break
		}
		if v.Record.Latitude == nil || v.Record.Longitude == nil {
			continue
		}
		chart.Points = append(chart.Points, models.GeoPoint{
			Lat:       *v.Record.Latitude,
			Lng:       *v.Record.Longitude,
			Intensity: 1,
		})
	}
	return chart
}

// BuildCharts produces every chart for one record set.
func BuildCharts(records models.RecordSet) map[models.ChartID]models.ChartDataset {
	return map[models.ChartID]models.ChartDataset{
		models.ChartVolunteerTimeline: VolunteerTimeline(records.Applicants),
		models.ChartConversionFunnel:  ConversionFunnel(records.Applicants),
		models.ChartDonorDistribution: DonorDistribution(records.Donors),
		models.ChartBloodDriveTrends:  BloodDriveTrends(records.BloodDrives),
		models.ChartGeographicHeatmap: GeographicHeatmap(records.Volunteers),
	}
}

package services

import (
	"math"
	"sort"
	"time"

	"executive-analytics/models"
)

const (
	concentrationTopK  = 10
	geographicTopN     = 10
	recentWindow       = 30 * 24 * time.Hour
	atRiskThreshold    = 0.5
	majorGiftThreshold = 100_000
	megaGiftThreshold  = 1_000_000
)

// Rate returns num/den as a percentage. A zero denominator yields 0.
func Rate(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den * 100
}

// Efficiency is collected over projected volume as a percentage.
func Efficiency(collected, projected float64) float64 {
	return Rate(collected, projected)
}

// Sum adds values in order.
func Sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// Mean returns the arithmetic mean, or 0 for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Sum(values) / float64(len(values))
}

// Median returns the middle value, averaging the two middle values for an
// even count. No values yields 0. The input is not reordered.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// TopKConcentration returns the share of the total held by the k largest
// values, as a percentage. Both sums run over the same descending order so
// that k >= len(values) yields exactly 100 for a positive total.
func TopKConcentration(values []float64, k int) float64 {
	sorted := append([]float64(nil), values...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	var top, total float64
	for i, v := range sorted {
		if i < k {
			top += v
		}
		total += v
	}
	return Rate(top, total)
}

// PositiveMean averages the values greater than zero.
func PositiveMean(values []float64) float64 {
	var kept []float64
	for _, v := range values {
		if v > 0 {
			kept = append(kept, v)
		}
	}
	return Mean(kept)
}

// Round1 rounds half away from zero to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// topCounts orders counts by descending count then ascending label and keeps
// at most limit entries. A limit of 0 keeps everything.
func topCounts(counts map[string]int, limit int) []models.CountEntry {
	out := make([]models.CountEntry, 0, len(counts))
	for label, n := range counts {
		out = append(out, models.CountEntry{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func countPresent(values []*string) map[string]int {
	counts := make(map[string]int)
	for _, v := range values {
		if v != nil {
			counts[*v]++
		}
	}
	return counts
}

// AggregateVolunteers builds the volunteer section. Applicant-based fields
// stay zero without applicants, volunteer-based fields without volunteers.
// The section is available when the applicants dataset produced records.
func AggregateVolunteers(applicants []models.DerivedApplicant, volunteers []models.DerivedVolunteer, now time.Time) models.VolunteerMetrics {
	m := models.VolunteerMetrics{
		Available:       len(applicants) > 0,
		TotalApplicants: len(applicants),
		TotalVolunteers: len(volunteers),
	}

	var converted, laterInactive, recent int
	var days []float64
	cutoff := now.Add(-recentWindow)
	for _, a := range applicants {
		if a.Derived.ConversionSuccess {
			converted++
		}
		if outcomeIs(a.Record, outcomeLaterInactivated) {
			laterInactive++
		}
		if d := a.Record.ApplicationDate; d != nil && !d.Before(cutoff) {
			recent++
		}
		if a.Record.DaysToVolStart != nil {
			days = append(days, float64(*a.Record.DaysToVolStart))
		}
	}
	m.ConversionRate = Round1(Rate(float64(converted), float64(len(applicants))))
	m.RetentionRate = Round1(Rate(float64(converted), float64(converted+laterInactive)))
	m.MonthlyNewApplications = recent
	m.AverageTimeToActivate = Round1(PositiveMean(days))

	scores := make([]float64, 0, len(volunteers))
	for _, v := range volunteers {
		scores = append(scores, v.Derived.EngagementScore)
		status := v.Record.CurrentStatus
		switch {
		case statusIs(status, statusGeneral):
			m.ActiveVolunteers++
		case statusIs(status, statusProspective):
			m.ProspectiveVolunteers++
		case statusIs(status, statusYouth):
			m.YouthVolunteers++
		}
		if v.Derived.RetentionRiskScore >= atRiskThreshold {
			m.AtRiskVolunteers++
		}
		if v.Record.DisasterResponse {
			m.DisasterResponders++
		}
	}
	m.AverageEngagement = Mean(scores)
	return m
}

// AggregateDonors builds the financial section.
func AggregateDonors(donors []models.DerivedDonor) models.FinancialMetrics {
	m := models.FinancialMetrics{
		Available:        len(donors) > 0,
		TotalDonors:      len(donors),
		DonorsByCategory: make(map[models.DonorCategory]int),
	}

	gifts := make([]float64, 0, len(donors))
	var ltv []float64
	for _, d := range donors {
		if d.Record.GiftAmount == nil {
			continue
		}
		g := *d.Record.GiftAmount
		gifts = append(gifts, g)
		if g >= majorGiftThreshold {
			m.DonorsOver100K++
		}
		if g >= megaGiftThreshold {
			m.DonorsOver1M++
		}
		m.DonorsByCategory[d.Derived.DonorCategory]++
		if d.Derived.LifetimeValue != nil {
			ltv = append(ltv, *d.Derived.LifetimeValue)
		}
	}

	m.TotalRaised = Sum(gifts)
	m.AverageGift = Mean(gifts)
	m.MedianGift = Median(gifts)
	m.Top10Concentration = TopKConcentration(gifts, concentrationTopK)
	m.LifetimeValue = Sum(ltv)
	return m
}

type driveTotals struct {
	drives    int
	collected int64
	projected int64
}

func (t *driveTotals) add(b models.BloodDrive) {
	t.drives++
	if b.RBCProductsCollected != nil {
		t.collected += *b.RBCProductsCollected
	}
	if b.RBCProductProjection != nil {
		t.projected += *b.RBCProductProjection
	}
}

func (t driveTotals) efficiency() float64 {
	return Efficiency(float64(t.collected), float64(t.projected))
}

// AggregateBloodDrives builds the operational section. Drives without a year
// count toward the totals but not toward drives_by_year.
func AggregateBloodDrives(drives []models.BloodDrive) models.OperationalMetrics {
	m := models.OperationalMetrics{
		Available:        len(drives) > 0,
		TotalBloodDrives: len(drives),
	}

	var all driveTotals
	byYear := make(map[int64]*driveTotals)
	accounts := make([]*string, 0, len(drives))
	for _, b := range drives {
		all.add(b)
		accounts = append(accounts, b.AccountType)
		if b.Year == nil {
			continue
		}
		t, ok := byYear[*b.Year]
		if !ok {
			t = &driveTotals{}
			byYear[*b.Year] = t
		}
		t.add(b)
	}

	years := make([]int64, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Slice(years, func(i, j int) bool { return years[i] < years[j] })
	for _, y := range years {
		t := byYear[y]
		m.DrivesByYear = append(m.DrivesByYear, models.YearMetrics{
			Year:           y,
			Drives:         t.drives,
			TotalCollected: t.collected,
			Efficiency:     t.efficiency(),
		})
	}

	m.AccountTypeBreakdown = topCounts(countPresent(accounts), 0)
	m.TotalProductsCollected = all.collected
	m.CollectionEfficiency = all.efficiency()
	return m
}

// AggregateGeography builds the top-10 state distributions.
func AggregateGeography(applicants []models.DerivedApplicant, volunteers []models.DerivedVolunteer, drives []models.BloodDrive) models.GeographicMetrics {
	appStates := make([]*string, len(applicants))
	for i, a := range applicants {
		appStates[i] = a.Record.State
	}
	volStates := make([]*string, len(volunteers))
	for i, v := range volunteers {
		volStates[i] = v.Record.State
	}
	driveStates := make([]*string, len(drives))
	for i, b := range drives {
		driveStates[i] = b.State
	}

	return models.GeographicMetrics{
		VolunteerDistribution:  topCounts(countPresent(volStates), geographicTopN),
		ApplicantDistribution:  topCounts(countPresent(appStates), geographicTopN),
		BloodDriveDistribution: topCounts(countPresent(driveStates), geographicTopN),
	}
}

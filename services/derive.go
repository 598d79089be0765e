package services

import (
	"math"
	"time"

	"executive-analytics/models"
)

const (
	outcomeConverted        = "Converted to Volunteer"
	outcomeLaterInactivated = "Converted to Volunteer - Later Inactivated"
	outcomePending          = "Pending"

	statusGeneral     = "General Volunteer"
	statusProspective = "Prospective Volunteer"
	statusYouth       = "Youth Under 18"

	baseEngagement      = 0.5
	recentLoginBonus    = 0.3
	lapsingLoginBonus   = 0.1
	tenureBonusPerYear  = 0.02
	maxTenureBonus      = 0.2
	lifetimeValueFactor = 3
)

// activeStatuses are the Current Status values counted as active.
var activeStatuses = map[string]struct{}{
	statusGeneral:           {},
	"Event Based Volunteer": {},
}

// donorLadder is evaluated top-down; each threshold is the inclusive lower
// bound of its band.
var donorLadder = []struct {
	min      float64
	category models.DonorCategory
}{
	{1_000_000, models.DonorMega},
	{100_000, models.DonorMajor},
	{25_000, models.DonorLeadership},
	{10_000, models.DonorSustaining},
}

// daysBetween returns whole days from then to now, floored.
func daysBetween(now, then time.Time) int {
	return int(math.Floor(now.Sub(then).Hours() / 24))
}

// EngagementScore estimates a volunteer's activity level in [0, 1] from
// login recency and tenure relative to now. A start date after now gives a
// negative tenure bonus.
func EngagementScore(v models.Volunteer, now time.Time) float64 {
	score := baseEngagement

	if v.LastLogin != nil {
		days := daysBetween(now, *v.LastLogin)
		switch {
		case days < 30:
			score += recentLoginBonus
		case days < 90:
			score += lapsingLoginBonus
		}
	}

	if v.VolunteerSince != nil {
		years := float64(daysBetween(now, *v.VolunteerSince)) / 365
		score += math.Min(maxTenureBonus, years*tenureBonusPerYear)
	}

	return math.Max(0, math.Min(1, score))
}

// DonorCategoryFor places a gift amount on the donor ladder.
func DonorCategoryFor(gift float64) models.DonorCategory {
	for _, band := range donorLadder {
		if gift >= band.min {
			return band.category
		}
	}
	return models.DonorAnnual
}

// IsActiveStatus reports whether a Current Status value counts as active.
// Absent or unrecognised values are inactive.
func IsActiveStatus(status *string) bool {
	if status == nil {
		return false
	}
	_, ok := activeStatuses[*status]
	return ok
}

func outcomeIs(a models.Applicant, outcome string) bool {
	return a.IntakeOutcome != nil && *a.IntakeOutcome == outcome
}

func statusIs(status *string, want string) bool {
	return status != nil && *status == want
}

// DeriveApplicant computes the conversion and activity flags of an applicant.
func DeriveApplicant(a models.Applicant) models.DerivedApplicant {
	return models.DerivedApplicant{
		Record: a,
		Derived: models.DerivedFields{
			ConversionSuccess: outcomeIs(a, outcomeConverted),
			IsActive:          IsActiveStatus(a.CurrentStatus),
		},
	}
}

// DeriveVolunteer computes engagement and retention risk of a volunteer.
// The two always sum to exactly 1.
func DeriveVolunteer(v models.Volunteer, now time.Time) models.DerivedVolunteer {
	score, risk := complement(EngagementScore(v, now))
	return models.DerivedVolunteer{
		Record: v,
		Derived: models.DerivedFields{
			EngagementScore:    score,
			RetentionRiskScore: risk,
			IsActive:           IsActiveStatus(v.CurrentStatus),
		},
	}
}

// complement returns score and 1-score with the score rounded by at most one
// ulp so that their float sum is exactly 1. For score in [0, 1] either risk or
// the recomputed score lies in [0.5, 1], where the subtraction from 1 is exact.
func complement(score float64) (float64, float64) {
	risk := 1 - score
	return 1 - risk, risk
}

// DeriveDonor computes the category and estimated lifetime value of a donor.
// A donor without a gift amount gets neither.
func DeriveDonor(d models.Donor) models.DerivedDonor {
	out := models.DerivedDonor{Record: d}
	if d.GiftAmount != nil {
		ltv := *d.GiftAmount * lifetimeValueFactor
		out.Derived.DonorCategory = DonorCategoryFor(*d.GiftAmount)
		out.Derived.LifetimeValue = &ltv
	}
	return out
}

// DeriveApplicants applies DeriveApplicant to every record.
func DeriveApplicants(in []models.Applicant) []models.DerivedApplicant {
	out := make([]models.DerivedApplicant, len(in))
	for i, a := range in {
		out[i] = DeriveApplicant(a)
	}
	return out
}

// DeriveVolunteers applies DeriveVolunteer to every record.
func DeriveVolunteers(in []models.Volunteer, now time.Time) []models.DerivedVolunteer {
	out := make([]models.DerivedVolunteer, len(in))
	for i, v := range in {
		out[i] = DeriveVolunteer(v, now)
	}
	return out
}

// DeriveDonors applies DeriveDonor to every record.
func DeriveDonors(in []models.Donor) []models.DerivedDonor {
	out := make([]models.DerivedDonor, len(in))
	for i, d := range in {
		out[i] = DeriveDonor(d)
	}
	return out
}

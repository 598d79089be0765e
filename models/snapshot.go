package models

import "time"

// KpiSnapshot holds the aggregated executive KPIs of one pipeline run. A
// snapshot is never updated after it is produced; a new run builds a new one.
type KpiSnapshot struct {
	RunID       string                     `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time                  `json:"timestamp" yaml:"timestamp"`
	Volunteer   VolunteerMetrics           `json:"volunteer_metrics" yaml:"volunteer_metrics"`
	Financial   FinancialMetrics           `json:"financial_metrics" yaml:"financial_metrics"`
	Operational OperationalMetrics         `json:"operational_metrics" yaml:"operational_metrics"`
	Geographic  GeographicMetrics          `json:"geographic_metrics" yaml:"geographic_metrics"`
	Insights    []Insight                  `json:"predictive_insights" yaml:"predictive_insights"`
	Notes       []string                   `json:"notes,omitempty" yaml:"notes,omitempty"`
	Stats       map[Dataset]NormalizeStats `json:"normalization" yaml:"normalization"`
}

// NormalizeStats counts what happened to one dataset's raw rows.
type NormalizeStats struct {
	Rows        int `json:"rows" yaml:"rows"`
	Normalized  int `json:"normalized" yaml:"normalized"`
	Skipped     int `json:"skipped" yaml:"skipped"`
	ParseErrors int `json:"parse_errors" yaml:"parse_errors"`
}

// VolunteerMetrics summarises applicants and volunteers. Applicant-derived
// fields are zero when the applicants dataset is unavailable.
type VolunteerMetrics struct {
	Available              bool    `json:"available" yaml:"available"`
	TotalApplicants        int     `json:"total_applicants" yaml:"total_applicants"`
	TotalVolunteers        int     `json:"total_volunteers" yaml:"total_volunteers"`
	ConversionRate         float64 `json:"conversion_rate" yaml:"conversion_rate"`
	ActiveVolunteers       int     `json:"active_volunteers" yaml:"active_volunteers"`
	ProspectiveVolunteers  int     `json:"prospective_volunteers" yaml:"prospective_volunteers"`
	YouthVolunteers        int     `json:"youth_volunteers" yaml:"youth_volunteers"`
	MonthlyNewApplications int     `json:"monthly_new_applications" yaml:"monthly_new_applications"`
	RetentionRate          float64 `json:"retention_rate" yaml:"retention_rate"`
	AverageTimeToActivate  float64 `json:"average_time_to_activate" yaml:"average_time_to_activate"`
	AverageEngagement      float64 `json:"average_engagement_score" yaml:"average_engagement_score"`
	AtRiskVolunteers       int     `json:"at_risk_volunteers" yaml:"at_risk_volunteers"`
	DisasterResponders     int     `json:"disaster_responders" yaml:"disaster_responders"`
}

// FinancialMetrics summarises the major donors dataset.
type FinancialMetrics struct {
	Available          bool                  `json:"available" yaml:"available"`
	TotalRaised        float64               `json:"total_raised" yaml:"total_raised"`
	TotalDonors        int                   `json:"total_donors" yaml:"total_donors"`
	AverageGift        float64               `json:"average_gift" yaml:"average_gift"`
	MedianGift         float64               `json:"median_gift" yaml:"median_gift"`
	Top10Concentration float64               `json:"top_10_concentration" yaml:"top_10_concentration"`
	DonorsOver100K     int                   `json:"donors_over_100k" yaml:"donors_over_100k"`
	DonorsOver1M       int                   `json:"donors_over_1m" yaml:"donors_over_1m"`
	LifetimeValue      float64               `json:"estimated_lifetime_value" yaml:"estimated_lifetime_value"`
	DonorsByCategory   map[DonorCategory]int `json:"donors_by_category" yaml:"donors_by_category"`
}

// OperationalMetrics summarises the blood drive dataset.
type OperationalMetrics struct {
	Available              bool          `json:"available" yaml:"available"`
	TotalBloodDrives       int           `json:"total_blood_drives" yaml:"total_blood_drives"`
	DrivesByYear           []YearMetrics `json:"drives_by_year" yaml:"drives_by_year"`
	AccountTypeBreakdown   []CountEntry  `json:"account_type_breakdown" yaml:"account_type_breakdown"`
	TotalProductsCollected int64         `json:"total_products_collected" yaml:"total_products_collected"`
	CollectionEfficiency   float64       `json:"collection_efficiency" yaml:"collection_efficiency"`
}

// YearMetrics is the per-year slice of the operational section.
type YearMetrics struct {
	Year           int64   `json:"year" yaml:"year"`
	Drives         int     `json:"drives" yaml:"drives"`
	TotalCollected int64   `json:"total_collected" yaml:"total_collected"`
	Efficiency     float64 `json:"efficiency" yaml:"efficiency"`
}

// GeographicMetrics holds top-10 state distributions per dataset.
type GeographicMetrics struct {
	VolunteerDistribution  []CountEntry `json:"volunteer_distribution" yaml:"volunteer_distribution"`
	ApplicantDistribution  []CountEntry `json:"applicant_distribution" yaml:"applicant_distribution"`
	BloodDriveDistribution []CountEntry `json:"blood_drive_distribution" yaml:"blood_drive_distribution"`
}

// CountEntry is one labelled count in an ordered breakdown.
type CountEntry struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// InsightType identifies which rule produced an insight.
type InsightType string

const (
	InsightVolunteerGrowth       InsightType = "volunteer_growth"
	InsightOperationalEfficiency InsightType = "operational_efficiency"
	InsightDonorDiversification  InsightType = "donor_diversification"
)

// Insight is an advisory record emitted by a triggered rule.
type Insight struct {
	Type           InsightType `json:"type" yaml:"type"`
	Prediction     string      `json:"prediction" yaml:"prediction"`
	Confidence     float64     `json:"confidence" yaml:"confidence"`
	Recommendation string      `json:"recommendation" yaml:"recommendation"`
}

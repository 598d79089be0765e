package models

import "time"

// Dataset names one of the four operational sources.
type Dataset string

const (
	DatasetApplicants  Dataset = "applicants"
	DatasetVolunteers  Dataset = "volunteers"
	DatasetBloodDrives Dataset = "blood_drives"
	DatasetDonors      Dataset = "donors"
)

// Datasets lists every dataset in pipeline order.
var Datasets = []Dataset{DatasetApplicants, DatasetVolunteers, DatasetBloodDrives, DatasetDonors}

// ParseDataset maps a URL or CLI name onto a Dataset. "biomed" is accepted as
// an alias for blood drives.
func ParseDataset(name string) (Dataset, bool) {
	switch name {
	case "applicants":
		return DatasetApplicants, true
	case "volunteers":
		return DatasetVolunteers, true
	case "blood_drives", "biomed":
		return DatasetBloodDrives, true
	case "donors":
		return DatasetDonors, true
	}
	return "", false
}

// RawRow holds one unprocessed source row keyed by column name. Cells are
// strings when read from CSV but may be numbers or nil when supplied as JSON.
type RawRow map[string]any

// Applicant is a normalized row of the applicants dataset. Nil pointers mean
// the source cell was missing or could not be parsed.
type Applicant struct {
	EntryPoint            *string    `json:"entry_point"`
	EntryPointFinalStatus *string    `json:"entry_point_final_status"`
	HowDidYouHear         *string    `json:"how_did_you_hear"`
	WorkflowType          *string    `json:"workflow_type"`
	IntakeOutcome         *string    `json:"intake_outcome"`
	CurrentStatus         *string    `json:"current_status"`
	ApplicationDate       *time.Time `json:"application_dt"`
	VolStartDate          *time.Time `json:"vol_start_dt"`
	InactiveDate          *time.Time `json:"inactive_dt"`
	DaysToVolStart        *int64     `json:"days_to_vol_start"`
	State                 *string    `json:"state"`
	City                  *string    `json:"city"`
	County                *string    `json:"county"`
	Latitude              *float64   `json:"latitude"`
	Longitude             *float64   `json:"longitude"`
}

// Volunteer is a normalized row of the volunteers dataset.
type Volunteer struct {
	SabaID           *string    `json:"saba_id"`
	ChapterName      *string    `json:"chapter_name"`
	CurrentStatus    *string    `json:"current_status"`
	StatusType       *string    `json:"status_type"`
	State            *string    `json:"state"`
	DisasterResponse bool       `json:"disaster_response"`
	SecondLanguage   *string    `json:"second_language"`
	VolunteerSince   *time.Time `json:"volunteer_since_date"`
	LastLogin        *time.Time `json:"last_login_date"`
	Latitude         *float64   `json:"latitude"`
	Longitude        *float64   `json:"longitude"`
}

// BloodDrive is a normalized row of the biomed (blood drive) dataset.
type BloodDrive struct {
	Year                 *int64   `json:"year"`
	SponsorExtID         *string  `json:"sponsor_ext_id"`
	Status               *string  `json:"status"`
	AccountName          *string  `json:"account_name"`
	AccountType          *string  `json:"account_type"`
	Address              *string  `json:"address"`
	City                 *string  `json:"city"`
	State                *string  `json:"state"`
	ZipCode              *string  `json:"zip_code"`
	DrivesCount          *int64   `json:"drives_count"`
	RBCProductProjection *int64   `json:"rbc_product_projection"`
	RBCProductsCollected *int64   `json:"rbc_products_collected"`
	Latitude             *float64 `json:"latitude"`
	Longitude            *float64 `json:"longitude"`
}

// Donor is a normalized row of the major donors dataset.
type Donor struct {
	GiftAmount *float64 `json:"gift_amount"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

// DonorCategory is a named gift tier.
type DonorCategory string

const (
	DonorAnnual     DonorCategory = "Annual Donor"
	DonorSustaining DonorCategory = "Sustaining Donor"
	DonorLeadership DonorCategory = "Leadership Donor"
	DonorMajor      DonorCategory = "Major Donor"
	DonorMega       DonorCategory = "Mega Donor"
)

// DerivedFields are computed once per record and kept apart from the
// normalized record itself. Fields that do not apply to a dataset stay zero.
type DerivedFields struct {
	EngagementScore    float64       `json:"engagement_score"`
	RetentionRiskScore float64       `json:"retention_risk_score"`
	DonorCategory      DonorCategory `json:"donor_category,omitempty"`
	LifetimeValue      *float64      `json:"lifetime_value,omitempty"`
	IsActive           bool          `json:"is_active"`
	ConversionSuccess  bool          `json:"conversion_success"`
}

// DerivedApplicant pairs an applicant with its derived fields.
type DerivedApplicant struct {
	Record  Applicant     `json:"record"`
	Derived DerivedFields `json:"derived"`
}

// DerivedVolunteer pairs a volunteer with its derived fields.
type DerivedVolunteer struct {
	Record  Volunteer     `json:"record"`
	Derived DerivedFields `json:"derived"`
}

// DerivedDonor pairs a donor with its derived fields.
type DerivedDonor struct {
	Record  Donor         `json:"record"`
	Derived DerivedFields `json:"derived"`
}

// RecordSet holds every record produced by one pipeline run. Blood drives
// carry no derived fields.
type RecordSet struct {
	Applicants  []DerivedApplicant
	Volunteers  []DerivedVolunteer
	BloodDrives []BloodDrive
	Donors      []DerivedDonor
}

package storage

import (
	"executive-analytics/models"
)

// Table is a set of rows ready for bulk insertion. Every row has one value
// per column, in column order; nil is written as NULL.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Record table names.
const (
	TableApplicants  = "applicants"
	TableVolunteers  = "volunteers"
	TableBloodDrives = "blood_drives"
	TableDonors      = "donors"
)

var (
	applicantColumns = []string{
		"entry_point", "entry_point_final_status", "how_did_you_hear", "workflow_type",
		"intake_outcome", "current_status", "application_dt", "vol_start_dt", "inactive_dt",
		"days_to_vol_start", "state", "city", "county", "latitude", "longitude",
		"conversion_success", "is_active",
	}
	volunteerColumns = []string{
		"saba_id", "chapter_name", "current_status", "status_type", "state", "disaster_response",
		"second_language", "volunteer_since", "last_login", "latitude", "longitude",
		"engagement_score", "retention_risk_score", "is_active",
	}
	bloodDriveColumns = []string{
		"year", "sponsor_ext_id", "status", "account_name", "account_type", "address", "city",
		"state", "zip_code", "drives_count", "rbc_product_projection", "rbc_products_collected",
		"latitude", "longitude",
	}
	donorColumns = []string{
		"gift_amount", "latitude", "longitude", "donor_category", "lifetime_value",
	}
)

// val turns an optional field into a driver value, nil for absent.
func val[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func ApplicantTable(records []models.DerivedApplicant) Table {
	t := Table{Name: TableApplicants, Columns: applicantColumns, Rows: make([][]any, 0, len(records))}
	for _, r := range records {
		a := r.Record
		t.Rows = append(t.Rows, []any{
			val(a.EntryPoint), val(a.EntryPointFinalStatus), val(a.HowDidYouHear), val(a.WorkflowType),
			val(a.IntakeOutcome), val(a.CurrentStatus), val(a.ApplicationDate), val(a.VolStartDate), val(a.InactiveDate),
			val(a.DaysToVolStart), val(a.State), val(a.City), val(a.County), val(a.Latitude), val(a.Longitude),
			r.Derived.ConversionSuccess, r.Derived.IsActive,
		})
	}
	return t
}

func VolunteerTable(records []models.DerivedVolunteer) Table {
	t := Table{Name: TableVolunteers, Columns: volunteerColumns, Rows: make([][]any, 0, len(records))}
	for _, r := range records {
		v := r.Record
		t.Rows = append(t.Rows, []any{
			val(v.SabaID), val(v.ChapterName), val(v.CurrentStatus), val(v.StatusType), val(v.State), v.DisasterResponse,
			val(v.SecondLanguage), val(v.VolunteerSince), val(v.LastLogin), val(v.Latitude), val(v.Longitude),
			r.Derived.EngagementScore, r.Derived.RetentionRiskScore, r.Derived.IsActive,
		})
	}
	return t
}

func BloodDriveTable(records []models.BloodDrive) Table {
	t := Table{Name: TableBloodDrives, Columns: bloodDriveColumns, Rows: make([][]any, 0, len(records))}
	for _, b := range records {
		t.Rows = append(t.Rows, []any{
			val(b.Year), val(b.SponsorExtID), val(b.Status), val(b.AccountName), val(b.AccountType), val(b.Address), val(b.City),
			val(b.State), val(b.ZipCode), val(b.DrivesCount), val(b.RBCProductProjection), val(b.RBCProductsCollected),
			val(b.Latitude), val(b.Longitude),
		})
	}
	return t
}

func DonorTable(records []models.DerivedDonor) Table {
	t := Table{Name: TableDonors, Columns: donorColumns, Rows: make([][]any, 0, len(records))}
	for _, r := range records {
		var category any
		if r.Derived.DonorCategory != "" {
			category = string(r.Derived.DonorCategory)
		}
		t.Rows = append(t.Rows, []any{
			val(r.Record.GiftAmount), val(r.Record.Latitude), val(r.Record.Longitude),
			category, val(r.Derived.LifetimeValue),
		})
	}
	return t
}

// Tables lays out every record set for ingestion, in dataset order.
func Tables(records models.RecordSet) []Table {
	return []Table{
		ApplicantTable(records.Applicants),
		VolunteerTable(records.Volunteers),
		BloodDriveTable(records.BloodDrives),
		DonorTable(records.Donors),
	}
}

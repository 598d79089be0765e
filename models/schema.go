package models

// Kind is the expected type of a source column.
type Kind int

const (
	KindString Kind = iota
	KindFloat
	KindInt
	// KindMoney is a float that may carry currency symbols and thousands separators.
	KindMoney
	KindDate
	// KindMembership is true when the trimmed cell is one of Field.Members.
	KindMembership
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindMoney:
		return "money"
	case KindDate:
		return "date"
	case KindMembership:
		return "membership"
	}
	return "unknown"
}

// Field describes one source column.
type Field struct {
	Column  string
	Kind    Kind
	Members []string
}

// Schema is the fixed column layout of a dataset.
type Schema struct {
	Dataset Dataset
	Fields  []Field
}

// Column names shared by the schemas and by the derived field rules.
const (
	ColEntryPoint            = "Entry Point"
	ColEntryPointFinalStatus = "Entry Point Final Status"
	ColHowDidYouHear         = "How Did You Hear"
	ColWorkflowType          = "Workflow Type"
	ColIntakeOutcome         = "Intake Outcome"
	ColCurrentStatus         = "Current Status"
	ColApplicationDate       = "Application Dt"
	ColVolStartDate          = "Vol Start Dt"
	ColInactiveDate          = "Inactive Dt"
	ColDaysToVolStart        = "Days To Vol Start"
	ColState                 = "State"
	ColCity                  = "City"
	ColCounty                = "County"
	ColX                     = "X"
	ColY                     = "Y"

	ColSabaID         = "SABA ID"
	ColChapterName    = "Chapter Name"
	ColStatusType     = "Status Type"
	ColDisasterResp   = "Dis Resp"
	ColSecondLanguage = "2nd Language"
	ColVolunteerSince = "Volunteer Since Date"
	ColLastLogin      = "Last Login Date"

	ColYear                 = "Year"
	ColSponsorExtID         = "Sponsor Ext ID"
	ColStatus               = "Status"
	ColAccountName          = "Account Name"
	ColAccountType          = "Account Type"
	ColAddress              = "Address"
	ColSt                   = "St"
	ColZip                  = "Zip"
	ColDrives               = "Drives"
	ColRBCProductProjection = "RBC Product Projection"
	ColRBCProductsCollected = "RBC Products Collected"
	ColLat                  = "Lat"
	ColLong                 = "Long"

	ColGift = "Gift $"
)

var ApplicantSchema = Schema{
	Dataset: DatasetApplicants,
	Fields: []Field{
		{Column: ColEntryPoint, Kind: KindString},
		{Column: ColEntryPointFinalStatus, Kind: KindString},
		{Column: ColHowDidYouHear, Kind: KindString},
		{Column: ColWorkflowType, Kind: KindString},
		{Column: ColIntakeOutcome, Kind: KindString},
		{Column: ColCurrentStatus, Kind: KindString},
		{Column: ColApplicationDate, Kind: KindDate},
		{Column: ColVolStartDate, Kind: KindDate},
		{Column: ColInactiveDate, Kind: KindDate},
		{Column: ColDaysToVolStart, Kind: KindInt},
		{Column: ColState, Kind: KindString},
		{Column: ColCity, Kind: KindString},
		{Column: ColCounty, Kind: KindString},
		{Column: ColX, Kind: KindFloat},
		{Column: ColY, Kind: KindFloat},
	},
}

var VolunteerSchema = Schema{
	Dataset: DatasetVolunteers,
	Fields: []Field{
		{Column: ColSabaID, Kind: KindString},
		{Column: ColChapterName, Kind: KindString},
		{Column: ColCurrentStatus, Kind: KindString},
		{Column: ColStatusType, Kind: KindString},
		{Column: ColState, Kind: KindString},
		{Column: ColDisasterResp, Kind: KindMembership, Members: []string{"Yes"}},
		{Column: ColSecondLanguage, Kind: KindString},
		{Column: ColVolunteerSince, Kind: KindDate},
		{Column: ColLastLogin, Kind: KindDate},
		{Column: ColX, Kind: KindFloat},
		{Column: ColY, Kind: KindFloat},
	},
}

var BloodDriveSchema = Schema{
	Dataset: DatasetBloodDrives,
	Fields: []Field{
		{Column: ColYear, Kind: KindInt},
		{Column: ColSponsorExtID, Kind: KindString},
		{Column: ColStatus, Kind: KindString},
		{Column: ColAccountName, Kind: KindString},
		{Column: ColAccountType, Kind: KindString},
		{Column: ColAddress, Kind: KindString},
		{Column: ColCity, Kind: KindString},
		{Column: ColSt, Kind: KindString},
		{Column: ColZip, Kind: KindString},
		{Column: ColDrives, Kind: KindInt},
		{Column: ColRBCProductProjection, Kind: KindInt},
		{Column: ColRBCProductsCollected, Kind: KindInt},
		{Column: ColLat, Kind: KindFloat},
		{Column: ColLong, Kind: KindFloat},
	},
}

var DonorSchema = Schema{
	Dataset: DatasetDonors,
	Fields: []Field{
		{Column: ColGift, Kind: KindMoney},
		{Column: ColX, Kind: KindFloat},
		{Column: ColY, Kind: KindFloat},
	},
}

// SchemaFor returns the schema of a dataset.
func SchemaFor(d Dataset) Schema {
	switch d {
	case DatasetApplicants:
		return ApplicantSchema
	case DatasetVolunteers:
		return VolunteerSchema
	case DatasetBloodDrives:
		return BloodDriveSchema
	default:
		return DonorSchema
	}
}

// MissingColumns returns the schema columns absent from header, in schema order.
func (s Schema) MissingColumns(header []string) []string {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}
	var missing []string
	for _, f := range s.Fields {
		if _, ok := present[f.Column]; !ok {
			missing = append(missing, f.Column)
		}
	}
	return missing
}

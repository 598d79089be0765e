package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"executive-analytics/models"
	"executive-analytics/utils"
)

// dateLayouts are tried in order when coercing a date cell.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"2006/01/02",
	"01-02-2006",
}

// moneyReplacer strips currency symbols and thousands separators.
var moneyReplacer = strings.NewReplacer("$", "", ",", "", " ", "")

// Values holds the coerced cells of one row keyed by column. A column that is
// missing or failed coercion has no entry. Entries are string, float64,
// int64, time.Time or bool.
type Values map[string]any

// Str returns the string value of col, or nil when absent.
func (v Values) Str(col string) *string {
	if s, ok := v[col].(string); ok {
		return &s
	}
	return nil
}

// Float returns the float value of col, or nil when absent.
func (v Values) Float(col string) *float64 {
	if f, ok := v[col].(float64); ok {
		return &f
	}
	return nil
}

// Int returns the integer value of col, or nil when absent.
func (v Values) Int(col string) *int64 {
	if n, ok := v[col].(int64); ok {
		return &n
	}
	return nil
}

// Time returns the date value of col, or nil when absent.
func (v Values) Time(col string) *time.Time {
	if t, ok := v[col].(time.Time); ok {
		return &t
	}
	return nil
}

// Bool returns a membership value; absent means false.
func (v Values) Bool(col string) bool {
	b, _ := v[col].(bool)
	return b
}

// Normalizer turns RawRows into typed records.
type Normalizer struct {
	logger *utils.Logger
}

// NewNormalizer creates a Normalizer with the given logger.
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Coerce converts row according to schema. Unparseable cells are left out of
// the result and reported as ParseErrors; blank or missing cells are simply
// absent.
func Coerce(row models.RawRow, schema models.Schema, rowIndex int) (Values, []*models.ParseError) {
	values := make(Values, len(schema.Fields))
	var errs []*models.ParseError

	for _, f := range schema.Fields {
		raw, present := row[f.Column]
		text := cellText(raw)

		if f.Kind == models.KindMembership {
			values[f.Column] = present && isMember(normaliseText(text), f.Members)
			continue
		}
		if !present || strings.TrimSpace(text) == "" {
			continue
		}

		val, ok := coerceCell(raw, text, f.Kind)
		if !ok {
			errs = append(errs, &models.ParseError{
				Dataset: schema.Dataset,
				Row:     rowIndex,
				Column:  f.Column,
				Value:   raw,
				Kind:    f.Kind.String(),
			})
			continue
		}
		values[f.Column] = val
	}
	return values, errs
}

func coerceCell(raw any, text string, kind models.Kind) (any, bool) {
	switch kind {
	case models.KindString:
		s := normaliseText(text)
		return s, s != ""
	case models.KindFloat:
		if f, ok := parseFloat(text); ok {
			return f, true
		}
	case models.KindMoney:
		if f, ok := parseFloat(moneyReplacer.Replace(text)); ok {
			return f, true
		}
	case models.KindInt:
		if n, ok := parseInt(text); ok {
			return n, true
		}
	case models.KindDate:
		if t, ok := raw.(time.Time); ok {
			return t, true
		}
		return parseDate(text)
	}
	return nil, false
}

// isBlankRow reports whether every cell of row is empty.
func isBlankRow(row models.RawRow) bool {
	for _, v := range row {
		if strings.TrimSpace(cellText(v)) != "" {
			return false
		}
	}
	return true
}

// NormalizeApplicants coerces raw applicant rows into Applicants.
func (n *Normalizer) NormalizeApplicants(rows []models.RawRow) ([]models.Applicant, models.NormalizeStats) {
	out := make([]models.Applicant, 0, len(rows))
	stats := n.each(rows, models.ApplicantSchema, func(v Values) {
		out = append(out, models.Applicant{
			EntryPoint:            v.Str(models.ColEntryPoint),
			EntryPointFinalStatus: v.Str(models.ColEntryPointFinalStatus),
			HowDidYouHear:         v.Str(models.ColHowDidYouHear),
			WorkflowType:          v.Str(models.ColWorkflowType),
			IntakeOutcome:         v.Str(models.ColIntakeOutcome),
			CurrentStatus:         v.Str(models.ColCurrentStatus),
			ApplicationDate:       v.Time(models.ColApplicationDate),
			VolStartDate:          v.Time(models.ColVolStartDate),
			InactiveDate:          v.Time(models.ColInactiveDate),
			DaysToVolStart:        v.Int(models.ColDaysToVolStart),
			State:                 v.Str(models.ColState),
			City:                  v.Str(models.ColCity),
			County:                v.Str(models.ColCounty),
			Latitude:              v.Float(models.ColY),
			Longitude:             v.Float(models.ColX),
		})
	})
	return out, stats
}

// NormalizeVolunteers coerces raw volunteer rows into Volunteers.
func (n *Normalizer) NormalizeVolunteers(rows []models.RawRow) ([]models.Volunteer, models.NormalizeStats) {
	out := make([]models.Volunteer, 0, len(rows))
	stats := n.each(rows, models.VolunteerSchema, func(v Values) {
		out = append(out, models.Volunteer{
			SabaID:           v.Str(models.ColSabaID),
			ChapterName:      v.Str(models.ColChapterName),
			CurrentStatus:    v.Str(models.ColCurrentStatus),
			StatusType:       v.Str(models.ColStatusType),
			State:            v.Str(models.ColState),
			DisasterResponse: v.Bool(models.ColDisasterResp),
			SecondLanguage:   v.Str(models.ColSecondLanguage),
			VolunteerSince:   v.Time(models.ColVolunteerSince),
			LastLogin:        v.Time(models.ColLastLogin),
			Latitude:         v.Float(models.ColY),
			Longitude:        v.Float(models.ColX),
		})
	})
	return out, stats
}

// NormalizeBloodDrives coerces raw biomed rows into BloodDrives.
func (n *Normalizer) NormalizeBloodDrives(rows []models.RawRow) ([]models.BloodDrive, models.NormalizeStats) {
	out := make([]models.BloodDrive, 0, len(rows))
	stats := n.each(rows, models.BloodDriveSchema, func(v Values) {
		out = append(out, models.BloodDrive{
			Year:                 v.Int(models.ColYear),
			SponsorExtID:         v.Str(models.ColSponsorExtID),
			Status:               v.Str(models.ColStatus),
			AccountName:          v.Str(models.ColAccountName),
			AccountType:          v.Str(models.ColAccountType),
			Address:              v.Str(models.ColAddress),
			City:                 v.Str(models.ColCity),
			State:                v.Str(models.ColSt),
			ZipCode:              v.Str(models.ColZip),
			DrivesCount:          v.Int(models.ColDrives),
			RBCProductProjection: v.Int(models.ColRBCProductProjection),
			RBCProductsCollected: v.Int(models.ColRBCProductsCollected),
			Latitude:             v.Float(models.ColLat),
			Longitude:            v.Float(models.ColLong),
		})
	})
	return out, stats
}

// NormalizeDonors coerces raw donor rows into Donors.
func (n *Normalizer) NormalizeDonors(rows []models.RawRow) ([]models.Donor, models.NormalizeStats) {
	out := make([]models.Donor, 0, len(rows))
	stats := n.each(rows, models.DonorSchema, func(v Values) {
		out = append(out, models.Donor{
			GiftAmount: v.Float(models.ColGift),
			Latitude:   v.Float(models.ColY),
			Longitude:  v.Float(models.ColX),
		})
	})
	return out, stats
}

// each coerces every non-blank row and hands the values to emit.
func (n *Normalizer) each(rows []models.RawRow, schema models.Schema, emit func(Values)) models.NormalizeStats {
	stats := models.NormalizeStats{Rows: len(rows)}

	for i, row := range rows {
		if len(row) == 0 || isBlankRow(row) {
			stats.Skipped++
			continue
		}
		values, errs := Coerce(row, schema, i)
		for _, e := range errs {
			n.logger.Debug("[normalizer] %v", e)
		}
		stats.ParseErrors += len(errs)
		emit(values)
		stats.Normalized++
	}

	n.logger.Info("[normalizer] %s: %d rows → %d records (skipped %d, parse errors %d)",
		schema.Dataset, stats.Rows, stats.Normalized, stats.Skipped, stats.ParseErrors)
	return stats
}

func cellText(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		if math.IsNaN(c) {
			return ""
		}
		return strconv.FormatFloat(c, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(c), 'f', -1, 32)
	case int:
		return strconv.Itoa(c)
	case int64:
		return strconv.FormatInt(c, 10)
	case json.Number:
		return c.String()
	case bool:
		return strconv.FormatBool(c)
	case time.Time:
		return c.Format(time.RFC3339)
	default:
		return fmt.Sprint(c)
	}
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseInt accepts integral numbers, including forms like "2.0" or "1e3".
// Fractions and values outside the int64 range are rejected.
func parseInt(s string) (int64, bool) {
	f, ok := parseFloat(s)
	if !ok || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func parseDate(s string) (any, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return nil, false
}

func isMember(s string, members []string) bool {
	for _, m := range members {
		if s == m {
			return true
		}
	}
	return false
}

// normaliseText applies NFKC, strips control characters and collapses
// internal whitespace.
func normaliseText(s string) string {
	s = norm.NFKC.String(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
	return strings.Join(fields, " ")
}

package services

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"executive-analytics/models"
	"executive-analytics/utils"
)

const (
	efficiencyTarget       = 80
	concentrationRiskLimit = 30
)

var numberPrinter = message.NewPrinter(language.English)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate evaluates the insight rules against a snapshot. Rules are
// independent and the result keeps their declaration order, so the same
// snapshot always yields the same list.
func (s *InsightService) Generate(snap *models.KpiSnapshot) []models.Insight {
	insights := []models.Insight{}
	if snap == nil {
		return insights
	}

	if snap.Volunteer.Available {
		expected := snap.Volunteer.MonthlyNewApplications * 12
		insights = append(insights, models.Insight{
			Type:           models.InsightVolunteerGrowth,
			Prediction:     numberPrinter.Sprintf("Based on current trends, expecting %d new applications in next 12 months", expected),
			Confidence:     0.75,
			Recommendation: "Increase recruitment staff in high-growth regions",
		})
	}

	if snap.Operational.Available && snap.Operational.CollectionEfficiency < efficiencyTarget {
		insights = append(insights, models.Insight{
			Type:           models.InsightOperationalEfficiency,
			Prediction:     "Blood collection efficiency below target",
			Confidence:     0.90,
			Recommendation: "Focus on high-performing account types and optimize scheduling",
		})
	}

	if snap.Financial.Available && snap.Financial.Top10Concentration > concentrationRiskLimit {
		insights = append(insights, models.Insight{
			Type:           models.InsightDonorDiversification,
			Prediction:     "High donor concentration risk",
			Confidence:     0.85,
			Recommendation: "Expand mid-level donor program to reduce dependency",
		})
	}

	s.logger.Debug("[insights] %d rule(s) triggered", len(insights))
	return insights
}

// Print writes a colored terminal summary of the snapshot to w.
func (s *InsightService) Print(w io.Writer, snap *models.KpiSnapshot) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 EXECUTIVE ANALYTICS SNAPSHOT\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "  Run %s at %s\n\n", snap.RunID, snap.GeneratedAt.Format("2006-01-02 15:04 MST"))

	v := snap.Volunteer
	fmt.Fprintf(w, "\033[1;33m  Volunteers\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if !v.Available && v.TotalVolunteers == 0 {
		fmt.Fprintf(w, "  No volunteer data available\n")
	} else {
		fmt.Fprintf(w, "  Applicants            : \033[1m%s\033[0m\n", numberPrinter.Sprintf("%d", v.TotalApplicants))
		fmt.Fprintf(w, "  Volunteers            : \033[1m%s\033[0m\n", numberPrinter.Sprintf("%d", v.TotalVolunteers))
		fmt.Fprintf(w, "  Conversion rate       : \033[1;32m%.1f%%\033[0m\n", v.ConversionRate)
		fmt.Fprintf(w, "  Retention rate        : \033[1;32m%.1f%%\033[0m\n", v.RetentionRate)
		fmt.Fprintf(w, "  Days to activate      : \033[1m%.1f\033[0m\n", v.AverageTimeToActivate)
		fmt.Fprintf(w, "  New applications (30d): \033[1m%d\033[0m\n", v.MonthlyNewApplications)
		fmt.Fprintf(w, "  At-risk volunteers    : \033[1;31m%d\033[0m\n", v.AtRiskVolunteers)
	}
	fmt.Fprintln(w)

	f := snap.Financial
	fmt.Fprintf(w, "\033[1;33m  Major Donors\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if !f.Available {
		fmt.Fprintf(w, "  No donor data available\n")
	} else {
		fmt.Fprintf(w, "  Total raised          : \033[1;32m%s\033[0m\n", numberPrinter.Sprintf("$%.2f", f.TotalRaised))
		fmt.Fprintf(w, "  Donors                : \033[1m%d\033[0m\n", f.TotalDonors)
		fmt.Fprintf(w, "  Average / median gift : %s / %s\n",
			numberPrinter.Sprintf("$%.2f", f.AverageGift), numberPrinter.Sprintf("$%.2f", f.MedianGift))
		fmt.Fprintf(w, "  Top-10 concentration  : \033[1m%.1f%%\033[0m\n", f.Top10Concentration)
	}
	fmt.Fprintln(w)

	o := snap.Operational
	fmt.Fprintf(w, "\033[1;33m  Blood Drives\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if !o.Available {
		fmt.Fprintf(w, "  No blood drive data available\n")
	} else {
		fmt.Fprintf(w, "  Drives                : \033[1m%d\033[0m\n", o.TotalBloodDrives)
		fmt.Fprintf(w, "  Products collected    : \033[1m%s\033[0m\n", numberPrinter.Sprintf("%d", o.TotalProductsCollected))
		fmt.Fprintf(w, "  Collection efficiency : \033[1;32m%.1f%%\033[0m\n", o.CollectionEfficiency)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Volunteers by State\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(snap.Geographic.VolunteerDistribution) == 0 {
		fmt.Fprintf(w, "  No location data\n")
	}
	for _, e := range snap.Geographic.VolunteerDistribution {
		bar := strings.Repeat("█", barWidth(e.Count, snap.Geographic.VolunteerDistribution[0].Count))
		fmt.Fprintf(w, "  %-20s %s (%d)\n", truncate(e.Label, 18), bar, e.Count)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Insights\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(snap.Insights) == 0 {
		fmt.Fprintf(w, "  No insights triggered\n")
	}
	for i, in := range snap.Insights {
		fmt.Fprintf(w, "  \033[1m%d.\033[0m %s \033[2m(%.0f%%)\033[0m\n", i+1, in.Prediction, in.Confidence*100)
		fmt.Fprintf(w, "     → %s\n", in.Recommendation)
	}
	for _, n := range snap.Notes {
		fmt.Fprintf(w, "  \033[2mnote: %s\033[0m\n", n)
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

// barWidth scales count against max onto at most 30 cells.
func barWidth(count, max int) int {
	if max <= 0 || count <= 0 {
		return 0
	}
	if w := count * 30 / max; w > 0 {
		return w
	}
	return 1
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

package models

// ChartID identifies a chart dataset.
type ChartID string

const (
	ChartVolunteerTimeline ChartID = "volunteer_timeline"
	ChartConversionFunnel  ChartID = "conversion_funnel"
	ChartDonorDistribution ChartID = "donor_distribution"
	ChartBloodDriveTrends  ChartID = "blood_drive_trends"
	ChartGeographicHeatmap ChartID = "geographic_heatmap"
)

// ChartIDs lists every chart the pipeline builds.
var ChartIDs = []ChartID{
	ChartVolunteerTimeline,
	ChartConversionFunnel,
	ChartDonorDistribution,
	ChartBloodDriveTrends,
	ChartGeographicHeatmap,
}

// ChartDataset is chart-ready data. Labels and every series' Data share the
// same order, which is the bucket order of the chart.
type ChartDataset struct {
	ID       ChartID       `json:"id"`
	Labels   []string      `json:"labels,omitempty"`
	Datasets []Series      `json:"datasets,omitempty"`
	Stages   []FunnelStage `json:"stages,omitempty"`
	Points   []GeoPoint    `json:"points,omitempty"`
}

// Series is one named sequence of values.
type Series struct {
	Label   string    `json:"label"`
	Data    []float64 `json:"data"`
	YAxisID string    `json:"yAxisID,omitempty"`
}

// FunnelStage is one step of the conversion funnel.
type FunnelStage struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// GeoPoint is a weighted map coordinate.
type GeoPoint struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Intensity int     `json:"intensity"`
}

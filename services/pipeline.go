package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"executive-analytics/models"
	"executive-analytics/utils"
)

var (
	ErrUnknownDataset = errors.New("unknown dataset")
	ErrUnknownChart   = errors.New("unknown chart")
)

// RunContext is everything one pipeline run reads. It is built once per run
// and never shared between runs.
type RunContext struct {
	Now      time.Time
	Datasets map[models.Dataset][]models.RawRow
	// LoadErrors holds the reason a dataset could not be read, if any.
	LoadErrors map[models.Dataset]error
}

// Rows returns the raw rows of one dataset, or nil when it was not loaded.
func (rc *RunContext) Rows(d models.Dataset) []models.RawRow {
	return rc.Datasets[d]
}

// Result is the output of one pipeline run.
type Result struct {
	Snapshot *models.KpiSnapshot
	Charts   map[models.ChartID]models.ChartDataset
	Records  models.RecordSet
}

// Chart looks up one chart dataset by id.
func (r *Result) Chart(id models.ChartID) (models.ChartDataset, error) {
	c, ok := r.Charts[id]
	if !ok {
		return models.ChartDataset{}, ErrUnknownChart
	}
	return c, nil
}

// Pipeline sequences normalization, derivation, aggregation, chart building
// and insight rules over the four datasets.
type Pipeline struct {
	normalizer *Normalizer
	insights   *InsightService
	logger     *utils.Logger
}

func NewPipeline(logger *utils.Logger) *Pipeline {
	return &Pipeline{
		normalizer: NewNormalizer(logger),
		insights:   NewInsightService(logger),
		logger:     logger,
	}
}

// Insights exposes the rule engine used by the pipeline.
func (p *Pipeline) Insights() *InsightService {
	return p.insights
}

// datasetOutcome is what one dataset pipeline hands back to the merge step.
type datasetOutcome struct {
	stats models.NormalizeStats
	err   error
}

// Run executes one pipeline run. The four datasets are processed
// concurrently, each into its own outcome, and merged once all are done. A
// missing or empty dataset never fails the run; its section is zeroed and a
// note is recorded.
func (p *Pipeline) Run(rc *RunContext) *Result {
	start := time.Now()
	var (
		records  models.RecordSet
		outcomes [4]datasetOutcome
	)

	var g errgroup.Group
	g.Go(func() error {
		rows := rc.Rows(models.DatasetApplicants)
		applicants, stats := p.normalizer.NormalizeApplicants(rows)
		records.Applicants = DeriveApplicants(applicants)
		outcomes[0] = datasetOutcome{stats, p.emptyCheck(rc, models.DatasetApplicants, len(applicants))}
		return nil
	})
	g.Go(func() error {
		rows := rc.Rows(models.DatasetVolunteers)
		volunteers, stats := p.normalizer.NormalizeVolunteers(rows)
		records.Volunteers = DeriveVolunteers(volunteers, rc.Now)
		outcomes[1] = datasetOutcome{stats, p.emptyCheck(rc, models.DatasetVolunteers, len(volunteers))}
		return nil
	})
	g.Go(func() error {
		rows := rc.Rows(models.DatasetBloodDrives)
		drives, stats := p.normalizer.NormalizeBloodDrives(rows)
		records.BloodDrives = drives
		outcomes[2] = datasetOutcome{stats, p.emptyCheck(rc, models.DatasetBloodDrives, len(drives))}
		return nil
	})
	g.Go(func() error {
		rows := rc.Rows(models.DatasetDonors)
		donors, stats := p.normalizer.NormalizeDonors(rows)
		records.Donors = DeriveDonors(donors)
		outcomes[3] = datasetOutcome{stats, p.emptyCheck(rc, models.DatasetDonors, len(donors))}
		return nil
	})
	// dataset pipelines never return an error
	_ = g.Wait()

	snap := &models.KpiSnapshot{
		RunID:       uuid.NewString(),
		GeneratedAt: rc.Now,
		Volunteer:   AggregateVolunteers(records.Applicants, records.Volunteers, rc.Now),
		Financial:   AggregateDonors(records.Donors),
		Operational: AggregateBloodDrives(records.BloodDrives),
		Geographic:  AggregateGeography(records.Applicants, records.Volunteers, records.BloodDrives),
		Stats:       make(map[models.Dataset]models.NormalizeStats, len(models.Datasets)),
	}
	for i, d := range models.Datasets {
		snap.Stats[d] = outcomes[i].stats
		if err := outcomes[i].err; err != nil {
			snap.Notes = append(snap.Notes, err.Error())
			p.logger.Warn("[pipeline] %v", err)
		}
	}
	snap.Insights = p.insights.Generate(snap)

	p.logger.Info("[pipeline] run %s complete in %v (%d insight(s), %d note(s))",
		snap.RunID, time.Since(start).Round(time.Millisecond), len(snap.Insights), len(snap.Notes))

	return &Result{
		Snapshot: snap,
		Charts:   BuildCharts(records),
		Records:  records,
	}
}

// emptyCheck reports an EmptyDatasetError when a dataset produced no records.
func (p *Pipeline) emptyCheck(rc *RunContext, d models.Dataset, n int) error {
	if n > 0 {
		return nil
	}
	reason := "no usable rows"
	if err := rc.LoadErrors[d]; err != nil {
		reason = err.Error()
	} else if _, ok := rc.Datasets[d]; !ok {
		reason = "not loaded"
	}
	return &models.EmptyDatasetError{Dataset: d, Reason: reason}
}

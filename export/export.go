package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"executive-analytics/models"
	"executive-analytics/utils"
)

// ErrUnsupportedFormat is returned for an unknown format or one that cannot
// carry the requested data.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCSV, FormatJSON, FormatYAML, FormatXLSX, FormatPDF:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Filename names an export of dataset made at now, e.g. kpis_20250615.csv.
func Filename(dataset string, f Format, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", dataset, now.Format("20060102"), f)
}

// Exporter writes snapshots and filtered rows in every supported format.
type Exporter struct {
	pdf    PDFPrinter
	logger *utils.Logger
}

// New creates an Exporter. pdf may be nil, in which case PDF exports fail.
func New(pdf PDFPrinter, logger *utils.Logger) *Exporter {
	return &Exporter{pdf: pdf, logger: logger}
}

// KPIs writes the snapshot to w.
func (e *Exporter) KPIs(ctx context.Context, w io.Writer, f Format, snap *models.KpiSnapshot) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, []string{"metric", "value"}, FlattenSnapshot(snap))
	case FormatJSON:
		return writeJSON(w, snap)
	case FormatYAML:
		return writeYAML(w, snap)
	case FormatXLSX:
		return writeXLSX(w, "KPIs", []string{"metric", "value"}, FlattenSnapshot(snap))
	case FormatPDF:
		if e.pdf == nil {
			return fmt.Errorf("%w: pdf renderer not available", ErrUnsupportedFormat)
		}
		html, err := RenderBrief(snap)
		if err != nil {
			return err
		}
		data, err := e.pdf.PrintPDF(ctx, html)
		if err != nil {
			return fmt.Errorf("export: pdf: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// Rows writes raw dataset rows to w. Columns follow the dataset schema.
// PDF is not offered for row data.
func (e *Exporter) Rows(w io.Writer, f Format, dataset models.Dataset, rows []models.RawRow) error {
	columns := make([]string, 0, len(models.SchemaFor(dataset).Fields))
	for _, field := range models.SchemaFor(dataset).Fields {
		columns = append(columns, field.Column)
	}

	switch f {
	case FormatCSV:
		return writeCSV(w, columns, tabulate(columns, rows))
	case FormatJSON:
		return writeJSON(w, rows)
	case FormatYAML:
		return writeYAML(w, rows)
	case FormatXLSX:
		return writeXLSX(w, string(dataset), columns, tabulate(columns, rows))
	}
	return fmt.Errorf("%w: %q for dataset rows", ErrUnsupportedFormat, f)
}

func tabulate(columns []string, rows []models.RawRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		line := make([]string, len(columns))
		for i, c := range columns {
			line[i] = cell(r[c])
		}
		out = append(out, line)
	}
	return out
}

func cell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	default:
		return fmt.Sprint(c)
	}
}

// FlattenSnapshot lists every scalar of the snapshot as a dotted key and its
// value, sorted by key. List elements are keyed by index.
func FlattenSnapshot(snap *models.KpiSnapshot) [][]string {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil
	}
	var out [][]string
	flatten("", tree, &out)
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

func flatten(prefix string, v any, out *[][]string) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			flatten(join(k), child, out)
		}
	case []any:
		for i, child := range node {
			flatten(join(strconv.Itoa(i)), child, out)
		}
	default:
		*out = append(*out, []string{prefix, cell(node)})
	}
}

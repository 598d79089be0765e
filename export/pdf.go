package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"os/exec"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"executive-analytics/models"
	"executive-analytics/utils"
)

// PDFPrinter turns an HTML document into PDF bytes.
type PDFPrinter interface {
	PrintPDF(ctx context.Context, html string) ([]byte, error)
}

// ChromePrinter prints HTML through a headless Chrome instance.
type ChromePrinter struct {
	chromeBin string
	logger    *utils.Logger
}

// NewChromePrinter creates a ChromePrinter. An empty chromeBin means the
// binary is looked up on the system.
func NewChromePrinter(chromeBin string, logger *utils.Logger) *ChromePrinter {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	return &ChromePrinter{chromeBin: chromeBin, logger: logger}
}

// PrintPDF starts a browser for the duration of one print.
func (p *ChromePrinter) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if p.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(p.chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	p.logger.Debug("[pdf] printing %d bytes of HTML with %s", len(html), p.chromeBin)

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("data:text/html;charset=utf-8,"+url.PathEscape(html)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp print: %w", err)
	}
	return pdf, nil
}

func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}
	for _, name := range []string{"google-chrome-stable", "google-chrome", "chromium-browser", "chromium"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	for _, path := range []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
	} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var briefTemplate = template.Must(template.New("brief").Funcs(template.FuncMap{
	"pct":    func(f float64) string { return fmt.Sprintf("%.1f%%", f) },
	"usd":    func(f float64) string { return fmt.Sprintf("$%.2f", f) },
	"mul100": func(f float64) float64 { return f * 100 },
}).Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Executive Brief</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 32px; color: #222; }
h1 { color: #c00; border-bottom: 2px solid #c00; }
table { border-collapse: collapse; width: 100%; margin-bottom: 18px; }
td, th { border: 1px solid #ddd; padding: 6px 10px; text-align: left; }
.muted { color: #888; }
</style></head>
<body>
<h1>Executive Brief</h1>
<p class="muted">Run {{.RunID}} generated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}</p>

<h2>Volunteers</h2>
{{with .Volunteer}}<table>
<tr><th>Applicants</th><td>{{.TotalApplicants}}</td><th>Volunteers</th><td>{{.TotalVolunteers}}</td></tr>
<tr><th>Conversion rate</th><td>{{pct .ConversionRate}}</td><th>Retention rate</th><td>{{pct .RetentionRate}}</td></tr>
<tr><th>New applications (30d)</th><td>{{.MonthlyNewApplications}}</td><th>Days to activate</th><td>{{printf "%.1f" .AverageTimeToActivate}}</td></tr>
</table>{{end}}

<h2>Major Donors</h2>
{{with .Financial}}{{if .Available}}<table>
<tr><th>Total raised</th><td>{{usd .TotalRaised}}</td><th>Donors</th><td>{{.TotalDonors}}</td></tr>
<tr><th>Median gift</th><td>{{usd .MedianGift}}</td><th>Top-10 concentration</th><td>{{pct .Top10Concentration}}</td></tr>
</table>{{else}}<p class="muted">No donor data.</p>{{end}}{{end}}

<h2>Blood Drives</h2>
{{with .Operational}}{{if .Available}}<table>
<tr><th>Drives</th><td>{{.TotalBloodDrives}}</td><th>Products collected</th><td>{{.TotalProductsCollected}}</td></tr>
<tr><th>Collection efficiency</th><td colspan="3">{{pct .CollectionEfficiency}}</td></tr>
</table>{{else}}<p class="muted">No blood drive data.</p>{{end}}{{end}}

<h2>Insights</h2>
{{if .Insights}}<ol>{{range .Insights}}
<li><strong>{{.Prediction}}</strong> ({{printf "%.0f" (mul100 .Confidence)}}% confidence)<br>{{.Recommendation}}</li>{{end}}
</ol>{{else}}<p class="muted">No insights triggered.</p>{{end}}
{{range .Notes}}<p class="muted">Note: {{.}}</p>{{end}}
</body></html>`))

// RenderBrief renders the one-page executive brief used for PDF export.
func RenderBrief(snap *models.KpiSnapshot) (string, error) {
	var buf bytes.Buffer
	if err := briefTemplate.Execute(&buf, snap); err != nil {
		return "", fmt.Errorf("export: render brief: %w", err)
	}
	return buf.String(), nil
}

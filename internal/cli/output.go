package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"phishguard/internal/domain/models"
)

var verdictColors = map[models.Classification]*color.Color{
	models.ClassificationLegitimate: color.New(color.FgGreen, color.Bold),
	models.ClassificationSuspicious: color.New(color.FgYellow, color.Bold),
	models.ClassificationPhishing:   color.New(color.FgRed, color.Bold),
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(w io.Writer, report *models.AnalysisReport) {
	c, ok := verdictColors[report.Result.Classification]
	if !ok {
		c = color.New(color.Bold)
	}

	_, _ = c.Fprintf(w, "%s", report.Result.Classification)
	fmt.Fprintf(w, "  risk %d/100  (%s)\n", report.Result.RiskScore, report.ContentType)
	if report.Degraded {
		_, _ = color.New(color.FgYellow).Fprintln(w, "models unavailable, fallback verdict")
	}
	fmt.Fprintf(w, "\n%s\n", report.Result.Summary)

	if len(report.Result.Indicators) > 0 {
		fmt.Fprintln(w, "\nIndicators:")
		for _, indicator := range report.Result.Indicators {
			fmt.Fprintf(w, "  - %s\n", indicator)
		}
	}

	fmt.Fprintf(w, "\n%s\n", report.Result.Explanation)
}

// printFeatures lists the non-zero slots of a vector by name
func printFeatures(w io.Writer, resp *models.FeaturesResponse) {
	if resp.Degraded {
		_, _ = color.New(color.FgYellow).Fprintln(w, "URL could not be parsed, all features are zero")
		return
	}

	names := make([]string, 0, len(resp.Named))
	for name, value := range resp.Named {
		if value != 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(w, "%-36s %g\n", name, resp.Named[name])
	}
	fmt.Fprintf(w, "\n%d of %d features non-zero\n", len(names), len(resp.Vector))
}

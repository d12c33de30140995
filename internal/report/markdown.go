package report

import (
	"fmt"
	"strings"
	"time"

	"gokinetics/app"
	"gokinetics/domain/kinetics"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Generator renders batch outcomes into the final analysis report
type Generator struct {
	now func() time.Time
}

// NewGenerator creates a report generator
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// Markdown renders the batch outcome as the final markdown report:
// thermodynamic parameters followed by the per-run data table.
func (g *Generator) Markdown(outcome app.BatchOutcome, anion string, saltFactor float64) string {
	var b strings.Builder

	b.WriteString("# Kinetic Analysis Report\n\n")
	fmt.Fprintf(&b, "**Date**: %s\n", g.now().Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "**Anion Configuration**: %s (Salt Factor: %g)\n\n", anion, saltFactor)

	b.WriteString("## 1. Thermodynamic Parameters\n\n")
	if outcome.Arrhenius != nil {
		a := outcome.Arrhenius
		fmt.Fprintf(&b, "- **Activation Energy (Ea)**: %.2f kJ/mol\n", a.ActivationEnergyKJMol)
		fmt.Fprintf(&b, "- **Pre-exponential Factor (A)**: %.2e s⁻¹\n", a.PreExponentialFactor)
		fmt.Fprintf(&b, "- **Arrhenius Linearity (R²)**: %.4f\n", a.Fit.RSquared)
		fmt.Fprintf(&b, "- **Runs in fit**: %d\n", a.PointCount)
		for _, ex := range a.Excluded {
			fmt.Fprintf(&b, "- Excluded from fit: %s (%s)\n", ex.Label, ex.Reason)
		}
	} else if outcome.ArrheniusErr != nil {
		fmt.Fprintf(&b, "Arrhenius analysis unavailable: %v\n", outcome.ArrheniusErr)
	}

	b.WriteString("\n## 2. Experimental Data Summary\n\n")
	b.WriteString("| Run | Temp (K) | k_obs (M/s) | k_intrinsic (M/s) | Linearity (R²) | Method | Flags |\n")
	b.WriteString("| :--- | :--- | :--- | :--- | :--- | :--- | :--- |\n")
	for _, r := range outcome.Results {
		fmt.Fprintf(&b, "| %s | %g | %.2e | %.2e | %.4f | %s | %s |\n",
			r.Metadata.Label, r.Metadata.TemperatureK, r.KObs, r.KIntrinsic,
			r.Fit.RSquared, r.Fit.Method, flagList(r.Flags))
	}

	if len(outcome.Failures) > 0 {
		b.WriteString("\n## 3. Failed Runs\n\n")
		for _, f := range outcome.Failures {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", f.Label, f.Component, f.Message)
		}
	}

	return b.String()
}

// HTML renders the markdown report to HTML for the dashboard
func (g *Generator) HTML(outcome app.BatchOutcome, anion string, saltFactor float64) []byte {
	md := g.Markdown(outcome, anion, saltFactor)

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}

func flagList(flags []kinetics.QualityFlag) string {
	if len(flags) == 0 {
		return "—"
	}
	parts := make([]string, len(flags))
	for i, f := range flags {
		parts[i] = string(f)
	}
	return strings.Join(parts, ", ")
}

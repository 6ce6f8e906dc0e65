package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/etnz/pdv"
	"github.com/etnz/pdv/date"
	"github.com/etnz/pdv/renderer"
)

// reportTask is the data available to the front matter template.
type reportTask struct {
	Period date.Range
	Report string
}

type publishCmd struct {
	outputDir      string
	frontMatterTpl string
}

func (*publishCmd) Name() string { return "publish" }

func (*publishCmd) Synopsis() string { return "writes the sales and cashier reports of every past period" }

func (*publishCmd) Usage() string {
	return `caixa publish [-o <dir>] [-frontmatter <file>]

  Writes the sales and the cashier reports of every day, week, month,
  quarter and year since the first entry of the ledger, up to yesterday, as
  markdown files under <dir>/<report>/<period>/<identifier>.md.

  The front matter template receives .Report and .Period.
`
}

func (c *publishCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outputDir, "o", "reports", "Root directory for the generated reports")
	f.StringVar(&c.frontMatterTpl, "frontmatter", "", "Path to a Go template file for the report front matter")
}

func (c *publishCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var frontMatterTpl *template.Template
	if c.frontMatterTpl != "" {
		var err error
		frontMatterTpl, err = template.ParseFiles(c.frontMatterTpl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to parse front matter template: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	s, logger, err := openSession()
	if err != nil {
		return failure(err)
	}
	defer closeSession(s, logger)

	first, ok := s.Ledger().FirstDay()
	if !ok {
		fmt.Fprintln(os.Stderr, "Ledger is empty, nothing to publish.")
		return subcommands.ExitSuccess
	}

	for _, period := range generatePeriods(first, date.Today().Add(-1)) {
		for _, report := range []string{"sales", "cashier"} {
			task := reportTask{Period: period, Report: report}
			md := renderTask(s, task)
			if frontMatterTpl != nil {
				fm, err := renderFrontMatter(frontMatterTpl, task)
				if err != nil {
					fmt.Fprintf(os.Stderr, "failed to render front matter for %s report %s: %v\n", report, period.Identifier(), err)
					continue
				}
				md = fm + "\n" + md
			}

			file := filepath.Join(c.outputDir, report, period.Name(), period.Identifier()+".md")
			if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
				return failure(err)
			}
			if err := os.WriteFile(file, []byte(md), 0o644); err != nil {
				return failure(err)
			}
			logger.Debug("report published", zap.String("report", report), zap.String("period", period.Identifier()))
		}
	}
	return subcommands.ExitSuccess
}

func renderTask(s *pdv.Session, task reportTask) string {
	if task.Report == "cashier" {
		return renderer.CashierMarkdown(s.CashReport(task.Period))
	}
	return renderer.SalesMarkdown(s.SalesReport(task.Period, pdv.SalesFilter{}))
}

// generatePeriods returns the standard periods overlapping [from, to].
func generatePeriods(from, to date.Date) []date.Range {
	if from.IsZero() || to.Before(from) {
		return nil
	}
	var ranges []date.Range
	for _, p := range []date.Period{date.Daily, date.Weekly, date.Monthly, date.Quarterly, date.Yearly} {
		for r := date.NewRange(from, p); !r.From.After(to); r = date.NewRange(r.To.Add(1), p) {
			ranges = append(ranges, r)
		}
	}
	return ranges
}

func renderFrontMatter(tpl *template.Template, task reportTask) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, task); err != nil {
		return "", err
	}
	return buf.String(), nil
}

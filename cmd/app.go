// Package cmd implements the CLI application to run a point of sale.
package cmd

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/etnz/pdv"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&productCmd{}, "products")
	c.Register(&deleteCmd{}, "products")
	c.Register(&productsCmd{}, "products")
	c.Register(&adjustCmd{}, "products")
	c.Register(&historyCmd{}, "products")

	c.Register(&sellCmd{}, "sales")
	c.Register(&salesCmd{}, "sales")

	c.Register(&cashierCmd{}, "cashier")
	c.Register(&floatCmd{}, "cashier")
	c.Register(&retireCmd{}, "cashier")

	c.Register(&queryCmd{}, "data")
	c.Register(&fmtCmd{}, "data")
	c.Register(&publishCmd{}, "data")
	c.Register(&serveCmd{}, "data")

	c.Register(&topicCmd{}, "help")
}

// EnvHome names the environment variable holding the default data directory.
const EnvHome = "PDV_HOME"

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var dataDir = flag.String("data-dir", envOr(EnvHome, "."), "Directory holding the ledger and product files")
var ledgerFile = flag.String("ledger-file", "pdv-actions.json", "Ledger file, relative to the data directory")
var productsFile = flag.String("products-file", "pdv-produtos.json", "Product file, relative to the data directory")
var currencyCode = flag.String("currency", pdv.DisplayCurrency, "ISO 4217 code of the currency used to display amounts")
var logLevel = flag.String("log-level", "warn", "Minimum log level (debug, info, warn, error)")
var logJSON = flag.Bool("log-json", false, "Write logs as JSON")
var format = flag.String("format", "term", "Report format: term, markdown or html")

// stdout receives the reports.
var stdout io.Writer = os.Stdout

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// dataPath resolves a store file against the data directory.
func dataPath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(*dataDir, file)
}

// newLogger builds the application logger from the log flags. Logs go to
// stderr so that reports can be piped.
func newLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(*logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid -log-level: %w", err)
	}
	cfg := zap.NewDevelopmentConfig()
	if *logJSON {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// openSession is the central function to open the ledger and the product
// files. Notices are printed on stderr.
func openSession() (*pdv.Session, *zap.Logger, error) {
	pdv.DisplayCurrency = strings.ToUpper(*currencyCode)
	logger, err := newLogger()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("could not create data directory: %w", err)
	}
	s := pdv.OpenSession(dataPath(*ledgerFile), dataPath(*productsFile), logger)
	s.Subscribe(func(n pdv.Notice) {
		if n.Kind != pdv.NoticeValidation { // validation errors are reported by the command itself
			fmt.Fprintln(os.Stderr, n)
		}
	})
	return s, logger, nil
}

// closeSession waits for the pending writes, so that the process does not
// exit before the files are written.
func closeSession(s *pdv.Session, logger *zap.Logger) subcommands.ExitStatus {
	defer logger.Sync()
	if err := s.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printMarkdown writes a markdown report in the format selected by -format.
func printMarkdown(md string) {
	switch *format {
	case "markdown", "md":
		io.WriteString(stdout, md)
		return
	case "html":
		var buf bytes.Buffer
		if err := goldmark.New(goldmark.WithExtensions(extension.GFM)).Convert([]byte(md), &buf); err != nil {
			fmt.Fprintf(os.Stderr, "Error converting to html: %v\n", err)
			io.WriteString(stdout, md)
			return
		}
		stdout.Write(buf.Bytes())
		return
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		io.WriteString(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		io.WriteString(stdout, md)
		return
	}
	io.WriteString(stdout, out)
}

// failure prints err and returns the matching exit status: invalid inputs
// are usage errors.
func failure(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if pdv.IsValidation(err) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

// findProduct resolves a product by id or, failing that, by its name.
func findProduct(c *pdv.Catalog, ref string) (pdv.Product, error) {
	if p, ok := c.Product(ref); ok {
		return p, nil
	}
	var found []pdv.Product
	for _, p := range c.Active() {
		if strings.EqualFold(p.Name, ref) {
			found = append(found, p)
		}
	}
	switch len(found) {
	case 0:
		return pdv.Product{}, fmt.Errorf("product %q: %w", ref, pdv.ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return pdv.Product{}, fmt.Errorf("product name %q is ambiguous, use its id", ref)
	}
}

// splitArg splits "ref=value" arguments. A missing value yields def.
func splitArg(arg, def string) (ref, value string, err error) {
	ref, value, found := strings.Cut(arg, "=")
	if ref == "" {
		return "", "", errors.New("missing product in " + arg)
	}
	if !found {
		value = def
	}
	return ref, value, nil
}

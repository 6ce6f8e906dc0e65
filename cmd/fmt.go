package cmd

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/subcommands"

	"github.com/etnz/pdv"
)

type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the ledger and product files into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `caixa fmt

  Validates and formats the ledger and the product files. Both are read,
  the names used by older versions ("cartao", "dinheiro", "un", a single
  "category") are converted, ledger entries are sorted newest first, and the
  files are written back, one entry per line.

  Invalid products are reported but kept.
`
}

func (*fmtCmd) SetFlags(*flag.FlagSet) {}

func (*fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	status := subcommands.ExitSuccess
	if err := formatFile(dataPath(*ledgerFile), formatLedger); err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting ledger: %v\n", err)
		status = subcommands.ExitFailure
	}
	if err := formatFile(dataPath(*productsFile), formatCatalog); err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting products: %v\n", err)
		status = subcommands.ExitFailure
	}
	return status
}

// formatFile rewrites file with format. A missing file is left missing.
func formatFile(file string, format func(data []byte) ([]byte, error)) error {
	data, err := os.ReadFile(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	formatted, err := format(data)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	if bytes.Equal(data, formatted) {
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(file), filepath.Base(file)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(formatted); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), file); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%s has been formatted.\n", file)
	return nil
}

func formatLedger(data []byte) ([]byte, error) {
	actions, err := pdv.DecodeLedger(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(actions, func(a, b pdv.Action) int { return b.When().Compare(a.When()) })

	var buf bytes.Buffer
	if err := pdv.EncodeLedger(&buf, actions); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatCatalog(data []byte) ([]byte, error) {
	products, err := pdv.DecodeCatalog(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if err := p.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: product %q: %v\n", p.ID, err)
		}
	}

	var buf bytes.Buffer
	if err := pdv.EncodeCatalog(&buf, products); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

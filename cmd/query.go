package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/subcommands"
)

type queryCmd struct {
	products bool
}

func (*queryCmd) Name() string     { return "query" }
func (*queryCmd) Synopsis() string { return "query the raw ledger with a JSONPath expression" }
func (*queryCmd) Usage() string {
	return `caixa query [-products] <jsonpath>

  Evaluates a JSONPath expression against the ledger file, or the product
  file with -products, and prints the result as JSON.

  Examples:
    caixa query '$[?(@.type=="sale")].paymentType'
    caixa query -products '$[?(@.stockQuantity <= @.minStockQuantity)].name'
`
}

func (c *queryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.products, "products", false, "Query the product file instead of the ledger")
}

func (c *queryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "exactly one JSONPath expression is required")
		return subcommands.ExitUsageError
	}
	file := dataPath(*ledgerFile)
	if c.products {
		file = dataPath(*productsFile)
	}

	result, err := queryFile(file, f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// queryFile evaluates path against the JSON document in file. A missing file
// is an empty array.
func queryFile(file, path string) (any, error) {
	var doc any = []any{}
	data, err := os.ReadFile(file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("error reading %q: %w", file, err)
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("error parsing %q: %w", file, err)
		}
	}
	result, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	return result, nil
}

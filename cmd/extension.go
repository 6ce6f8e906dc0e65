package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Environment passed to extensions, so that they work on the same files as
// caixa.
const (
	EnvLedgerFile   = "PDV_LEDGER_FILE"
	EnvProductsFile = "PDV_PRODUCTS_FILE"
	EnvCurrency     = "PDV_CURRENCY"
)

// RunExtension runs the external caixa-<subcommand> binary, when there is one
// in the PATH. It returns false if no extension was found, and the exit code
// of the extension otherwise.
func RunExtension(subcommand string, args []string) (bool, int) {
	lp, err := exec.LookPath("caixa-" + subcommand)
	if err != nil {
		return false, 0
	}

	ledger, _ := filepath.Abs(dataPath(*ledgerFile))
	products, _ := filepath.Abs(dataPath(*productsFile))
	home, _ := filepath.Abs(*dataDir)

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(),
		EnvHome+"="+home,
		EnvLedgerFile+"="+ledger,
		EnvProductsFile+"="+products,
		EnvCurrency+"="+*currencyCode,
	)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return true, exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing extension %q: %v\n", lp, err)
		return true, 1
	}
	return true, 0
}

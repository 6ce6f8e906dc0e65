package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExtension(t *testing.T) {
	out := setup(t)
	bin := t.TempDir()
	script := `#!/bin/sh
echo "$PDV_HOME"
echo "$PDV_LEDGER_FILE"
echo "$PDV_CURRENCY"
echo "$@"
exit 3
`
	require.NoError(t, os.WriteFile(filepath.Join(bin, "caixa-hello"), []byte(script), 0o755))
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))

	found, code := RunExtension("hello", []string{"a", "b"})
	require.True(t, found)
	assert.Equal(t, 3, code)
	assert.Equal(t, *dataDir+"\n"+filepath.Join(*dataDir, "pdv-actions.json")+"\nBRL\na b\n", out.String())

	found, _ = RunExtension("missing", nil)
	assert.False(t, found)
}

package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/iksnae/research-session/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// testEnv runs commands against a private data directory and backend
type testEnv struct {
	t       *testing.T
	dataDir string
	apiURL  string
}

func newTestEnv(t *testing.T, apiURL string) *testEnv {
	t.Helper()
	t.Setenv("HOME", testutil.CreateTempDir(t))
	for _, k := range []string{"RESEARCH_API_URL", "RESEARCH_NEWS_URL", "RESEARCH_TIMEOUT", "RESEARCH_DATA_DIR", "RESEARCH_BACKEND", "RESEARCH_LOG_FORMAT"} {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
	return &testEnv{t: t, dataDir: testutil.CreateTempDir(t), apiURL: apiURL}
}

// run executes the root command with the environment's global flags
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	full := append([]string{"--storage", e.dataDir, "--api-url", e.apiURL}, args...)
	return executeCommand(full...)
}

func executeCommand(args ...string) (string, error) {
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag to its default so runs do not leak state
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/iksnae/research-session/internal"
	"github.com/spf13/cobra"
)

var (
	inspectFormat string
	inspectSample int
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect the raw session store",
	Long: `Inspect the keys held in the session store.

This command provides detailed information about:
  • Stored keys and value sizes
  • Element counts for JSON collections
  • Whether legacy chat history is still waiting to be migrated

Examples:
  research-session inspect                        # Inspect the default store
  research-session inspect --storage /path/to/dir # Inspect another data directory
  research-session inspect --format json          # Machine-readable output`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inspectFormat != "text" && inspectFormat != "json" {
			return fmt.Errorf("unsupported format: %s (supported: text, json)", inspectFormat)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		paths, err := resolvePaths(cfg)
		if err != nil {
			return fmt.Errorf("failed to get storage paths: %w", err)
		}

		// Opened without a SessionStore so legacy data is shown before migration
		kv, err := internal.OpenKeyValueStore(cfg.Backend, paths.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer func() { _ = kv.Close() }()

		entries, err := collectKeys(kv, inspectSample)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if inspectFormat == "json" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		displayKeys(out, cfg.Backend, paths.DataDir, entries)
		return nil
	},
}

// KeyInfo describes one stored key
type KeyInfo struct {
	Key      string `json:"key"`
	Size     int    `json:"size"`
	Elements int    `json:"elements,omitempty"`
	Sample   string `json:"sample,omitempty"`
}

func collectKeys(kv internal.KeyValueStore, sample int) ([]KeyInfo, error) {
	keys, err := kv.Keys("")
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	entries := make([]KeyInfo, 0, len(keys))
	for _, key := range keys {
		value, ok, err := kv.Get(key)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		if !ok {
			continue
		}

		info := KeyInfo{Key: key, Size: len(value)}
		var elements []json.RawMessage
		if json.Unmarshal([]byte(value), &elements) == nil {
			info.Elements = len(elements)
		}
		if sample > 0 {
			info.Sample = sampleValue(value, sample)
		}
		entries = append(entries, info)
	}
	return entries, nil
}

// sampleValue returns the first line of value, cut to n*40 runes
func sampleValue(value string, n int) string {
	if i := strings.IndexByte(value, '\n'); i >= 0 {
		value = value[:i] + "..."
	}
	if r := []rune(value); len(r) > n*40 {
		value = string(r[:n*40]) + "..."
	}
	return value
}

func displayKeys(out io.Writer, backend, dataDir string, entries []KeyInfo) {
	fmt.Fprintf(out, "📋 Store: %s (%s)\n", dataDir, backend)
	if len(entries) == 0 {
		fmt.Fprintln(out, "⚠️  No keys found")
		return
	}
	fmt.Fprintf(out, "📊 Found %d key(s)\n\n", len(entries))

	legacy := false
	for _, e := range entries {
		fmt.Fprintf(out, "📦 %s  %s", e.Key, humanize.Bytes(uint64(e.Size)))
		if e.Elements > 0 {
			fmt.Fprintf(out, "  (%d element(s))", e.Elements)
		}
		fmt.Fprintln(out)
		if e.Sample != "" {
			fmt.Fprintf(out, "    %s\n", e.Sample)
		}
		if e.Key == internal.LegacyHistoryKey {
			legacy = true
		}
	}

	if legacy {
		fmt.Fprintln(out)
		fmt.Fprintln(out, warningStyle.Render("Legacy chat history present; it is migrated the next time sessions are loaded"))
	}
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "Output format (text, json)")
	inspectCmd.Flags().IntVar(&inspectSample, "sample", 2, "Sample length in 40-character units (0 to hide)")
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/research-session/internal"
	"github.com/iksnae/research-session/internal/export"
	"github.com/spf13/cobra"
)

var (
	format    string
	outputDir string
	sessionID string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export sessions to file",
	Long: `Export chat sessions to various formats (jsonl, md, yaml, json).

You can export all sessions or a specific session by ID.
Use 'research-session list' to see available session IDs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Validate the format before touching storage
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var sessions []*internal.ChatSession
		if sessionID != "" {
			session, err := a.resolveSession(sessionID)
			if err != nil {
				return err
			}
			sessions = []*internal.ChatSession{session}
		} else {
			sessions = a.store.Sessions()
		}

		if len(sessions) == 0 {
			internal.PrintWarning("No sessions to export")
			return nil
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return &internal.ExportError{Format: format, Path: outputDir, Err: err}
		}

		var firstErr error
		exported := 0
		ctx := context.Background()
		err = internal.ShowProgress(ctx, fmt.Sprintf("Exporting %d session(s) to %s", len(sessions), outputDir), func() error {
			for _, session := range sessions {
				path := filepath.Join(outputDir, fmt.Sprintf("session_%s.%s", session.ID, exporter.Extension()))
				if err := exportSession(exporter, session, path); err != nil {
					internal.LogError("Failed to export session %s: %v", session.ID, err)
					if firstErr == nil {
						firstErr = &internal.ExportError{Format: format, Path: path, Err: err}
					}
					continue
				}
				exported++
			}
			return nil
		})
		if err != nil {
			return err
		}
		if firstErr != nil {
			return firstErr
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Export complete: %d session(s) exported to %s\n", exported, outputDir)
		return nil
	},
}

func exportSession(exporter export.Exporter, session *internal.ChatSession, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := exporter.Export(session, file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().StringVar(&sessionID, "session-id", "", "Export a specific session by ID")
}

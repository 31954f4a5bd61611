// Command prescan runs the coordinate QA sweep over SARSAT message files and
// appends every pattern-matched coordinate span to the debugging CSV log.
//
// Each input path is either a message file (one SARSAT alert per file, the
// file name is the message ID) or a directory of such files.
package main

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/rescuedecisions/sarsat-msg-etl/internal/config"
	"github.com/rescuedecisions/sarsat-msg-etl/internal/domain"
	"github.com/rescuedecisions/sarsat-msg-etl/internal/prescan"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		outPath         string
		fieldConfigPath string
		quiet           bool
	)

	cmd := &cobra.Command{
		Use:   "prescan [paths...]",
		Short: "Sweep SARSAT message files for coordinate-like spans",
		Long: "Runs the preparse coordinate sweep over message files and appends\n" +
			"one row per pattern-matched span, valid or not, to the QA log CSV.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := collectFiles(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no message files under %s", strings.Join(args, ", "))
			}

			fieldCfg, err := config.LoadFieldConfig(fieldConfigPath)
			if err != nil {
				return err
			}

			var bar *progressbar.ProgressBar
			if !quiet {
				bar = progressbar.Default(int64(len(files)), "scanning")
			}

			rows, err := prescan.WriteCSV(outPath, prescan.Scan(readMessages(files, bar), fieldCfg))
			if err != nil {
				return err
			}

			cmd.Printf("wrote %d rows from %d messages to %s\n", rows, len(files), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", prescan.DefaultLogPath, "QA log CSV path")
	cmd.Flags().StringVar(&fieldConfigPath, "field-config", "", "YAML field configuration override")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress the progress bar")

	return cmd
}

// collectFiles expands arguments into a flat list of message files.
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			files = append(files, filepath.Join(p, e.Name()))
		}
	}
	return files, nil
}

// readMessages lazily loads message files as the sweep consumes them. A file
// that cannot be read is skipped so one bad file never aborts the sweep.
func readMessages(files []string, bar *progressbar.ProgressBar) iter.Seq[domain.RawMessage] {
	return func(yield func(domain.RawMessage) bool) {
		for _, path := range files {
			data, err := os.ReadFile(path)
			if bar != nil {
				_ = bar.Add(1)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "skipping %s: %v\n", path, err)
				continue
			}
			id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			if !yield(domain.RawMessage{ID: id, Text: string(data)}) {
				return
			}
		}
	}
}

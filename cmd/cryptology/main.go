// Package main provides the CLI entrypoint for cryptology.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/sha3"
	"golang.org/x/term"

	"github.com/verte-zerg/cryptology/internal/config"
	"github.com/verte-zerg/cryptology/internal/hexutil"
	"github.com/verte-zerg/cryptology/internal/model"
	"github.com/verte-zerg/cryptology/internal/store"
)

const historyOutputLimit = 4096

var errInvalidUTF8 = errors.New("input is not valid UTF-8")

var (
	inputPath  string
	outputPath string
	noHistory  bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cryptology",
		Short:         "Classical cipher toolkit and cryptanalysis",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "do not record this run in the history database")

	rootCmd.AddCommand(newFrequencyCmd())
	rootCmd.AddCommand(newHexCmd())
	rootCmd.AddCommand(newXorCmd())
	rootCmd.AddCommand(newEncryptCmd())
	rootCmd.AddCommand(newDecryptCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addIOFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input file (default: stdin)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")
}

func loadConfig() (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return fileCfg, nil
}

func readInput(cmd *cobra.Command) ([]byte, error) {
	if inputPath != "" {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		return data, nil
	}
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		logErrln("Reading from stdin; finish with Ctrl-D.")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return data, nil
}

func readText(cmd *cobra.Command) (string, error) {
	data, err := readInput(cmd)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", errInvalidUTF8
	}
	return string(data), nil
}

// writeOutput renders into memory first so a failing render leaves no
// partial output file behind.
func writeOutput(cmd *cobra.Command, render func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	if outputPath == "" {
		if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// inputDigest fingerprints an input so history can group runs over it.
func inputDigest(data []byte) string {
	sum := sha3.Sum256(data)
	return hexutil.Encode(sum[:])
}

func historyEnabled(fileCfg config.FileConfig) bool {
	if noHistory {
		return false
	}
	if fileCfg.History.Enabled != nil {
		return *fileCfg.History.Enabled
	}
	return true
}

func historyDBPath(fileCfg config.FileConfig) string {
	if fileCfg.History.DBPath != nil && *fileCfg.History.DBPath != "" {
		return config.ExpandHome(*fileCfg.History.DBPath)
	}
	return config.DefaultDBPath()
}

// recordRun stores a run in the history database. Failures are reported on
// stderr and never fail the command.
func recordRun(cmd *cobra.Command, fileCfg config.FileConfig, startedAt time.Time, run model.Run, candidates []model.Candidate) {
	if !historyEnabled(fileCfg) {
		return
	}
	st, err := store.Open(historyDBPath(fileCfg))
	if err != nil {
		logErrf("failed to open history db: %v\n", err)
		return
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close history db: %v\n", cerr)
		}
	}()
	now := time.Now()
	run.CreatedAt = now
	run.DurationMs = now.Sub(startedAt).Milliseconds()
	if len(run.Output) > historyOutputLimit {
		run.Output = run.Output[:historyOutputLimit]
	}
	if _, err := st.InsertRun(cmd.Context(), run, candidates); err != nil {
		logErrf("failed to record run: %v\n", err)
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

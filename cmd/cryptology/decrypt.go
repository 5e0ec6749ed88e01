package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/cryptology/internal/caesar"
	"github.com/verte-zerg/cryptology/internal/config"
	"github.com/verte-zerg/cryptology/internal/cribs"
	"github.com/verte-zerg/cryptology/internal/frequency"
	"github.com/verte-zerg/cryptology/internal/hexutil"
	"github.com/verte-zerg/cryptology/internal/model"
	"github.com/verte-zerg/cryptology/internal/mtp"
	"github.com/verte-zerg/cryptology/internal/report"
	"github.com/verte-zerg/cryptology/internal/vigenere"
	"github.com/verte-zerg/cryptology/internal/workbench"
	"github.com/verte-zerg/cryptology/internal/xor"
)

const recordedCandidates = 5

var (
	showCandidates   bool
	maxKeyLengthFlag int
	rankLengths      bool

	mtpThreshold float64
	mtpWorkers   int
	mtpMask      string
	mtpCribs     string
	mtpSweep     bool
	mtpWorkbench bool
)

// runWorkbench is replaced in tests; the real one needs a terminal.
var runWorkbench = workbench.Run

func newDecryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "decrypt",
		Aliases: []string{"dec", "d"},
		Short:   "Decrypt with a known key or crack without one",
	}
	cmd.AddCommand(newDecryptCaesarCmd())
	cmd.AddCommand(newDecryptVigenereCmd())
	cmd.AddCommand(newDecryptOneTimePadCmd())
	cmd.AddCommand(newDecryptManyTimePadCmd())
	cmd.AddCommand(newDecryptSubstitutionCmd())
	return cmd
}

func newDecryptCaesarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     string(model.CipherCaesar),
		Aliases: []string{"c"},
		Short:   "Decrypt a Caesar text; finds the shift when none is given",
		Args:    cobra.NoArgs,
		RunE:    runDecryptCaesarCmd,
	}
	addIOFlags(cmd)
	cmd.Flags().IntVarP(&shiftFlag, "shift", "s", 0, "known shift")
	cmd.Flags().BoolVar(&showCandidates, "candidates", false, "print every shift with its score on stderr")
	return cmd
}

func runDecryptCaesarCmd(cmd *cobra.Command, _ []string) error {
	startedAt := time.Now()
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	text, err := readText(cmd)
	if err != nil {
		return err
	}

	run := model.Run{Cipher: model.CipherCaesar, InputSize: len(text), InputDigest: inputDigest([]byte(text)), KeyLength: 1}
	var ranked []model.Candidate
	if cmd.Flags().Changed("shift") {
		run.Operation = model.OpDecrypt
		run.Output = caesar.DecryptWithShift(text, shiftFlag)
		shift := ((shiftFlag % caesar.Shifts) + caesar.Shifts) % caesar.Shifts
		run.Key = string(rune('A' + shift))
		run.Score = frequency.Score(run.Output)
	} else {
		candidates := caesar.Candidates(text)
		if showCandidates {
			if err := report.WriteShiftCandidates(cmd.ErrOrStderr(), candidates); err != nil {
				return fmt.Errorf("failed to write candidates: %w", err)
			}
		}
		best := caesar.Best(candidates)
		logErrf("Shift: %d (score %.2f)\n", best.Shift, best.Score)
		run.Operation = model.OpCrack
		run.Output = best.Plaintext
		run.Key = string(rune('A' + best.Shift))
		run.Score = best.Score
		ranked = rankShifts(candidates)
	}

	if err := writeOutput(cmd, func(w io.Writer) error {
		_, err := io.WriteString(w, run.Output)
		return err
	}); err != nil {
		return err
	}
	recordRun(cmd, fileCfg, startedAt, run, ranked)
	return nil
}

func rankShifts(candidates []caesar.Candidate) []model.Candidate {
	sorted := append([]caesar.Candidate(nil), candidates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	out := make([]model.Candidate, 0, recordedCandidates)
	for i, c := range sorted {
		if i == recordedCandidates {
			break
		}
		out = append(out, model.Candidate{
			Rank:  i + 1,
			Label: fmt.Sprintf("shift %d", c.Shift),
			Score: c.Score,
		})
	}
	return out
}

func newDecryptVigenereCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     string(model.CipherVigenere),
		Aliases: []string{"v"},
		Short:   "Decrypt a Vigenère text with a key, a key length, or neither",
		Args:    cobra.NoArgs,
		RunE:    runDecryptVigenereCmd,
	}
	addIOFlags(cmd)
	cmd.Flags().StringVarP(&keyFlag, "key", "k", "", "known key")
	cmd.Flags().IntVarP(&keyLengthFlag, "key-length", "n", 0, "known key length")
	cmd.Flags().IntVarP(&maxKeyLengthFlag, "max-key-length", "l", vigenere.DefaultMaxKeyLength, "longest key length to try")
	cmd.Flags().BoolVar(&rankLengths, "rank-lengths", false, "print index of coincidence hints for each key length on stderr")
	return cmd
}

func runDecryptVigenereCmd(cmd *cobra.Command, _ []string) error {
	startedAt := time.Now()
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "max-key-length", &maxKeyLengthFlag, fileCfg.Vigenere.MaxKeyLength)

	if cmd.Flags().Changed("key-length") && keyLengthFlag < 1 {
		return fmt.Errorf("key length must be positive, got %d", keyLengthFlag)
	}
	if maxKeyLengthFlag < 2 {
		return fmt.Errorf("max key length must be at least 2, got %d", maxKeyLengthFlag)
	}
	if keyFlag != "" && !hasLetter(keyFlag) {
		return fmt.Errorf("key %q contains no letters", keyFlag)
	}

	text, err := readText(cmd)
	if err != nil {
		return err
	}

	run := model.Run{Cipher: model.CipherVigenere, InputSize: len(text), InputDigest: inputDigest([]byte(text))}
	var ranked []model.Candidate
	switch {
	case keyFlag != "":
		run.Operation = model.OpDecrypt
		run.Key = strings.ToUpper(keyFlag)
		run.KeyLength = len(run.Key)
		run.Output = vigenere.DecryptWithKey(text, run.Key)
		run.Score = frequency.Score(run.Output)
	case keyLengthFlag > 0:
		res := vigenere.DecryptWithKeyLength(text, keyLengthFlag)
		run.Operation = model.OpCrack
		run.Key, run.KeyLength, run.Output, run.Score = res.Key, res.KeyLength, res.Plaintext, res.Score
		logErrf("Key: %s (score %.2f)\n", res.Key, res.Score)
	default:
		logErrf("Trying key lengths 2..%d\n", maxKeyLengthFlag)
		hints := vigenere.RankKeyLengths(text, maxKeyLengthFlag)
		if rankLengths {
			if err := report.WriteKeyLengths(cmd.ErrOrStderr(), hints); err != nil {
				return fmt.Errorf("failed to write key lengths: %w", err)
			}
		}
		res := vigenere.DecryptWithUnknownKeyLength(text, maxKeyLengthFlag)
		run.Operation = model.OpCrack
		run.Key, run.KeyLength, run.Output, run.Score = res.Key, res.KeyLength, res.Plaintext, res.Score
		logErrf("Key: %s (length %d, score %.2f)\n", res.Key, res.KeyLength, res.Score)
		ranked = rankKeyLengthHints(hints)
	}

	if err := writeOutput(cmd, func(w io.Writer) error {
		_, err := io.WriteString(w, run.Output)
		return err
	}); err != nil {
		return err
	}
	recordRun(cmd, fileCfg, startedAt, run, ranked)
	return nil
}

func rankKeyLengthHints(hints []vigenere.KeyLengthScore) []model.Candidate {
	out := make([]model.Candidate, 0, recordedCandidates)
	for i, h := range hints {
		if i == recordedCandidates {
			break
		}
		out = append(out, model.Candidate{
			Rank:  i + 1,
			Label: fmt.Sprintf("length %d", h.KeyLength),
			Score: h.IoC,
		})
	}
	return out
}

func newDecryptOneTimePadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     string(model.CipherOneTimePad),
		Aliases: []string{"otp"},
		Short:   "XOR the input with a known pad",
		Args:    cobra.NoArgs,
		RunE:    runDecryptOneTimePadCmd,
	}
	addIOFlags(cmd)
	addPadFlags(cmd)
	if err := cmd.MarkFlagRequired("key"); err != nil {
		logErrf("failed to mark flag required: %v\n", err)
	}
	return cmd
}

func runDecryptOneTimePadCmd(cmd *cobra.Command, _ []string) error {
	startedAt := time.Now()
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	ct, err := readPadInput(cmd)
	if err != nil {
		return err
	}
	key, err := padKey()
	if err != nil {
		return err
	}
	if len(key) < len(ct) {
		logErrf("Key covers %d of %d bytes; the rest is left as is.\n", len(key), len(ct))
	}

	out := xor.Padded(ct, key)[:len(ct)]
	if err := writeOutput(cmd, func(w io.Writer) error {
		_, err := w.Write(out)
		return err
	}); err != nil {
		return err
	}
	recordRun(cmd, fileCfg, startedAt, model.Run{
		Operation:   model.OpDecrypt,
		Cipher:      model.CipherOneTimePad,
		KeyLength:   len(key),
		InputSize:   len(ct),
		InputDigest: inputDigest(ct),
		Output:      string(out),
	}, nil)
	return nil
}

func newDecryptManyTimePadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     string(model.CipherManyTimePad),
		Aliases: []string{"mtp"},
		Short:   "Recover a pad reused across ciphertexts (one hex ciphertext per line)",
		Args:    cobra.NoArgs,
		RunE:    runDecryptManyTimePadCmd,
	}
	addIOFlags(cmd)
	cmd.Flags().Float64Var(&mtpThreshold, "space-threshold", mtp.DefaultSpaceThreshold, "votes a space needs relative to the runner-up")
	cmd.Flags().IntVar(&mtpWorkers, "workers", 0, "parallel workers for the pair analysis (default: CPU count)")
	cmd.Flags().StringVar(&mtpMask, "mask", "", "print this character where the key byte is unknown")
	cmd.Flags().StringVar(&mtpCribs, "cribs", "", "crib list file, one crib per line")
	cmd.Flags().BoolVar(&mtpSweep, "sweep", false, "drag the built-in cribs and print text-like hits on stderr")
	cmd.Flags().BoolVarP(&mtpWorkbench, "workbench", "w", false, "refine the key interactively before printing")
	return cmd
}

func runDecryptManyTimePadCmd(cmd *cobra.Command, _ []string) error {
	startedAt := time.Now()
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFloatConfig(cmd, "space-threshold", &mtpThreshold, fileCfg.ManyTimePad.SpaceThreshold)
	applyStringConfig(cmd, "mask", &mtpMask, fileCfg.ManyTimePad.Mask)
	applyStringConfig(cmd, "cribs", &mtpCribs, fileCfg.ManyTimePad.Cribs)

	if mtpThreshold <= 0 {
		return fmt.Errorf("space threshold must be positive, got %g", mtpThreshold)
	}
	if len(mtpMask) > 1 {
		return fmt.Errorf("mask must be a single character, got %q", mtpMask)
	}

	text, err := readText(cmd)
	if err != nil {
		return err
	}
	ciphertexts, err := hexutil.DecodeLines(text)
	if err != nil {
		return fmt.Errorf("failed to decode ciphertexts: %w", err)
	}

	engine := &mtp.Engine{SpaceThreshold: mtpThreshold, Workers: mtpWorkers}
	res, err := engine.Decrypt(ciphertexts)
	if err != nil {
		if errors.Is(err, mtp.ErrTooFewCiphertexts) {
			return fmt.Errorf("need at least two ciphertexts, got %d: %w", len(ciphertexts), err)
		}
		return err
	}

	if err := sweepCribs(cmd, ciphertexts); err != nil {
		return err
	}

	key, resolved := res.Key, res.Resolved
	if mtpWorkbench {
		wb := workbench.NewModel(ciphertexts, key, resolved)
		if err := runWorkbench(wb); err != nil {
			return err
		}
		if k, r, ok := wb.Result(); ok {
			key, resolved = k, r
		} else {
			logErrln("Workbench aborted; keeping the recovered key.")
		}
	}

	plaintexts := make([]string, len(ciphertexts))
	for i, c := range ciphertexts {
		plaintexts[i] = string(xor.Padded(c, key)[:len(c)])
		if mtpMask != "" {
			plaintexts[i] = mtp.Mask(plaintexts[i], resolved, mtpMask[0])
		}
	}

	if err := writeOutput(cmd, func(w io.Writer) error {
		for _, p := range plaintexts {
			if _, err := fmt.Fprintln(w, p); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		return report.WriteKeyConfidence(w, key, resolved)
	}); err != nil {
		return err
	}

	recordRun(cmd, fileCfg, startedAt, model.Run{
		Operation:   model.OpCrack,
		Cipher:      model.CipherManyTimePad,
		Key:         report.KeyConfidence(key, resolved),
		KeyLength:   len(key),
		Score:       resolvedShare(resolved),
		InputSize:   len(text),
		InputDigest: inputDigest([]byte(text)),
		Output:      strings.Join(plaintexts, "\n"),
	}, nil)
	return nil
}

func sweepCribs(cmd *cobra.Command, ciphertexts [][]byte) error {
	var list []string
	switch {
	case mtpCribs != "":
		loaded, err := cribs.Load(config.ExpandHome(mtpCribs))
		if err != nil {
			return fmt.Errorf("failed to load cribs: %w", err)
		}
		list = loaded
	case mtpSweep:
		list = cribs.Default
	default:
		return nil
	}
	hits := cribs.Sweep(ciphertexts, list)
	if err := report.WriteCribHits(cmd.ErrOrStderr(), hits); err != nil {
		return fmt.Errorf("failed to write crib hits: %w", err)
	}
	return nil
}

// resolvedShare is the recorded score of a many-time-pad run: the percentage
// of key bytes backed by at least one vote.
func resolvedShare(resolved []bool) float64 {
	if len(resolved) == 0 {
		return 0
	}
	n := 0
	for _, ok := range resolved {
		if ok {
			n++
		}
	}
	return 100 * float64(n) / float64(len(resolved))
}

func newDecryptSubstitutionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     string(model.CipherSubstitution),
		Aliases: []string{"monosub", "ms"},
		Short:   "Guess a monoalphabetic substitution by frequency rank",
		Args:    cobra.NoArgs,
		RunE:    runDecryptSubstitutionCmd,
	}
	addIOFlags(cmd)
	return cmd
}

func runDecryptSubstitutionCmd(cmd *cobra.Command, _ []string) error {
	startedAt := time.Now()
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	text, err := readText(cmd)
	if err != nil {
		return err
	}

	sub := frequency.RankSubstitution(frequency.Count(text), frequency.English)
	out := sub.Apply(text)
	if err := report.WriteSubstitution(cmd.ErrOrStderr(), sub); err != nil {
		return fmt.Errorf("failed to write substitution: %w", err)
	}
	if err := writeOutput(cmd, func(w io.Writer) error {
		_, err := io.WriteString(w, out)
		return err
	}); err != nil {
		return err
	}

	var key strings.Builder
	for _, p := range sub.Pairs() {
		key.WriteRune(p[1])
	}
	recordRun(cmd, fileCfg, startedAt, model.Run{
		Operation:   model.OpCrack,
		Cipher:      model.CipherSubstitution,
		Key:         key.String(),
		KeyLength:   len(sub),
		Score:       frequency.Score(out),
		InputSize:   len(text),
		InputDigest: inputDigest([]byte(text)),
		Output:      out,
	}, nil)
	return nil
}

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/cryptology/internal/caesar"
	"github.com/verte-zerg/cryptology/internal/frequency"
	"github.com/verte-zerg/cryptology/internal/hexutil"
	"github.com/verte-zerg/cryptology/internal/keygen"
	"github.com/verte-zerg/cryptology/internal/model"
	"github.com/verte-zerg/cryptology/internal/vigenere"
	"github.com/verte-zerg/cryptology/internal/xor"
)

const defaultRandomKeyLength = 8

var (
	shiftFlag     int
	keyFlag       string
	keyLengthFlag int
	rawInputFlag  bool
	rawKeyFlag    bool

	randomKeyLength int
)

// newKeygen is replaced in tests to make random keys predictable.
var newKeygen = keygen.New

func newEncryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "encrypt",
		Aliases: []string{"enc", "e"},
		Short:   "Encrypt a text with a classical cipher",
	}
	cmd.AddCommand(newEncryptCaesarCmd())
	cmd.AddCommand(newEncryptVigenereCmd())
	cmd.AddCommand(newEncryptOneTimePadCmd())
	return cmd
}

func newEncryptCaesarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     string(model.CipherCaesar),
		Aliases: []string{"c"},
		Short:   "Rotate letters by a shift (random when omitted)",
		Args:    cobra.NoArgs,
		RunE:    runEncryptCaesarCmd,
	}
	addIOFlags(cmd)
	cmd.Flags().IntVarP(&shiftFlag, "shift", "s", 0, "shift to apply")
	return cmd
}

func runEncryptCaesarCmd(cmd *cobra.Command, _ []string) error {
	startedAt := time.Now()
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	text, err := readText(cmd)
	if err != nil {
		return err
	}

	shift := shiftFlag
	if !cmd.Flags().Changed("shift") {
		shift, err = randomShift(newKeygen())
		if err != nil {
			return err
		}
		logErrf("Shift: %d\n", shift)
	}
	shift = ((shift % frequency.AlphabetSize) + frequency.AlphabetSize) % frequency.AlphabetSize

	out := caesar.EncryptWithShift(text, shift)
	if err := writeOutput(cmd, func(w io.Writer) error {
		_, err := io.WriteString(w, out)
		return err
	}); err != nil {
		return err
	}
	recordRun(cmd, fileCfg, startedAt, model.Run{
		Operation:   model.OpEncrypt,
		Cipher:      model.CipherCaesar,
		Key:         string(rune('A' + shift)),
		KeyLength:   1,
		InputSize:   len(text),
		InputDigest: inputDigest([]byte(text)),
		Output:      out,
	}, nil)
	return nil
}

// randomShift never returns 0 so the output always differs from the input.
func randomShift(gen *keygen.Generator) (int, error) {
	for {
		letters, err := gen.RandomLetters(1)
		if err != nil {
			return 0, fmt.Errorf("failed to generate shift: %w", err)
		}
		if shift := int(letters[0] - 'A'); shift != 0 {
			return shift, nil
		}
	}
}

func newEncryptVigenereCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     string(model.CipherVigenere),
		Aliases: []string{"v"},
		Short:   "Encrypt with a repeating letter key (random when omitted)",
		Args:    cobra.NoArgs,
		RunE:    runEncryptVigenereCmd,
	}
	addIOFlags(cmd)
	cmd.Flags().StringVarP(&keyFlag, "key", "k", "", "key letters")
	cmd.Flags().IntVarP(&randomKeyLength, "key-length", "n", defaultRandomKeyLength, "length of a generated key")
	return cmd
}

func runEncryptVigenereCmd(cmd *cobra.Command, _ []string) error {
	startedAt := time.Now()
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	text, err := readText(cmd)
	if err != nil {
		return err
	}

	key := strings.ToUpper(keyFlag)
	if key == "" {
		key, err = newKeygen().RandomLetters(randomKeyLength)
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}
		logErrf("Key: %s\n", key)
	} else if !hasLetter(key) {
		return fmt.Errorf("key %q contains no letters", keyFlag)
	}

	out := vigenere.Encrypt(text, key)
	if err := writeOutput(cmd, func(w io.Writer) error {
		_, err := io.WriteString(w, out)
		return err
	}); err != nil {
		return err
	}
	recordRun(cmd, fileCfg, startedAt, model.Run{
		Operation:   model.OpEncrypt,
		Cipher:      model.CipherVigenere,
		Key:         key,
		KeyLength:   len(key),
		InputSize:   len(text),
		InputDigest: inputDigest([]byte(text)),
		Output:      out,
	}, nil)
	return nil
}

func newEncryptOneTimePadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     string(model.CipherOneTimePad),
		Aliases: []string{"otp"},
		Short:   "XOR the input with a pad at least as long (random when omitted)",
		Args:    cobra.NoArgs,
		RunE:    runEncryptOneTimePadCmd,
	}
	addIOFlags(cmd)
	addPadFlags(cmd)
	return cmd
}

func addPadFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&keyFlag, "key", "k", "", "pad bytes")
	cmd.Flags().BoolVarP(&rawInputFlag, "raw-input", "r", false, "input is hex")
	cmd.Flags().BoolVarP(&rawKeyFlag, "raw-key", "y", false, "key is hex")
}

func runEncryptOneTimePadCmd(cmd *cobra.Command, _ []string) error {
	startedAt := time.Now()
	fileCfg, err := loadConfig()
	if err != nil {
		return err
	}
	msg, err := readPadInput(cmd)
	if err != nil {
		return err
	}

	var key []byte
	if keyFlag == "" {
		key, err = newKeygen().RandomBytes(len(msg))
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}
		logErrf("Key: %s\n", hexutil.Encode(key))
	} else {
		key, err = padKey()
		if err != nil {
			return err
		}
		if len(key) < len(msg) {
			return fmt.Errorf("key is shorter than the input (%d < %d bytes)", len(key), len(msg))
		}
	}

	out := hexutil.Encode(xor.Overlap(msg, key))
	if err := writeOutput(cmd, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, out)
		return err
	}); err != nil {
		return err
	}
	recordRun(cmd, fileCfg, startedAt, model.Run{
		Operation:   model.OpEncrypt,
		Cipher:      model.CipherOneTimePad,
		KeyLength:   len(key),
		InputSize:   len(msg),
		InputDigest: inputDigest(msg),
		Output:      out,
	}, nil)
	return nil
}

func readPadInput(cmd *cobra.Command) ([]byte, error) {
	data, err := readInput(cmd)
	if err != nil {
		return nil, err
	}
	if !rawInputFlag {
		return data, nil
	}
	decoded, err := hexutil.Decode(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode input: %w", err)
	}
	return decoded, nil
}

func padKey() ([]byte, error) {
	if !rawKeyFlag {
		return []byte(keyFlag), nil
	}
	key, err := hexutil.Decode(keyFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to decode key: %w", err)
	}
	return key, nil
}

func hasLetter(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20
		if c >= 'a' && c <= 'z' {
			return true
		}
	}
	return false
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/cryptology/internal/frequency"
	"github.com/verte-zerg/cryptology/internal/hexutil"
	"github.com/verte-zerg/cryptology/internal/report"
	"github.com/verte-zerg/cryptology/internal/xor"
)

var (
	freqHistogram bool

	hexRaw   bool
	hexASCII bool

	xorAlpha    string
	xorBeta     string
	xorRawAlpha bool
	xorRawBeta  bool
	xorOverlap  bool
)

func newFrequencyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "frequency-analysis",
		Aliases: []string{"freq", "fa"},
		Short:   "Letter frequency report for a text",
		Args:    cobra.NoArgs,
		RunE:    runFrequencyCmd,
	}
	addIOFlags(cmd)
	cmd.Flags().BoolVar(&freqHistogram, "histogram", false, "draw observed vs English letter bars")
	return cmd
}

func runFrequencyCmd(cmd *cobra.Command, _ []string) error {
	text, err := readText(cmd)
	if err != nil {
		return err
	}
	return writeOutput(cmd, func(w io.Writer) error {
		if err := report.WriteFrequency(w, frequency.Analyze(text)); err != nil {
			return err
		}
		if !freqHistogram {
			return nil
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		return report.WriteHistogram(w, frequency.Count(text))
	})
}

func newHexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hex",
		Short: "Convert between bytes and hexadecimal",
		Long:  "Without flags the input bytes are printed as lowercase hex. With --raw the input is parsed as hex first.",
		Args:  cobra.NoArgs,
		RunE:  runHexCmd,
	}
	addIOFlags(cmd)
	cmd.Flags().BoolVarP(&hexRaw, "raw", "r", false, "input is hex")
	cmd.Flags().BoolVarP(&hexASCII, "ascii", "a", false, "print bytes as they are instead of hex")
	return cmd
}

func runHexCmd(cmd *cobra.Command, _ []string) error {
	data, err := readInput(cmd)
	if err != nil {
		return err
	}
	if hexRaw {
		data, err = hexutil.Decode(string(data))
		if err != nil {
			return fmt.Errorf("failed to decode input: %w", err)
		}
	}
	return writeOutput(cmd, func(w io.Writer) error {
		if hexASCII {
			_, err := w.Write(data)
			return err
		}
		_, err := fmt.Fprintln(w, hexutil.Encode(data))
		return err
	})
}

func newXorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xor",
		Short: "XOR two files and print the result as hex",
		Args:  cobra.NoArgs,
		RunE:  runXorCmd,
	}
	cmd.Flags().StringVarP(&xorAlpha, "alpha", "a", "", "first operand file")
	cmd.Flags().StringVarP(&xorBeta, "beta", "b", "", "second operand file")
	cmd.Flags().BoolVarP(&xorRawAlpha, "raw-alpha", "r", false, "first operand is hex")
	cmd.Flags().BoolVarP(&xorRawBeta, "raw-beta", "y", false, "second operand is hex")
	cmd.Flags().BoolVar(&xorOverlap, "overlap", false, "stop at the shorter operand instead of zero-padding it")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")
	if err := cmd.MarkFlagRequired("alpha"); err != nil {
		logErrf("failed to mark flag required: %v\n", err)
	}
	if err := cmd.MarkFlagRequired("beta"); err != nil {
		logErrf("failed to mark flag required: %v\n", err)
	}
	return cmd
}

func runXorCmd(cmd *cobra.Command, _ []string) error {
	a, err := readOperand(xorAlpha, xorRawAlpha)
	if err != nil {
		return err
	}
	b, err := readOperand(xorBeta, xorRawBeta)
	if err != nil {
		return err
	}
	var out []byte
	if xorOverlap {
		out = xor.Overlap(a, b)
	} else {
		out = xor.Padded(a, b)
	}
	return writeOutput(cmd, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, hexutil.Encode(out))
		return err
	})
}

func readOperand(path string, raw bool) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !raw {
		return data, nil
	}
	decoded, err := hexutil.Decode(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return decoded, nil
}

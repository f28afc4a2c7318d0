package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"idscan/internal/document"
	"idscan/internal/document/mrz"
)

type mrzReport struct {
	Line1               string           `json:"line1"`
	Line2               string           `json:"line2"`
	PassportNumber      string           `json:"passport_number,omitempty"`
	PassportNumberValid bool             `json:"passport_number_check_valid"`
	StructurallyValid   bool             `json:"structurally_valid"`
	Parsed              *document.Parsed `json:"parsed,omitempty"`
}

func newMRZCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mrz [text...]",
		Short: "Parse machine readable zone text and print it as JSON",
		Long: `Normalizes raw MRZ text as the scanner returns it, then decodes the TD3
passport zone. Arguments are joined with newlines; with no arguments the text
is read from stdin.

Example:
  idscan mrz 'P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<' 'L898902C<3UTO6908061F9406236ZE184226B<<<<<14'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.Join(args, "\n")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				raw = string(b)
			}
			report, err := inspectMRZ(raw)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
}

func inspectMRZ(raw string) (mrzReport, error) {
	rec, err := mrz.Normalize(raw)
	if err != nil {
		return mrzReport{}, fmt.Errorf("normalize mrz: %w", err)
	}
	report := mrzReport{Line1: rec.Line1, Line2: rec.Line2}
	if pn, err := mrz.ExtractPassportNumber(raw); err == nil {
		report.PassportNumber = pn.Number
		report.PassportNumberValid = pn.CheckValid
	}
	if p, ok := mrz.ParseFull(raw); ok {
		parsed := document.FromPassport(p)
		report.StructurallyValid = true
		report.Parsed = &parsed
	}
	return report, nil
}

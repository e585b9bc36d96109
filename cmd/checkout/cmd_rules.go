package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/imrishuroy/landing-checkout/internal/checkout"
	"github.com/imrishuroy/landing-checkout/internal/validation"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the validation rules and unit price served by the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		set, err := newClient().Rules(ctx)
		if err != nil {
			return err
		}
		return printRules(cmd.OutOrStdout(), set)
	},
}

func printRules(w io.Writer, set *checkout.RuleSet) error {
	fmt.Fprintf(w, "Unit price: %d cents\n\n", set.UnitPriceCents)

	fields := tablewriter.NewWriter(w)
	fields.Header("Field", "Check", "Message")
	for _, f := range set.Rules.Fields {
		if err := fields.Append([]string{f.Field, describeRule(f), f.Message}); err != nil {
			return err
		}
	}
	if err := fields.Render(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	postal := tablewriter.NewWriter(w)
	postal.Header("Country", "Postal pattern")
	codes := make([]string, 0, len(set.Rules.Postal.Countries))
	for code := range set.Rules.Postal.Countries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		if err := postal.Append([]string{code, set.Rules.Postal.Countries[code].Pattern}); err != nil {
			return err
		}
	}
	fallback := "at least " + strconv.Itoa(set.Rules.Postal.FallbackMinLength) + " characters"
	if err := postal.Append([]string{"other", fallback}); err != nil {
		return err
	}
	return postal.Render()
}

func describeRule(f validation.FieldRule) string {
	switch {
	case f.Postal:
		return "postal code for country"
	case f.Pattern != "":
		return "matches " + f.Pattern
	case f.MinLength > 0:
		return "at least " + strconv.Itoa(f.MinLength) + " characters"
	case f.Max > 0:
		return fmt.Sprintf("integer %d-%d", f.Min, f.Max)
	case f.Required:
		return "required"
	default:
		return "-"
	}
}

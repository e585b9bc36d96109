package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/imrishuroy/landing-checkout/internal/checkout"
	"github.com/imrishuroy/landing-checkout/internal/money"
	"github.com/imrishuroy/landing-checkout/internal/validation"
)

var orderFields checkout.Fields

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Validate and place an order",
	Long: `Validate the order locally with the rules served by the API, then
submit it. Nothing is sent when local validation fails.`,
	RunE: runSubmit,
}

var pinCmd = &cobra.Command{
	Use:   "pin <country> <postal-code>",
	Short: "Check a postal code against the rules",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if validation.ValidPin(args[1], args[0]) {
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		}
		return fmt.Errorf("%q is not a valid postal code for %s", args[1], args[0])
	},
}

func init() {
	f := submitCmd.Flags()
	f.StringVar(&orderFields.Name, "name", "", "full name")
	f.StringVar(&orderFields.Email, "email", "", "email address")
	f.StringVar(&orderFields.Phone, "phone", "", "phone number")
	f.StringVar(&orderFields.Address1, "address1", "", "address line 1")
	f.StringVar(&orderFields.Address2, "address2", "", "address line 2")
	f.StringVar(&orderFields.City, "city", "", "city")
	f.StringVar(&orderFields.State, "state", "", "state or region")
	f.StringVar(&orderFields.Country, "country", "", "ISO country code, e.g. IN, US, GB")
	f.StringVar(&orderFields.Pin, "pin", "", "postal code")
	f.StringVar(&orderFields.Qty, "qty", "1", "quantity (1-10)")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	client := newClient()
	set, err := client.Rules(ctx)
	if err != nil {
		return err
	}

	form := checkout.NewForm(validation.New(set.Rules), client, set.UnitPriceCents)
	form.OpenModal()
	// the flag value goes to validation as given; only the preview is clamped
	form.Fields = orderFields

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total: %s\n", form.TotalFor(orderFields.Qty))

	receipt, err := form.Submit(ctx)
	if err != nil {
		var rejected *checkout.RejectedError
		if errors.As(err, &rejected) {
			if perr := printFieldErrors(out, rejected.Fields); perr != nil {
				return perr
			}
			return errors.New("order rejected")
		}
		return err
	}

	fmt.Fprintf(out, "Order %s placed at %s, total %s\n",
		receipt.ID, receipt.CreatedAt.Format("2006-01-02 15:04:05"), money.Format(receipt.TotalCents))
	return nil
}

func printFieldErrors(w io.Writer, errs validation.Errors) error {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)

	table := tablewriter.NewWriter(w)
	table.Header("Field", "Problem")
	for _, name := range names {
		if err := table.Append([]string{name, errs[name]}); err != nil {
			return err
		}
	}
	return table.Render()
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"paygate/internal/reconcile"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type depsOpener func(ctx context.Context) (*deps, error)

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	return context.WithTimeout(cmd.Context(), timeout)
}

func verifyCmd(open depsOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [reference]",
		Short: "Verify one reference with Paystack and record it if successful",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			d, err := open(ctx)
			if err != nil {
				return err
			}
			defer d.close()

			out, err := d.service.Verify(ctx, args[0])
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), args[0], out)
		},
	}
}

func pendingCmd(open depsOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Verify every pending transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			ctx, cancel := commandContext(cmd)
			defer cancel()

			d, err := open(ctx)
			if err != nil {
				return err
			}
			defer d.close()

			w := cmd.OutOrStdout()
			sum, err := d.service.SweepPending(ctx, limit, func(ref string, out *reconcile.Outcome, err error) {
				if err != nil {
					fmt.Fprintf(w, "%s\terror\t%v\n", ref, err)
					return
				}
				_ = printResult(w, ref, out)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "checked=%d recorded=%d unchanged=%d failed=%d\n",
				sum.Checked, sum.Recorded, sum.Unchanged, sum.Failed)
			return nil
		},
	}
	cmd.Flags().IntP("limit", "n", 100, "maximum number of pending transactions to check")
	return cmd
}

func printResult(w io.Writer, reference string, out *reconcile.Outcome) error {
	line := struct {
		Reference string           `json:"reference"`
		Recorded  bool             `json:"recorded"`
		Result    reconcile.Result `json:"result"`
	}{reference, out.Transaction != nil, out.Result}

	b, err := json.Marshal(line)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

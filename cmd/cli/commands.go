package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iho/achledger/internal/adapter/http/dto"
	"github.com/iho/achledger/internal/nacha"
)

func transfersCmd(api *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfers",
		Short: "Transfer operations",
	}

	var (
		req            dto.CreateTransferRequest
		idempotencyKey string
	)
	submit := &cobra.Command{
		Use:   "submit",
		Short: "Submit a transfer between two bank accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.TransferResponse
			if err := api.postJSON(cmd.Context(), "/api/v1/transfers", req, &resp, idempotencyKey); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	f := submit.Flags()
	f.StringVar(&req.Amount, "amount", "", "Amount in dollars, e.g. 125.50")
	f.StringVar(&req.EffectiveDate, "date", "", "Effective date (YYYY-MM-DD)")
	f.StringVar(&req.Description, "description", "", "Free text description")
	f.StringVar(&req.Debit.RoutingNumber, "debit-routing", "", "Debit account routing number")
	f.StringVar(&req.Debit.AccountNumber, "debit-account", "", "Debit account number")
	f.StringVar(&req.Debit.AccountType, "debit-type", "checking", "Debit account type (checking|savings)")
	f.StringVar(&req.Debit.HolderName, "debit-name", "", "Debit account holder name")
	f.StringVar(&req.Credit.RoutingNumber, "credit-routing", "", "Credit account routing number")
	f.StringVar(&req.Credit.AccountNumber, "credit-account", "", "Credit account number")
	f.StringVar(&req.Credit.AccountType, "credit-type", "checking", "Credit account type (checking|savings)")
	f.StringVar(&req.Credit.HolderName, "credit-name", "", "Credit account holder name")
	f.StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key for safe retries")
	for _, name := range []string{"amount", "date", "debit-routing", "debit-account", "debit-name", "credit-routing", "credit-account", "credit-name"} {
		_ = submit.MarkFlagRequired(name)
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a transfer and both of its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.TransferResponse
			if err := api.getJSON(cmd.Context(), "/api/v1/transfers/"+url.PathEscape(args[0]), &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cancel := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a pending transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := api.postJSON(cmd.Context(), "/api/v1/transfers/"+url.PathEscape(args[0])+"/cancel", nil, nil, ""); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "transfer %s cancelled\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(submit, get, cancel)
	return cmd
}

func batchCmd(api *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Batch assembly",
	}

	var date string
	run := &cobra.Command{
		Use:   "run",
		Short: "Assemble pending entries due on or before a date into NACHA files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.AssemblyResponse
			if err := api.postJSON(cmd.Context(), "/api/v1/batches", dto.AssembleBatchRequest{TargetDate: date}, &resp, ""); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "target date %s: %d file(s), %d entries, %d attempt(s)\n",
				resp.TargetDate, len(resp.Files), resp.EntryCount, resp.Attempts)
			printFiles(out, resp.Files)
			for _, w := range resp.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			return nil
		},
	}
	run.Flags().StringVar(&date, "date", "", "Target date (YYYY-MM-DD), defaults to today on the server")

	cmd.AddCommand(run)
	return cmd
}

func calendarCmd(api *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Business day calendar",
	}

	var date string
	info := &cobra.Command{
		Use:   "info",
		Short: "Describe a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.BusinessDayResponse
			if err := api.getJSON(cmd.Context(), "/api/v1/calendar/"+url.PathEscape(date), &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	info.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD)")
	_ = info.MarkFlagRequired("date")

	var (
		addDate string
		days    int
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Add business days to a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.AddBusinessDaysResponse
			path := "/api/v1/calendar/" + url.PathEscape(addDate) + "/add/" + strconv.Itoa(days)
			if err := api.getJSON(cmd.Context(), path, &resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Result)
			return nil
		},
	}
	add.Flags().StringVar(&addDate, "date", "", "Start date (YYYY-MM-DD)")
	add.Flags().IntVar(&days, "days", 1, "Business days to add")
	_ = add.MarkFlagRequired("date")

	cmd.AddCommand(info, add)
	return cmd
}

func filesCmd(api *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Generated NACHA files",
	}

	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List generated files, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var files []*dto.FileResponse
			path := fmt.Sprintf("/api/v1/files?limit=%d&offset=%d", limit, offset)
			if err := api.getJSON(cmd.Context(), path, &files); err != nil {
				return err
			}
			printFiles(cmd.OutOrStdout(), files)
			return nil
		},
	}
	list.Flags().IntVar(&limit, "limit", 50, "Maximum files to list")
	list.Flags().IntVar(&offset, "offset", 0, "Files to skip")

	var output string
	download := &cobra.Command{
		Use:   "download <id>",
		Short: "Download the NACHA content of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := url.PathEscape(args[0])

			var meta dto.FileResponse
			if err := api.getJSON(cmd.Context(), "/api/v1/files/"+id, &meta); err != nil {
				return err
			}
			content, err := api.do(cmd.Context(), "GET", "/api/v1/files/"+id+"/content", nil, nil)
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = meta.FileName
			}
			if err := os.WriteFile(path, content, 0o600); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", len(content), path)
			return nil
		},
	}
	download.Flags().StringVarP(&output, "output", "o", "", "Destination path, defaults to the file name")

	verify := &cobra.Command{
		Use:   "verify <path>",
		Short: "Validate a local NACHA file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			summary, err := nacha.Verify(content)
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(args[0]), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s OK: %d batch(es), %d entries, debit %s, credit %s, entry hash %d\n",
				filepath.Base(args[0]), summary.BatchCount, summary.EntryAddendaCount,
				cents(summary.TotalDebit), cents(summary.TotalCredit), summary.EntryHash)
			return nil
		},
	}

	reconcile := &cobra.Command{
		Use:   "reconcile <id>",
		Short: "Compare a file with the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ReconciliationResponse
			if err := api.postJSON(cmd.Context(), "/api/v1/files/"+url.PathEscape(args[0])+"/reconcile", nil, &resp, ""); err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if !resp.IsReconciled {
				return fmt.Errorf("file %s has %d discrepancies", args[0], len(resp.Problems))
			}
			return nil
		},
	}

	transmitted := &cobra.Command{
		Use:   "transmitted <id>",
		Short: "Mark a file as delivered to the ODFI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.FileResponse
			if err := api.postJSON(cmd.Context(), "/api/v1/files/"+url.PathEscape(args[0])+"/transmitted", nil, &resp, ""); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "file %s is %s\n", resp.ID, resp.Status)
			return nil
		},
	}

	var reason string
	failed := &cobra.Command{
		Use:   "failed <id>",
		Short: "Mark a file as failed and fail its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.FileResponse
			body := dto.FileFailedRequest{Reason: reason}
			if err := api.postJSON(cmd.Context(), "/api/v1/files/"+url.PathEscape(args[0])+"/failed", body, &resp, ""); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "file %s is %s (%d entries failed)\n", resp.ID, resp.Status, len(resp.EntryIDs))
			return nil
		},
	}
	failed.Flags().StringVar(&reason, "reason", "", "Why the transmission failed")
	_ = failed.MarkFlagRequired("reason")

	cmd.AddCommand(list, download, verify, reconcile, transmitted, failed)
	return cmd
}

func printFiles(w io.Writer, files []*dto.FileResponse) {
	if len(files) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEFFECTIVE\tSTATUS\tENTRIES\tDEBIT\tCREDIT")
	for _, f := range files {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			f.ID, truncate(f.FileName, 32), f.EffectiveDate, f.Status, len(f.EntryIDs), f.TotalDebit, f.TotalCredit)
	}
	_ = tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func cents(n int) string {
	return fmt.Sprintf("%d.%02d", n/100, n%100)
}

package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/auth"
)

type globalOptions struct {
	baseURL string
	timeout time.Duration
	token   string
	user    string
	name    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "splitledger-cli",
		Short:         "SplitLedger CLI tool",
		Long:          `A command line interface for recording shared expenses and settlements against the SplitLedger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.baseURL, "url", envOr("SPLITLEDGER_URL", "http://localhost:8080"), "Base URL of the SplitLedger API")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	flags.StringVar(&opts.token, "token", os.Getenv("SPLITLEDGER_TOKEN"), "Bearer token")
	flags.StringVar(&opts.user, "user", os.Getenv("SPLITLEDGER_USER"), "Caller id sent as X-User-ID when no token is set")
	flags.StringVar(&opts.name, "name", "", "Caller display name sent as X-User-Name")

	rootCmd.AddCommand(
		expenseCmd(opts),
		settleCmd(opts),
		settlementsCmd(opts),
		balancesCmd(opts),
		activityCmd(opts),
		ledgerCmd(opts),
		tokenCmd(),
	)

	return rootCmd
}

func expenseCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Expense operations",
	}

	var (
		req dto.CreateExpenseRequest
		grp string
		key string
	)
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense paid by the caller and split it evenly",
		RunE: func(cmd *cobra.Command, args []string) error {
			if grp != "" {
				req.GroupID = &grp
			}
			if key == "" {
				key = defaultIdempotencyKey()
			}
			data, err := newAPIClient(opts).post(cmd.Context(), "/api/v1/expenses", req, key)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	addCmd.Flags().StringVar(&req.Amount, "amount", "", "Total amount, e.g. 120.50")
	addCmd.Flags().StringVar(&req.Note, "note", "", "Short description")
	addCmd.Flags().StringSliceVar(&req.ParticipantIDs, "participants", nil, "Participant ids including the caller")
	addCmd.Flags().StringVar(&grp, "group", "", "Group id")
	addCmd.Flags().StringVar(&key, "idempotency-key", "", "Idempotency key (generated when empty)")
	_ = addCmd.MarkFlagRequired("amount")
	_ = addCmd.MarkFlagRequired("participants")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := newAPIClient(opts).get(cmd.Context(), "/api/v1/expenses/"+url.PathEscape(args[0]), nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}

	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list <group-id>",
		Short: "List the expenses of a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/groups/" + url.PathEscape(args[0]) + "/expenses"
			data, err := newAPIClient(opts).get(cmd.Context(), path, pageQuery(limit, offset))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	cmd.AddCommand(addCmd, getCmd, listCmd)
	return cmd
}

func settleCmd(opts *globalOptions) *cobra.Command {
	var (
		req dto.CreateSettlementRequest
		key string
	)
	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Pay a creditor; the amount is applied to the oldest shares first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				key = defaultIdempotencyKey()
			}
			data, err := newAPIClient(opts).post(cmd.Context(), "/api/v1/settlements", req, key)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().StringVar(&req.CreditorID, "to", "", "Creditor id")
	cmd.Flags().StringVar(&req.Amount, "amount", "", "Amount paid")
	cmd.Flags().StringVar(&req.Method, "method", "cash", "Payment method")
	cmd.Flags().StringVar(&key, "idempotency-key", "", "Idempotency key (generated when empty)")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func settlementsCmd(opts *globalOptions) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "settlements",
		Short: "List settlements the caller paid or received",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := newAPIClient(opts).get(cmd.Context(), "/api/v1/settlements", pageQuery(limit, offset))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	return cmd
}

func balancesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Show what the caller owes and is owed",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := newAPIClient(opts).get(cmd.Context(), "/api/v1/balances", nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
}

func activityCmd(opts *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the caller's most recent expenses",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := newAPIClient(opts).get(cmd.Context(), "/api/v1/activity", pageQuery(limit, 0))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Number of expenses")
	return cmd
}

func ledgerCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency (operators only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := newAPIClient(opts).get(cmd.Context(), "/api/v1/ledger/consistency", nil)
			var serr *statusError
			if errors.As(err, &serr) && serr.Status == http.StatusConflict && len(data) > 0 {
				_ = printJSON(cmd.OutOrStdout(), data)
				return fmt.Errorf("consistency check FAILED (status %d)", serr.Status)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Consistency check PASSED")
			return printJSON(cmd.OutOrStdout(), data)
		},
	}

	var payer, creditor string
	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare settled and applied totals for a payer and creditor",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("payer_id", payer)
			q.Set("creditor_id", creditor)
			data, err := newAPIClient(opts).get(cmd.Context(), "/api/v1/ledger/reconcile", q)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	reconcileCmd.Flags().StringVar(&payer, "payer", "", "Payer id")
	reconcileCmd.Flags().StringVar(&creditor, "creditor", "", "Creditor id")
	_ = reconcileCmd.MarkFlagRequired("payer")
	_ = reconcileCmd.MarkFlagRequired("creditor")

	cmd.AddCommand(consistencyCmd, reconcileCmd)
	return cmd
}

// tokenCmd mints a bearer token locally with the server's signing secret.
func tokenCmd() *cobra.Command {
	var (
		secret string
		name   string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a signed bearer token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("a signing secret is required (--secret or JWT_SECRET)")
			}
			token, err := auth.NewJWTManager(secret, ttl).Generate(&domain.User{ID: args[0], Name: name})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret")
	cmd.Flags().StringVar(&name, "display-name", "", "Display name embedded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

func pageQuery(limit, offset int) url.Values {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	return q
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

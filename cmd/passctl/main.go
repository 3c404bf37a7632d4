package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/entity"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/infrastructure/bootstrap"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/infrastructure/config"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/usecase"
	"github.com/velronatechnologies/Ticpin-website-sub002/pkg/logger"
)

const commandTimeout = 2 * time.Minute

type passOperations interface {
	GetUserPass(ctx context.Context, email, phone string) (usecase.PassLookup, error)
	CheckDuplicatePass(ctx context.Context, email, phone string) (entity.DuplicateCheck, error)
	CleanupDuplicatePasses(ctx context.Context, email, phone string) (int, error)
	RenewPass(ctx context.Context, email, userID string) (usecase.PassLookup, error)
}

type reminderRunner interface {
	Run(ctx context.Context) (usecase.ReminderReport, error)
}

type backend struct {
	passes    passOperations
	reminders reminderRunner
	close     func(ctx context.Context)
}

var openBackend = func(ctx context.Context) (*backend, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	container, err := bootstrap.New(ctx, cfg, logger.NewLogger(cfg.LogLevel), nil)
	if err != nil {
		return nil, err
	}

	return &backend{
		passes:    container.PassService,
		reminders: container.ReminderJob,
		close:     container.Close,
	}, nil
}

var (
	flagEmail  string
	flagPhone  string
	flagUserID string
)

var rootCmd = &cobra.Command{
	Use:           "passctl",
	Short:         "Inspect and repair Ticpin passes",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Resolve the current pass of an identity",
	RunE: withBackend(func(ctx context.Context, cmd *cobra.Command, b *backend) error {
		lookup, err := b.passes.GetUserPass(ctx, flagEmail, flagPhone)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), lookup)
	}),
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether an identity already holds an active pass",
	RunE: withBackend(func(ctx context.Context, cmd *cobra.Command, b *backend) error {
		check, err := b.passes.CheckDuplicatePass(ctx, flagEmail, flagPhone)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), check)
	}),
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete superseded pass documents of an identity",
	RunE: withBackend(func(ctx context.Context, cmd *cobra.Command, b *backend) error {
		if flagEmail == "" && flagPhone == "" {
			return usecase.ErrNoIdentity
		}
		deleted, err := b.passes.CleanupDuplicatePasses(ctx, flagEmail, flagPhone)
		if printErr := printJSON(cmd.OutOrStdout(), map[string]int{"deleted": deleted}); printErr != nil {
			return printErr
		}
		return err
	}),
}

var renewCmd = &cobra.Command{
	Use:   "renew",
	Short: "Issue a fresh pass to an existing holder",
	RunE: withBackend(func(ctx context.Context, cmd *cobra.Command, b *backend) error {
		if flagEmail == "" {
			return fmt.Errorf("--email is required")
		}
		lookup, err := b.passes.RenewPass(ctx, flagEmail, flagUserID)
		if err != nil {
			return err
		}
		if !lookup.Found() {
			return fmt.Errorf("no pass to renew for %s", flagEmail)
		}
		return printJSON(cmd.OutOrStdout(), lookup)
	}),
}

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Run the expiry reminder job once",
	RunE: withBackend(func(ctx context.Context, cmd *cobra.Command, b *backend) error {
		report, err := b.reminders.Run(ctx)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), report)
	}),
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEmail, "email", "", "pass holder e-mail")
	rootCmd.PersistentFlags().StringVar(&flagPhone, "phone", "", "pass holder phone number")
	renewCmd.Flags().StringVar(&flagUserID, "user-id", "", "owner of the renewed pass, defaults to the previous owner")

	rootCmd.AddCommand(lookupCmd, checkCmd, cleanupCmd, renewCmd, remindCmd)
}

func withBackend(run func(ctx context.Context, cmd *cobra.Command, b *backend) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		b, err := openBackend(ctx)
		if err != nil {
			return err
		}
		if b.close != nil {
			defer b.close(context.Background())
		}

		return run(ctx, cmd, b)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

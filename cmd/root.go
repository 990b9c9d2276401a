package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/JChrist/mvn-cleaner/internal/config"
)

var (
	// Version info populated from main
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets build-time version information.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

func versionString() string {
	return fmt.Sprintf("%s (%s) built %s", appVersion, appCommit, appDate)
}

// newRootCmd builds the command with its own option set so every invocation
// starts from defaults.
func newRootCmd() *cobra.Command {
	opts := &config.Options{}

	cmd := &cobra.Command{
		Use:   "mvn-cleaner",
		Short: "Remove superseded versions from the local Maven repository",
		Long: `mvn-cleaner - reclaim disk space in ~/.m2/repository.

Scans the local repository, keeps the highest version of every library
and deletes all older version directories. Use --dry to preview.`,
		Args:          cobra.NoArgs,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd.Context(), *opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVarP(&opts.DryRun, "dry", "d", false, "Report what would be removed without deleting")
	cmd.Flags().BoolVarP(&opts.Print, "print", "p", false, "Print the keep/delete decision for every library")
	cmd.Flags().StringVar(&opts.Repository, "repo", "", "Repository root (default $HOME/.m2/repository)")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "Show detailed operation logs")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	cmd.SetGlobalNormalizationFunc(lowerCaseFlags)

	return cmd
}

// lowerCaseFlags makes long flag names case-insensitive.
func lowerCaseFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ToLower(name))
}

// foldShorthands lower-cases single-dash clusters made only of the d and p
// shorthands, which pflag never normalizes.
func foldShorthands(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		switch {
		case a == "--":
			copy(out[i:], args[i:])
			return out
		case isShorthandCluster(a):
			out[i] = strings.ToLower(a)
		default:
			out[i] = a
		}
	}
	return out
}

func isShorthandCluster(a string) bool {
	if len(a) < 2 || a[0] != '-' || a[1] == '-' {
		return false
	}
	return strings.Trim(a[1:], "dDpP") == ""
}

// Execute runs the root command with the process arguments. SIGINT and
// SIGTERM cancel the run between filesystem entries.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	rootCmd.SetArgs(foldShorthands(os.Args[1:]))
	return rootCmd.ExecuteContext(ctx)
}

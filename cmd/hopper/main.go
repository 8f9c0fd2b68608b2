// Command hopper sends test notices to the collector, for verifying a
// project's configuration from the shell or from deploy scripts.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redleaf-labs/hopper/internal/logging"
	"github.com/redleaf-labs/hopper/pkg/hopper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hopper",
		Short:         "Error notifier client",
		Long:          "Sends error notices to the collector configured via hopper.yml and HOPPER_* environment variables.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newNotifyCmd(), newVersionCmd())
	return root
}

func newNotifyCmd() *cobra.Command {
	var (
		class     string
		message   string
		reqURL    string
		component string
		action    string
		params    []string
		dryRun    bool
		logLevel  string
	)

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Assemble and send a test notice",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []hopper.Option{
				hopper.WithLogger(logging.New(logging.ParseLevel(logLevel))),
				hopper.WithSynchronous(),
			}
			if dryRun {
				opts = append(opts, hopper.WithWriter(cmd.OutOrStdout(), true))
			}

			notifier, err := hopper.NewFromEnvironment(opts...)
			if err != nil {
				return err
			}
			defer notifier.Close()

			noticeOpts := []hopper.NoticeOption{
				hopper.WithURL(reqURL),
				hopper.WithComponent(component),
				hopper.WithAction(action),
			}
			if p := parseParams(params); len(p) > 0 {
				noticeOpts = append(noticeOpts, hopper.WithParams(p))
			}

			token, err := notifier.NotifyMessage(class, message, noticeOpts...)
			if err != nil {
				return err
			}
			if token == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "notice suppressed by ignore rule")
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "notice sent: %s\n", token)
			return nil
		},
	}

	cmd.Flags().StringVar(&class, "class", "TestNotice", "error class to report")
	cmd.Flags().StringVar(&message, "message", "Test notice from the hopper CLI", "error message to report")
	cmd.Flags().StringVar(&reqURL, "url", "", "request url to attach")
	cmd.Flags().StringVar(&component, "component", "", "component name to attach")
	cmd.Flags().StringVar(&action, "action", "", "action name to attach")
	cmd.Flags().StringArrayVar(&params, "param", nil, "request parameter as key=value (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the payload instead of sending it")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the notifier version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), hopper.Version)
		},
	}
}

// parseParams turns repeated key=value flags into a params map. A value
// with no "=" becomes a key with an empty value.
func parseParams(pairs []string) map[string]any {
	if len(pairs) == 0 {
		return nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, _ := strings.Cut(pair, "=")
		out[k] = v
	}
	return out
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"smartlinc-bridge/internal/adapters/input/http"
	"smartlinc-bridge/internal/adapters/output/persistence"
	"smartlinc-bridge/internal/domain/service"
	"smartlinc-bridge/internal/metrics"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	timeout    time.Duration
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "smartlinc ADDRESS 0|1",
		Short: "Control Insteon devices through a SmartLinc gateway",
		Long: `smartlinc reads and switches Insteon devices through the HTTP interface of a
SmartLinc powerline gateway.

With an address and 0 or 1 it prints the device status, switches the device
off or on and prints the status again.`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runToggle,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default $SMARTLINC_CONFIG or ./smartlinc.yaml)")
	root.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 0, "Give up after this long (0 waits for the gateway)")

	root.AddCommand(
		&cobra.Command{
			Use:   "status ADDRESS",
			Short: "Print the device status (0 off, 1 on, level for dimmers)",
			Args:  cobra.ExactArgs(1),
			RunE:  runStatus,
		},
		&cobra.Command{
			Use:   "set ADDRESS on|off",
			Short: "Switch a device on or off",
			Args:  cobra.ExactArgs(2),
			RunE:  runSet,
		},
		&cobra.Command{
			Use:   "serve",
			Short: "Serve device state and metrics over HTTP",
			Args:  cobra.NoArgs,
			RunE:  runServe,
		},
		newConfigCommand(),
	)
	return root
}

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Long: `Write a config file with the default settings.

protocol.reply_infix is empty by default, so a status reply must carry the
status bytes right after the device address. Gateways that echo the modem id
and message flags need it set to those bytes, for example:

  protocol:
    reply_infix: 151CAC2B`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := persistence.NewViperConfigRepository(configPath)
			cfg, err := repo.Get(cmd.Context())
			if err != nil {
				return err
			}
			return service.NewConfigService(repo).UpdateConfig(cmd.Context(), cfg)
		},
	})
	return cmd
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// runToggle keeps the classic invocation: status, switch, status.
func runToggle(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return cmd.Usage()
	}
	on, err := parseOnOff(args[1])
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.close()

	status, err := a.controller.ReadStatus(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), status)

	if err := a.controller.SetOnOff(ctx, args[0], on); err != nil {
		return err
	}

	status, err = a.controller.ReadStatus(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), status)
	a.logFailures()
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.close()

	status, err := a.controller.ReadStatus(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), status)
	a.logFailures()
	return nil
}

func runSet(cmd *cobra.Command, args []string) error {
	on, err := parseOnOff(args[1])
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.controller.SetOnOff(ctx, args[0], on); err != nil {
		return err
	}
	a.logFailures()
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.close()

	srv := http.NewServer(a.controller, a.cfg.Metrics.Path, metrics.Handler(a.registry), a.log.Named("http"))
	a.log.Info("http server listening", zap.String("addr", a.cfg.Server.Addr))
	return srv.ListenAndServe(ctx, a.cfg.Server.Addr)
}

func (a *app) logFailures() {
	if n := a.controller.FailureCount(); n > 0 {
		a.log.Info("gateway transport failures", zap.Int64("count", n))
	}
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "on":
		return true, nil
	case "0", "off":
		return false, nil
	}
	return false, fmt.Errorf("expected 0|1 or on|off, got %q", s)
}

// Package main provides the psbrowse CLI entry point.
// psbrowse browses the commands of a PowerShell host and renders their help in the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"psbrowse/internal/config"
	"psbrowse/internal/host"
	"psbrowse/internal/logger"
	"psbrowse/internal/output"
	"psbrowse/internal/services"
	"psbrowse/internal/shell"
)

var (
	cfgFile    string
	testMode   bool
	jsonOutput bool

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "psbrowse",
	Short: "psbrowse - PowerShell command browser",
	Long: `psbrowse lists the commands registered in a PowerShell host, groups them by module,
filters them and renders their help (synopsis, syntax per parameter set, parameters, examples).`,
	SilenceUsage: true,
	RunE:         runShell, // Default behavior is to run the interactive shell
}

// shellCmd represents the shell command (explicit version of default behavior)
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive browser",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the psbrowse build and, when a host is reachable, its PowerShell version.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		browser, err := newBrowser()
		if err != nil {
			return err
		}
		return browser.Version(cmd.Context())
	},
}

// configCmd prints the effective configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cfg.WriteYAML(cmd.OutOrStdout())
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Debug("Command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file [default: $XDG_CONFIG_HOME/psbrowse/config.yaml]")
	flags.String("log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	flags.String("log-file", "", "Write logs to file instead of stderr")
	flags.String("host", "", "PowerShell executable [default: pwsh, then powershell]")
	flags.Duration("timeout", host.DefaultTimeout, "Timeout for a single host query")
	flags.String("min-version", "", "Reject hosts older than this PowerShell version")
	flags.String("style", "auto", "Render style (auto|dark|light|notty|ascii)")
	flags.Int("width", 100, "Word wrap width for rendered help")
	flags.Bool("plain", false, "Disable colors and borders")
	flags.Bool("functions", false, "Include functions in command lists")
	flags.Bool("aliases", false, "Include aliases in command lists")
	flags.BoolVar(&testMode, "test-mode", false, "Run in deterministic test mode")
	flags.BoolVar(&jsonOutput, "json", false, "Print status messages as JSON lines")

	// Bind flags to viper
	bindings := map[string]string{
		config.KeyLogLevel:       "log-level",
		config.KeyLogFile:        "log-file",
		config.KeyHostPath:       "host",
		config.KeyHostTimeout:    "timeout",
		config.KeyHostMinVersion: "min-version",
		config.KeyRenderStyle:    "style",
		config.KeyRenderWidth:    "width",
		config.KeyRenderPlain:    "plain",
		config.KeyListFunctions:  "functions",
		config.KeyListAliases:    "aliases",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", flag, err)
			os.Exit(1)
		}
	}

	// Add subcommands
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	addBrowseCommands(rootCmd)

	// Load configuration and configure the logger before any command execution
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	var err error
	cfg, err = config.Load(viper.GetViper(), config.Sources{ConfigFile: cfgFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Configure(cfg.LogLevel, cfg.LogFile, testMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("Configuration loaded", "host", cfg.Host.Path, "timeout", cfg.Host.Timeout, "style", cfg.Render.Style)
}

// newBrowser initializes the services against the configured host and returns
// a browser printing to stdout.
func newBrowser() (*shell.Browser, error) {
	svc, err := shell.InitializeServices(cfg, host.NewPwshConnector(cfg.HostSettings()))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	if testMode {
		svc.Render.SetPlain(true)
	}
	return shell.NewBrowser(svc, newPrinter(svc), services.ListOptions{
		IncludeFunctions: cfg.List.Functions,
		IncludeAliases:   cfg.List.Aliases,
	}), nil
}

func newPrinter(svc *shell.Services) *output.Printer {
	opts := []output.Option{output.WithStyles(svc.Theme)}
	switch {
	case jsonOutput:
		opts = append(opts, output.WithMode(output.ModeJSON))
	case testMode || svc.Render.IsPlain():
		opts = append(opts, output.PlainText())
	default:
		opts = append(opts, output.WithMode(output.AutoMode()))
	}
	return output.NewPrinter(opts...)
}

func runShell(cmd *cobra.Command, _ []string) error {
	logger.Debug("Starting psbrowse shell")

	browser, err := newBrowser()
	if err != nil {
		return err
	}
	shell.NewHandler(cmd.Context(), browser).Run()
	return nil
}

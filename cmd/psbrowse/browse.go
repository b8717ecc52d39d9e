package main

import (
	"github.com/spf13/cobra"

	"psbrowse/internal/catalog"
	"psbrowse/internal/export"
	"psbrowse/internal/shell"
)

var (
	filterModule string
	filterSearch string
	filterWhere  string

	helpRaw bool

	exportFormat string
	exportOutput string
)

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&filterModule, "module", "", "Only commands from this module (all or * for every module)")
	cmd.Flags().StringVar(&filterSearch, "search", "", "Case-insensitive substring of the command name")
	cmd.Flags().StringVar(&filterWhere, "where", "", `CEL filter over name, module, commandType, source (e.g. 'commandType == "Cmdlet"')`)
}

// filteredBrowser returns a browser with the filter flags applied.
func filteredBrowser() (*shell.Browser, error) {
	predicate, err := catalog.CompilePredicate(filterWhere)
	if err != nil {
		return nil, err
	}
	browser, err := newBrowser()
	if err != nil {
		return nil, err
	}
	browser.SetFilter(catalog.FilterOptions{Module: filterModule, Search: filterSearch, Where: predicate})
	return browser, nil
}

// helpCommand builds a subcommand that shows one view of a command's help.
func helpCommand(use, short string, view func(b *shell.Browser, cmd *cobra.Command, name string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " NAME",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			browser, err := newBrowser()
			if err != nil {
				return err
			}
			return view(browser, cmd, args[0])
		},
	}
}

func addBrowseCommands(root *cobra.Command) {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List commands, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			browser, err := filteredBrowser()
			if err != nil {
				return err
			}
			return browser.List(cmd.Context())
		},
	}
	addFilterFlags(listCmd)

	modulesCmd := &cobra.Command{
		Use:   "modules",
		Short: "Show the module tree with command counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			browser, err := newBrowser()
			if err != nil {
				return err
			}
			return browser.Modules(cmd.Context())
		},
	}

	helpCmd := helpCommand("help", "Render the full help of a command", func(b *shell.Browser, cmd *cobra.Command, name string) error {
		return b.Help(cmd.Context(), name, helpRaw)
	})
	helpCmd.Flags().BoolVar(&helpRaw, "raw", false, "Print the markdown source instead of rendering it")

	syntaxCmd := helpCommand("syntax", "Print the syntax of each parameter set", func(b *shell.Browser, cmd *cobra.Command, name string) error {
		return b.Syntax(cmd.Context(), name)
	})
	paramsCmd := helpCommand("params", "Print the parameter table", func(b *shell.Browser, cmd *cobra.Command, name string) error {
		return b.Params(cmd.Context(), name)
	})
	examplesCmd := helpCommand("examples", "Print the examples", func(b *shell.Browser, cmd *cobra.Command, name string) error {
		return b.Examples(cmd.Context(), name)
	})

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the (filtered) command list as CSV, JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := export.ParseFormat(exportFormat)
			if err != nil {
				return err
			}
			browser, err := filteredBrowser()
			if err != nil {
				return err
			}
			return browser.Export(cmd.Context(), format, exportOutput)
		},
	}
	addFilterFlags(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", string(export.FormatCSV), "Export format (csv|json|yaml)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file [default: stdout]")

	copyCmd := &cobra.Command{
		Use:       "copy name|syntax NAME",
		Short:     "Copy a command's name or syntax to the clipboard",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{shell.CopyName, shell.CopySyntax},
		RunE: func(cmd *cobra.Command, args []string) error {
			browser, err := newBrowser()
			if err != nil {
				return err
			}
			return browser.Copy(cmd.Context(), args[0], args[1])
		},
	}

	onlineCmd := helpCommand("online", "Print the online documentation URL", func(b *shell.Browser, _ *cobra.Command, name string) error {
		return b.Online(name)
	})

	diffCmd := &cobra.Command{
		Use:   "diff A B",
		Short: "Compare the syntax of two commands",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			browser, err := newBrowser()
			if err != nil {
				return err
			}
			return browser.Diff(cmd.Context(), args[0], args[1])
		},
	}

	// "help NAME" shows PowerShell help; cobra's own help stays on --help.
	root.SetHelpCommand(helpCmd)
	root.AddCommand(listCmd, modulesCmd, syntaxCmd, paramsCmd, examplesCmd,
		exportCmd, copyCmd, onlineCmd, diffCmd)
}

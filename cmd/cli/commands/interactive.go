package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// InteractiveCmd creates the interactive command
func InteractiveCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session to set up and place a pass",
		Long: `Start an interactive session where the pass being set up is kept between commands.
The session will keep running until you type 'exit' or 'quit'.

A typical flow: setup <plan>, stops <shift> <pickup> <dropoff>, open <shift>,
toggle/select/remarks, confirm, then checkout --payment upi --accept-terms.

Type 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer app.CloseFlow()
			return runInteractive(app, cmd.Parent(), os.Stdin)
		},
	}

	return cmd
}

// runInteractive reads commands from in until EOF, 'exit' or 'quit'
func runInteractive(app *AppContext, rootCmd *cobra.Command, in io.Reader) error {
	fmt.Fprintln(app.Out, "\n🚌 Starting interactive session...")
	fmt.Fprintln(app.Out, "Type 'help' for available commands, 'exit' or 'quit' to leave")

	// All sibling commands except interactive itself
	commands := make(map[string]*cobra.Command)
	for _, subCmd := range rootCmd.Commands() {
		if subCmd.Name() != "interactive" && subCmd.Name() != "completion" && subCmd.Name() != "help" {
			commands[subCmd.Name()] = subCmd
		}
	}

	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(app.Out, "> ")

		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts, err := parseCommandLine(line)
		if err != nil {
			printError(app.Out, fmt.Sprintf("Error parsing command: %v", err))
			continue
		}
		if len(parts) == 0 {
			continue
		}
		cmdName := parts[0]
		cmdArgs := parts[1:]

		if cmdName == "exit" || cmdName == "quit" {
			fmt.Fprintln(app.Out, "👋 Goodbye!")
			return nil
		}

		if cmdName == "help" {
			printInteractiveHelp(app.Out, commands)
			continue
		}

		targetCmd, exists := commands[cmdName]
		if !exists {
			printError(app.Out, fmt.Sprintf("Unknown command: %s (type 'help' for available commands)", cmdName))
			continue
		}

		targetCmd.Flags().VisitAll(func(flag *pflag.Flag) {
			flag.Changed = false
			flag.Value.Set(flag.DefValue)
		})

		// RunE is called directly so PersistentPreRunE does not set the app up again
		if err := targetCmd.ParseFlags(cmdArgs); err != nil {
			printError(app.Out, fmt.Sprintf("Error parsing flags: %v", err))
			continue
		}
		cmdArgs = targetCmd.Flags().Args()

		if targetCmd.Args != nil {
			if err := targetCmd.Args(targetCmd, cmdArgs); err != nil {
				printError(app.Out, fmt.Sprintf("Error: %v", err))
				continue
			}
		}

		if targetCmd.RunE != nil {
			if err := targetCmd.RunE(targetCmd, cmdArgs); err != nil {
				printError(app.Out, fmt.Sprintf("Error: %v", err))
			}
		} else if targetCmd.Run != nil {
			targetCmd.Run(targetCmd, cmdArgs)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	return nil
}

func printInteractiveHelp(w io.Writer, commands map[string]*cobra.Command) {
	fmt.Fprintln(w, "\nAvailable commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(w, "  %-45s %s\n", cmd.Use, cmd.Short)
	}

	fmt.Fprintln(w, "\n  help                                          Show this help message")
	fmt.Fprintln(w, "  exit, quit                                    Exit the interactive session")
}

// parseCommandLine splits a command line into arguments, respecting single
// and double quoted strings
func parseCommandLine(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	var inQuote rune

	for _, r := range line {
		switch {
		case inQuote != 0:
			if r == inQuote {
				inQuote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			inQuote = r
		case unicode.IsSpace(r):
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if inQuote != 0 {
		return nil, fmt.Errorf("unclosed quote: %c", inQuote)
	}

	if current.Len() > 0 {
		args = append(args, current.String())
	}

	return args, nil
}

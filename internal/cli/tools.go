package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/mwiater/pagemcp/internal/tools"
	"github.com/mwiater/pagemcp/internal/util"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

// maxDescriptionRunes bounds the description column of the table.
const maxDescriptionRunes = 72

var (
	toolsOutput string
	toolsArgs   string
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	paramStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	descStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	successfulResult = color.New(color.FgGreen).SprintFunc()
	failedResult     = color.New(color.FgRed).SprintFunc()
)

// toolsCmd groups the catalog commands.
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Inspect and call the page tools",
}

// toolsListCmd implements 'tools list'.
var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tool catalog",
	Long:  `List every registered tool with its parameters. Required parameters are marked with '*'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := buildRegistry(getConfig())
		if err != nil {
			return err
		}
		return writeCatalog(cmd.OutOrStdout(), toolsOutput, reg.List())
	},
}

// toolsCallCmd implements 'tools call <name>'.
var toolsCallCmd = &cobra.Command{
	Use:   "call <tool_name>",
	Short: "Call one tool and print its result",
	Example: `  pagemcp tools call get_page_posts
  pagemcp tools call post_to_facebook --args '{"message":"hello"}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}
		arguments, err := parseArguments(toolsArgs)
		if err != nil {
			return err
		}
		reg, err := buildRegistry(cfg)
		if err != nil {
			return err
		}

		res := reg.Dispatch(cmd.Context(), tools.Request{Name: args[0], Arguments: arguments})
		return writeResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], res)
	},
}

func init() {
	toolsListCmd.Flags().StringVarP(&toolsOutput, "output", "o", "table", "output format: table, json or yaml")
	toolsCallCmd.Flags().StringVar(&toolsArgs, "args", "", "tool arguments as a JSON object")
	toolsCmd.AddCommand(toolsListCmd, toolsCallCmd)
	rootCmd.AddCommand(toolsCmd)
}

func parseArguments(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var arguments map[string]any
	if err := json.Unmarshal([]byte(raw), &arguments); err != nil {
		return nil, errors.Wrap(err, "--args must be a JSON object")
	}
	return arguments, nil
}

func writeCatalog(out io.Writer, format string, defs []tools.Definition) error {
	descs := make([]tools.Descriptor, len(defs))
	for i, def := range defs {
		descs[i] = def.Describe()
	}

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"tools": descs, "count": len(descs)})
	case "yaml", "yml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(descs)
	case "table", "":
		writeTable(out, defs)
		return nil
	default:
		return errors.Newf("unsupported output format %q", format)
	}
}

func writeTable(out io.Writer, defs []tools.Definition) {
	nameWidth, paramWidth := len("TOOL"), len("PARAMETERS")
	params := make([]string, len(defs))
	for i, def := range defs {
		params[i] = paramSummary(def)
		nameWidth = max(nameWidth, len(def.Name))
		paramWidth = max(paramWidth, len(params[i]))
	}

	name := nameStyle.Width(nameWidth + 2)
	param := paramStyle.Width(paramWidth + 2)

	fmt.Fprintln(out, lipgloss.JoinHorizontal(lipgloss.Top,
		headerStyle.Width(nameWidth+2).Render("TOOL"),
		headerStyle.Width(paramWidth+2).Render("PARAMETERS"),
		headerStyle.Render("DESCRIPTION"),
	))
	for i, def := range defs {
		fmt.Fprintln(out, lipgloss.JoinHorizontal(lipgloss.Top,
			name.Render(def.Name),
			param.Render(params[i]),
			descStyle.Render(util.TruncateRunes(def.Description, maxDescriptionRunes)),
		))
	}
	fmt.Fprintf(out, "\n%d tools\n", len(defs))
}

// paramSummary lists parameter names, required first, each marked with '*'.
func paramSummary(def tools.Definition) string {
	if len(def.Parameters) == 0 {
		return "-"
	}
	ps := append([]tools.Parameter(nil), def.Parameters...)
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].Required && !ps[j].Required })
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
		if p.Required {
			names[i] += "*"
		}
	}
	return strings.Join(names, ", ")
}

// writeResult prints the outcome line to errOut and the envelope to out.
// A failed call is returned as an error so the process exits non-zero.
func writeResult(out, errOut io.Writer, name string, res tools.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode result")
	}
	if res.Success {
		fmt.Fprintf(errOut, "%s %s\n", successfulResult("ok"), name)
	} else {
		fmt.Fprintf(errOut, "%s %s (%s)\n", failedResult("failed"), name, res.Kind)
	}
	fmt.Fprintln(out, string(data))
	if !res.Success {
		return errors.Newf("tool %s failed", name)
	}
	return nil
}

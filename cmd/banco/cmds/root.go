// Package cmds is the banco command tree. Without a subcommand banco runs the interactive menu.
package cmds

import (
	"banco/internal/banco"
	"banco/internal/console"
	"banco/internal/menu"
	"banco/internal/ports"
	"banco/internal/types"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// App is everything the commands need, wired once in main.
type App struct {
	Prompter *console.Prompter
	Gestores *banco.Gestores
	Clientes *banco.Clientes

	GestorStore  ports.Store[types.Gestor]
	ClienteStore ports.Store[types.Cliente]
}

func NewRootCommand(app *App, build BuildInfo) *cobra.Command {
	out := app.Prompter.Out()
	cmd := &cobra.Command{
		Use:           "banco",
		Short:         "Administración de gestores y clientes",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return menu.New(app.Prompter, app.Gestores, app.Clientes).Run(cmd.Context())
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(out)

	cmd.AddCommand(newVersionCommand(out, build))
	cmd.AddCommand(newGestoresCommand(app))
	cmd.AddCommand(newClientesCommand(app))
	return cmd
}

func newVersionCommand(out io.Writer, build BuildInfo) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				return printJSON(out, build)
			}
			_, err := fmt.Fprintf(out, "version=%s commit=%s build_time=%s\n", build.Version, build.Commit, build.BuildTime)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version as JSON")
	return cmd
}

func printJSON(out io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

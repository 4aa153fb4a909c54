package cmds

import (
	"banco/internal/archive"
	"banco/internal/banco"
	"banco/internal/password"
	"banco/internal/ports"
	"banco/internal/query"
	"banco/internal/types"
	"banco/internal/validation"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// gestorView is a gestor as listed: the hash stays out of command output.
type gestorView struct {
	ID      int64  `json:"id"`
	Usuario string `json:"usuario"`
	Correo  string `json:"correo"`
}

func newGestoresCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gestores",
		Short: "Gestor records",
	}
	g := app.Gestores
	cmd.AddCommand(
		newListCommand(app.GestorStore, func(r types.Gestor) gestorView {
			return gestorView{ID: r.ID, Usuario: r.Usuario, Correo: r.Correo}
		}),
		newImportCommand("gestores", func(ctx context.Context, in banco.GestorInput) (string, error) {
			_, msg, err := g.Create(ctx, in)
			return msg, err
		}),
		newExportCommand("gestores", app.GestorStore),
		newRestoreCommand("gestores", app.GestorStore, checkRestoredGestor),
		newSeedCommand("gestores", func(ctx context.Context, n int) (int, error) {
			saved, err := g.InsertRandom(ctx, n)
			return len(saved), err
		}),
	)
	return cmd
}

func newClientesCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clientes",
		Short: "Cliente records",
	}
	c := app.Clientes
	cmd.AddCommand(
		newListCommand(app.ClienteStore, func(r types.Cliente) types.Cliente { return r }),
		newImportCommand("clientes", func(ctx context.Context, in types.Cliente) (string, error) {
			_, msg, err := c.Create(ctx, in)
			return msg, err
		}),
		newExportCommand("clientes", app.ClienteStore),
		newRestoreCommand("clientes", app.ClienteStore, validation.Cliente),
		newSeedCommand("clientes", func(ctx context.Context, n int) (int, error) {
			saved, err := c.InsertRandom(ctx, n)
			return len(saved), err
		}),
	)
	return cmd
}

func newListCommand[T types.Record[T], V any](store ports.Store[T], view func(T) V) *cobra.Command {
	var (
		page, size int
		expr       string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print records as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				records []T
				err     error
			)
			switch {
			case page == 0 && size == 0:
				records, err = store.List(ctx)
			case page < 1 || size < 1:
				return fmt.Errorf("--page and --size must both be at least 1")
			default:
				records, err = store.ListPage(ctx, page, size)
			}
			if err != nil {
				return err
			}
			views := make([]V, 0, len(records))
			for _, r := range records {
				views = append(views, view(r))
			}
			v, err := query.Apply(expr, views)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "Page number, starting at 1")
	cmd.Flags().IntVar(&size, "size", 0, "Records per page")
	cmd.Flags().StringVar(&expr, "query", "", "JMESPath expression applied to the output")
	return cmd
}

// newImportCommand loads a YAML list of records and runs each one through create. A rejected
// record is reported and the rest are still imported.
func newImportCommand[In any](kind string, create func(context.Context, In) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: fmt.Sprintf("Insert %s from a YAML list", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var items []In
			if err := yaml.Unmarshal(b, &items); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			rejected := 0
			for i, in := range items {
				msg, err := create(cmd.Context(), in)
				if err != nil {
					return fmt.Errorf("record %d: %w", i+1, err)
				}
				if msg != "" {
					rejected++
					_, _ = fmt.Fprintf(out, "Registro %d rechazado: %s\n", i+1, msg)
				}
			}
			_, _ = fmt.Fprintf(out, "%d %s importados, %d rechazados\n", len(items)-rejected, kind, rejected)
			if rejected > 0 {
				return fmt.Errorf("%d of %d records rejected", rejected, len(items))
			}
			return nil
		},
	}
}

func newExportCommand[T types.Record[T]](kind string, store ports.Store[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: fmt.Sprintf("Dump every %s record to FILE (compressed if it ends in %s)", kind, archive.Ext),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if err := archive.Write(args[0], kind, records); err != nil {
				return err
			}
			log.WithFields(log.Fields{"kind": kind, "count": len(records), "file": args[0]}).Info("Exported")
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d %s exportados\n", len(records), kind)
			return err
		},
	}
}

// newRestoreCommand inserts the records of an export. Ids are reassigned by the store, records
// whose key already exists are skipped and records failing check are rejected.
func newRestoreCommand[T types.Record[T]](kind string, store ports.Store[T], check func(T) string) *cobra.Command {
	return &cobra.Command{
		Use:   "restore FILE",
		Short: fmt.Sprintf("Load %s from an export file", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := archive.Read[T](args[0], kind)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			restored, skipped, rejected := 0, 0, 0
			for i, r := range records {
				if msg := check(r); msg != "" {
					rejected++
					_, _ = fmt.Fprintf(out, "Registro %d rechazado: %s\n", i+1, msg)
					continue
				}
				_, err := store.Insert(cmd.Context(), r)
				switch {
				case err == nil:
					restored++
				case errors.Is(err, types.ErrDuplicate):
					skipped++
					log.WithField("key", r.RecordKey()).Warn("Restore skipped existing record")
				default:
					return err
				}
			}
			_, _ = fmt.Fprintf(out, "%d %s restaurados, %d omitidos, %d rechazados\n", restored, kind, skipped, rejected)
			if rejected > 0 {
				return fmt.Errorf("%d of %d records rejected", rejected, len(records))
			}
			return nil
		},
	}
}

// checkRestoredGestor accepts only gestores that could have been written by banco itself: the
// password must already be a bcrypt hash.
func checkRestoredGestor(g types.Gestor) string {
	if msg := validation.Usuario(g.Usuario); msg != "" {
		return msg
	}
	if !password.IsHash(g.Password) {
		return "El password no es un hash bcrypt"
	}
	return validation.Correo(g.Correo)
}

func newSeedCommand(kind string, insert func(context.Context, int) (int, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "seed N",
		Short: fmt.Sprintf("Insert N random %s into the database backend", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return fmt.Errorf("invalid count %q", args[0])
			}
			done, err := insert(cmd.Context(), n)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d %s insertados\n", done, kind)
			return err
		},
	}
}

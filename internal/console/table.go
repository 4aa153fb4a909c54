package console

import (
	"banco/internal/types"
	"fmt"
	"io"
	"text/tabwriter"
)

// Gestores renders gestores as an aligned table. Password hashes are never printed.
func Gestores(w io.Writer, gestores []types.Gestor) {
	if len(gestores) == 0 {
		_, _ = fmt.Fprintln(w, "No hay gestores")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tUSUARIO\tCORREO")
	for _, g := range gestores {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", g.ID, g.Usuario, g.Correo)
	}
	_ = tw.Flush()
}

func Gestor(w io.Writer, g types.Gestor) {
	_, _ = fmt.Fprintf(w, "Id: %d\nUsuario: %s\nCorreo: %s\n", g.ID, g.Usuario, g.Correo)
}

func Clientes(w io.Writer, clientes []types.Cliente) {
	if len(clientes) == 0 {
		_, _ = fmt.Fprintln(w, "No hay clientes")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNOMBRE\tCORREO\tTELÉFONO")
	for _, c := range clientes {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Nombre, c.Correo, c.Telefono)
	}
	_ = tw.Flush()
}

func Cliente(w io.Writer, c types.Cliente) {
	_, _ = fmt.Fprintf(w, "Id: %d\nNombre: %s\nCorreo: %s\nTeléfono: %s\n", c.ID, c.Nombre, c.Correo, c.Telefono)
}

// Package menu drives the numbered console menus. Unknown choices are ignored and the menu is
// shown again; 0 or end of input leaves the current menu.
package menu

import (
	"banco/internal/banco"
	"banco/internal/console"
	"context"
	"errors"
	"io"

	log "github.com/sirupsen/logrus"
)

type action func(context.Context) error

type item struct {
	key   string
	label string
	run   action
}

type Menu struct {
	p        *console.Prompter
	gestores *banco.Gestores
	clientes *banco.Clientes
}

func New(p *console.Prompter, gestores *banco.Gestores, clientes *banco.Clientes) *Menu {
	return &Menu{p: p, gestores: gestores, clientes: clientes}
}

// Run shows the main menu until the operator picks Salir or input ends.
func (m *Menu) Run(ctx context.Context) error {
	err := m.loop(ctx, "MENÚ PRINCIPAL", "Salir", []item{
		{"1", "Gestores", m.runGestores},
		{"2", "Clientes", m.runClientes},
		{"3", "Login", m.gestores.Login},
	})
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (m *Menu) runGestores(ctx context.Context) error {
	g := m.gestores
	return m.loop(ctx, "GESTORES", "Atrás", []item{
		{"1", "Insertar gestor", g.Insert},
		{"2", "Insertar gestores masivamente", g.InsertBulk},
		{"3", "Mostrar gestores", g.Show},
		{"4", "Mostrar gestores paginados", g.ShowPage},
		{"5", "Mostrar gestor por id", g.ShowByID},
		{"6", "Modificar gestor", g.UpdateByUsuario},
		{"7", "Eliminar gestor por id", g.DeleteByID},
		{"8", "Eliminar todos los gestores", g.DeleteAll},
	})
}

func (m *Menu) runClientes(ctx context.Context) error {
	c := m.clientes
	return m.loop(ctx, "CLIENTES", "Atrás", []item{
		{"1", "Insertar cliente", c.Insert},
		{"2", "Insertar clientes masivamente", c.InsertBulk},
		{"3", "Mostrar clientes", c.Show},
		{"4", "Mostrar clientes paginados", c.ShowPage},
		{"5", "Mostrar cliente por id", c.ShowByID},
		{"6", "Modificar cliente", c.UpdateByID},
		{"7", "Eliminar cliente por id", c.DeleteByID},
		{"8", "Eliminar todos los clientes", c.DeleteAll},
	})
}

// loop returns nil on 0 and io.EOF when input runs out, so nested menus unwind all the way.
func (m *Menu) loop(ctx context.Context, title, exit string, items []item) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.render(title, exit, items)
		choice, err := m.p.Ask("Opción: ")
		if err != nil {
			return err
		}
		if choice == "0" {
			return nil
		}
		for _, it := range items {
			if it.key != choice {
				continue
			}
			err := it.run(ctx)
			switch {
			case err == nil:
			case errors.Is(err, io.EOF), errors.Is(err, context.Canceled):
				return err
			default:
				log.WithError(err).WithField("option", it.label).Error("Operation failed")
				m.p.Printf("Error: %v\n", err)
			}
			break
		}
	}
}

func (m *Menu) render(title, exit string, items []item) {
	m.p.Println()
	m.p.Printf("===== %s =====\n", title)
	for _, it := range items {
		m.p.Printf("%s. %s\n", it.key, it.label)
	}
	m.p.Printf("0. %s\n", exit)
}

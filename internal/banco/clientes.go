package banco

import (
	"banco/internal/console"
	"banco/internal/ports"
	"banco/internal/types"
	"banco/internal/validation"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/brianvoe/gofakeit/v6"
	log "github.com/sirupsen/logrus"
)

// Clientes mirrors Gestores for customer records. The unique key is the correo.
type Clientes struct {
	Deps
	store    ports.Store[types.Cliente]
	database ports.Store[types.Cliente]
}

func NewClientes(d Deps, active, database ports.Store[types.Cliente]) *Clientes {
	return &Clientes{Deps: d, store: active, database: database}
}

func (c *Clientes) Insert(ctx context.Context) error {
	p := c.Prompter
	nombre, err := p.Ask("Nombre: ")
	if err != nil {
		return err
	}
	if msg := validation.Nombre(nombre); msg != "" {
		p.Println(msg)
		return nil
	}
	correo, err := p.Ask("Correo: ")
	if err != nil {
		return err
	}
	if msg, err := c.checkCorreo(ctx, correo, 0); err != nil || msg != "" {
		return c.reject(msg, err)
	}
	telefono, err := p.Ask("Teléfono (opcional): ")
	if err != nil {
		return err
	}
	if msg := validation.Telefono(telefono); msg != "" {
		p.Println(msg)
		return nil
	}

	_, msg, err := c.Create(ctx, types.Cliente{Nombre: nombre, Correo: correo, Telefono: telefono})
	if err != nil || msg != "" {
		return c.reject(msg, err)
	}
	p.Println("Cliente insertado correctamente")
	return nil
}

// Create validates the whole cliente and writes it to the active store.
func (c *Clientes) Create(ctx context.Context, in types.Cliente) (types.Cliente, string, error) {
	if msg := validation.Cliente(in); msg != "" {
		return types.Cliente{}, msg, nil
	}
	if msg, err := c.checkCorreo(ctx, in.Correo, 0); err != nil || msg != "" {
		return types.Cliente{}, msg, err
	}
	saved, err := c.store.Insert(ctx, types.Cliente{Nombre: in.Nombre, Correo: in.Correo, Telefono: in.Telefono})
	if err != nil {
		return types.Cliente{}, "", err
	}
	log.WithFields(log.Fields{"id": saved.ID, "correo": saved.Correo}).Debug("Cliente inserted")
	notify(ctx, c.Notifier, types.NewEvent(types.EventClienteInsertado,
		fmt.Sprintf("Cliente insertado: %s - %s", saved.Nombre, saved.Correo),
		map[string]string{"nombre": saved.Nombre, "correo": saved.Correo}))
	return saved, "", nil
}

func (c *Clientes) InsertBulk(ctx context.Context) error {
	p := c.Prompter
	s, err := p.Ask("Número de clientes a insertar: ")
	if err != nil {
		return err
	}
	n, ok := parseCount(s)
	if !ok {
		p.Println("El número de clientes introducidos no es un número")
		return nil
	}
	if c.database == nil {
		p.Println("No hay base de datos configurada")
		return nil
	}
	if _, err := c.InsertRandom(ctx, n); err != nil {
		return err
	}
	p.Println("Clientes introducidos correctamente")
	return nil
}

// InsertRandom writes n random clientes straight to the database store without validation.
func (c *Clientes) InsertRandom(ctx context.Context, n int) ([]types.Cliente, error) {
	if c.database == nil {
		return nil, types.Err(types.ErrInvalidBackend, nil, "no database configured")
	}
	out := make([]types.Cliente, 0, n)
	for i := 0; i < n; i++ {
		saved, err := insertUnique(ctx, c.database, func() (types.Cliente, error) {
			return types.Cliente{
				Nombre:   gofakeit.Name(),
				Correo:   gofakeit.Email(),
				Telefono: gofakeit.Numerify("6########"),
			}, nil
		})
		if err != nil {
			return out, err
		}
		out = append(out, saved)
	}
	log.WithField("count", n).Info("Random clientes inserted")
	return out, nil
}

func (c *Clientes) Show(ctx context.Context) error {
	clientes, err := c.store.List(ctx)
	if err != nil {
		return err
	}
	console.Clientes(c.Prompter.Out(), clientes)
	n, err := c.store.Count(ctx)
	if err != nil {
		return err
	}
	c.Prompter.Printf("Número de clientes totales: %d\n", n)
	return nil
}

func (c *Clientes) ShowPage(ctx context.Context) error {
	page, size, ok, err := askPage(c.Prompter)
	if err != nil || !ok {
		return err
	}
	clientes, err := c.store.ListPage(ctx, page, size)
	if err != nil {
		return err
	}
	console.Clientes(c.Prompter.Out(), clientes)
	return nil
}

func (c *Clientes) ShowByID(ctx context.Context) error {
	cliente, ok, err := c.askExisting(ctx, "Id del cliente: ")
	if err != nil || !ok {
		return err
	}
	console.Cliente(c.Prompter.Out(), cliente)
	return nil
}

// UpdateByID asks for every field again; an empty answer keeps the current value.
func (c *Clientes) UpdateByID(ctx context.Context) error {
	p := c.Prompter
	cliente, ok, err := c.askExisting(ctx, "Id del cliente: ")
	if err != nil || !ok {
		return err
	}

	nombre, err := p.Ask(fmt.Sprintf("Nombre [%s]: ", cliente.Nombre))
	if err != nil {
		return err
	}
	if nombre != "" {
		if msg := validation.Nombre(nombre); msg != "" {
			p.Println(msg)
			return nil
		}
		cliente.Nombre = nombre
	}

	correo, err := p.Ask(fmt.Sprintf("Correo [%s]: ", cliente.Correo))
	if err != nil {
		return err
	}
	if correo != "" {
		if msg, err := c.checkCorreo(ctx, correo, cliente.ID); err != nil || msg != "" {
			return c.reject(msg, err)
		}
		cliente.Correo = correo
	}

	telefono, err := p.Ask(fmt.Sprintf("Teléfono [%s]: ", cliente.Telefono))
	if err != nil {
		return err
	}
	if telefono != "" {
		if msg := validation.Telefono(telefono); msg != "" {
			p.Println(msg)
			return nil
		}
		cliente.Telefono = telefono
	}

	if err := c.store.Update(ctx, cliente); err != nil {
		return err
	}
	notify(ctx, c.Notifier, types.NewEvent(types.EventClienteActualizado,
		fmt.Sprintf("Cliente actualizado: %s - %s", cliente.Nombre, cliente.Correo),
		map[string]string{"id": strconv.FormatInt(cliente.ID, 10), "correo": cliente.Correo}))
	p.Println("Cliente actualizado correctamente")
	return nil
}

// DeleteByID removes the cliente from the active store and from the database store, if any.
func (c *Clientes) DeleteByID(ctx context.Context) error {
	p := c.Prompter
	s, err := p.Ask("Introduzca el id del cliente a eliminar: ")
	if err != nil {
		return err
	}
	id, ok := parseID(s)
	if !ok {
		p.Printf("El id %s no es un número válido\n", s)
		return nil
	}
	found, err := deleteByID(ctx, targets(c.store, c.database), id)
	if err != nil {
		return err
	}
	if !found {
		p.Printf("No existe el cliente con el id %s\n", s)
		return nil
	}
	notify(ctx, c.Notifier, types.NewEvent(types.EventClienteEliminado,
		fmt.Sprintf("Cliente eliminado: %d", id),
		map[string]string{"id": s}))
	p.Println("Cliente eliminado")
	return nil
}

func (c *Clientes) DeleteAll(ctx context.Context) error {
	if err := deleteAll(ctx, targets(c.store, c.database)); err != nil {
		return err
	}
	notify(ctx, c.Notifier, types.NewEvent(types.EventClientesEliminados, "Todos los clientes eliminados", nil))
	c.Prompter.Println("Todos los clientes eliminados")
	return nil
}

// askExisting reads an id and loads the cliente. ok is false when a message was shown instead.
func (c *Clientes) askExisting(ctx context.Context, prompt string) (types.Cliente, bool, error) {
	p := c.Prompter
	s, err := p.Ask(prompt)
	if err != nil {
		return types.Cliente{}, false, err
	}
	id, ok := parseID(s)
	if !ok {
		p.Printf("El id %s no es un número válido\n", s)
		return types.Cliente{}, false, nil
	}
	cliente, err := c.store.GetByID(ctx, id)
	if errors.Is(err, types.ErrNotFound) {
		p.Printf("No existe el cliente con el id %s\n", s)
		return types.Cliente{}, false, nil
	}
	if err != nil {
		return types.Cliente{}, false, err
	}
	return cliente, true, nil
}

// checkCorreo validates the format and that no other cliente (other than self) uses it.
func (c *Clientes) checkCorreo(ctx context.Context, correo string, self int64) (string, error) {
	if msg := validation.Correo(correo); msg != "" {
		return msg, nil
	}
	other, err := c.store.GetByKey(ctx, correo)
	switch {
	case err == nil && other.ID != self:
		return fmt.Sprintf("Ya existe un cliente con el correo %s", correo), nil
	case err == nil, errors.Is(err, types.ErrNotFound):
		return "", nil
	default:
		return "", err
	}
}

func (c *Clientes) reject(msg string, err error) error {
	if err != nil {
		return err
	}
	c.Prompter.Println(msg)
	return nil
}

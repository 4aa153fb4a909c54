package banco

import (
	"banco/internal/console"
	"banco/internal/password"
	"banco/internal/ports"
	"banco/internal/types"
	"banco/internal/validation"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	log "github.com/sirupsen/logrus"
)

// Gestores runs the gestor flows against the active store. The database store, when configured,
// also receives bulk insertions and deletions.
type Gestores struct {
	Deps
	store    ports.Store[types.Gestor]
	database ports.Store[types.Gestor]
}

func NewGestores(d Deps, active, database ports.Store[types.Gestor]) *Gestores {
	if d.HashCost == 0 {
		d.HashCost = password.DefaultCost
	}
	return &Gestores{Deps: d, store: active, database: database}
}

// GestorInput is a gestor as typed by the operator, password in plain text.
type GestorInput struct {
	Usuario  string `yaml:"usuario"`
	Password string `yaml:"password"`
	Correo   string `yaml:"correo"`
}

// Insert asks for usuario, password and correo, validating each answer before asking the next.
// The first rejection is shown and nothing is written.
func (g *Gestores) Insert(ctx context.Context) error {
	p := g.Prompter
	usuario, err := p.Ask("Usuario: ")
	if err != nil {
		return err
	}
	if msg, err := g.checkUsuario(ctx, usuario); err != nil || msg != "" {
		return g.reject(msg, err)
	}

	pass, err := p.Ask("Password: ")
	if err != nil {
		return err
	}
	if msg := validation.Password(pass); msg != "" {
		return g.reject(msg, nil)
	}

	correo, err := p.Ask("Correo: ")
	if err != nil {
		return err
	}
	if msg := validation.Correo(correo); msg != "" {
		return g.reject(msg, nil)
	}

	if _, err := g.save(ctx, GestorInput{Usuario: usuario, Password: pass, Correo: correo}); err != nil {
		return err
	}
	p.Println("Gestor insertado correctamente")
	return nil
}

// Create is the non-interactive form of Insert. It returns the rejection message, if any.
func (g *Gestores) Create(ctx context.Context, in GestorInput) (types.Gestor, string, error) {
	msg, err := g.checkUsuario(ctx, in.Usuario)
	if err != nil || msg != "" {
		return types.Gestor{}, msg, err
	}
	if msg := validation.Password(in.Password); msg != "" {
		return types.Gestor{}, msg, nil
	}
	if msg := validation.Correo(in.Correo); msg != "" {
		return types.Gestor{}, msg, nil
	}
	saved, err := g.save(ctx, in)
	return saved, "", err
}

// InsertBulk asks how many gestores to generate and inserts them with InsertRandom.
func (g *Gestores) InsertBulk(ctx context.Context) error {
	p := g.Prompter
	s, err := p.Ask("Número de gestores a insertar: ")
	if err != nil {
		return err
	}
	n, ok := parseCount(s)
	if !ok {
		p.Println("El número de gestores introducidos no es un número")
		return nil
	}
	if g.database == nil {
		p.Println("No hay base de datos configurada")
		return nil
	}
	if _, err := g.InsertRandom(ctx, n); err != nil {
		return err
	}
	p.Println("Gestores introducidos correctamente")
	return nil
}

// InsertRandom writes n random gestores straight to the database store, skipping validation and
// the file store. Every one gets the hash of BulkPassword.
func (g *Gestores) InsertRandom(ctx context.Context, n int) ([]types.Gestor, error) {
	if g.database == nil {
		return nil, types.Err(types.ErrInvalidBackend, nil, "no database configured")
	}
	out := make([]types.Gestor, 0, n)
	for i := 0; i < n; i++ {
		saved, err := insertUnique(ctx, g.database, func() (types.Gestor, error) {
			hash, err := password.Hash(BulkPassword, g.HashCost)
			if err != nil {
				return types.Gestor{}, err
			}
			return types.Gestor{Usuario: randomUsuario(), Password: hash, Correo: gofakeit.Email()}, nil
		})
		if err != nil {
			return out, err
		}
		out = append(out, saved)
	}
	log.WithField("count", n).Info("Random gestores inserted")
	return out, nil
}

// Show prints every gestor followed by the total.
func (g *Gestores) Show(ctx context.Context) error {
	gestores, err := g.store.List(ctx)
	if err != nil {
		return err
	}
	console.Gestores(g.Prompter.Out(), gestores)
	n, err := g.store.Count(ctx)
	if err != nil {
		return err
	}
	g.Prompter.Printf("Número de gestores totales: %d\n", n)
	return nil
}

func (g *Gestores) ShowPage(ctx context.Context) error {
	page, size, ok, err := askPage(g.Prompter)
	if err != nil || !ok {
		return err
	}
	gestores, err := g.store.ListPage(ctx, page, size)
	if err != nil {
		return err
	}
	console.Gestores(g.Prompter.Out(), gestores)
	return nil
}

func (g *Gestores) ShowByID(ctx context.Context) error {
	p := g.Prompter
	s, err := p.Ask("Id del gestor: ")
	if err != nil {
		return err
	}
	id, ok := parseID(s)
	if !ok {
		p.Printf("El id %s no es un número válido\n", s)
		return nil
	}
	gestor, err := g.store.GetByID(ctx, id)
	if errors.Is(err, types.ErrNotFound) {
		p.Printf("No existe el gestor con el id %s\n", s)
		return nil
	}
	if err != nil {
		return err
	}
	console.Gestor(p.Out(), gestor)
	return nil
}

// UpdateByUsuario looks the gestor up by usuario, then asks for a new password and correo.
func (g *Gestores) UpdateByUsuario(ctx context.Context) error {
	p := g.Prompter
	usuario, err := p.Ask("Usuario gestor: ")
	if err != nil {
		return err
	}
	gestor, err := g.store.GetByKey(ctx, usuario)
	if errors.Is(err, types.ErrNotFound) {
		p.Printf("No existe el gestor con el nombre de usuario %s\n", usuario)
		return nil
	}
	if err != nil {
		return err
	}

	pass, err := p.Ask("Password: ")
	if err != nil {
		return err
	}
	if msg := validation.Password(pass); msg != "" {
		return g.reject(msg, nil)
	}
	correo, err := p.Ask("Correo: ")
	if err != nil {
		return err
	}
	if msg := validation.Correo(correo); msg != "" {
		return g.reject(msg, nil)
	}

	hash, err := password.Hash(pass, g.HashCost)
	if err != nil {
		return err
	}
	gestor.Password = hash
	gestor.Correo = correo
	if err := g.store.Update(ctx, gestor); err != nil {
		return err
	}
	log.WithFields(log.Fields{"id": gestor.ID, "usuario": gestor.Usuario}).Debug("Gestor updated")
	notify(ctx, g.Notifier, types.NewEvent(types.EventGestorActualizado,
		fmt.Sprintf("Gestor actualizado: %s - %s", gestor.Usuario, gestor.Correo),
		map[string]string{"usuario": gestor.Usuario, "correo": gestor.Correo}))
	p.Println("Gestor actualizado correctamente")
	return nil
}

// DeleteByID removes the gestor from the active store and from the database store, if any.
func (g *Gestores) DeleteByID(ctx context.Context) error {
	p := g.Prompter
	s, err := p.Ask("Introduzca el id del gestor a eliminar: ")
	if err != nil {
		return err
	}
	id, ok := parseID(s)
	if !ok {
		p.Printf("El id %s no es un número válido\n", s)
		return nil
	}
	found, err := deleteByID(ctx, targets(g.store, g.database), id)
	if err != nil {
		return err
	}
	if !found {
		p.Printf("No existe el gestor con el id %s\n", s)
		return nil
	}
	notify(ctx, g.Notifier, types.NewEvent(types.EventGestorEliminado,
		fmt.Sprintf("Gestor eliminado: %d", id),
		map[string]string{"id": s}))
	p.Println("Gestor eliminado")
	return nil
}

func (g *Gestores) DeleteAll(ctx context.Context) error {
	if err := deleteAll(ctx, targets(g.store, g.database)); err != nil {
		return err
	}
	notify(ctx, g.Notifier, types.NewEvent(types.EventGestoresEliminados, "Todos los gestores eliminados", nil))
	g.Prompter.Println("Todos los gestores eliminados")
	return nil
}

// Login checks a usuario and password pair against the stored hash.
func (g *Gestores) Login(ctx context.Context) error {
	p := g.Prompter
	usuario, err := p.Ask("Usuario: ")
	if err != nil {
		return err
	}
	pass, err := p.Ask("Password: ")
	if err != nil {
		return err
	}
	// a usuario that could never have been stored is not looked up at all
	if validation.Usuario(usuario) != "" {
		p.Println("Usuario o password incorrectos")
		return nil
	}
	gestor, err := g.store.GetByKey(ctx, usuario)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return err
	}
	if err != nil || !password.Verify(gestor.Password, pass) {
		log.WithField("usuario", usuario).Info("Login rejected")
		p.Println("Usuario o password incorrectos")
		return nil
	}
	p.Printf("Login correcto. Bienvenido, %s\n", gestor.Usuario)
	return nil
}

func (g *Gestores) checkUsuario(ctx context.Context, usuario string) (string, error) {
	if msg := validation.Usuario(usuario); msg != "" {
		return msg, nil
	}
	_, err := g.store.GetByKey(ctx, usuario)
	switch {
	case err == nil:
		return fmt.Sprintf("El usuario %s ya existe", usuario), nil
	case errors.Is(err, types.ErrNotFound):
		return "", nil
	default:
		return "", err
	}
}

// save hashes the password and writes the gestor to the active store only.
func (g *Gestores) save(ctx context.Context, in GestorInput) (types.Gestor, error) {
	hash, err := password.Hash(in.Password, g.HashCost)
	if err != nil {
		return types.Gestor{}, err
	}
	saved, err := g.store.Insert(ctx, types.Gestor{Usuario: in.Usuario, Password: hash, Correo: in.Correo})
	if err != nil {
		return types.Gestor{}, err
	}
	log.WithFields(log.Fields{"id": saved.ID, "usuario": saved.Usuario}).Debug("Gestor inserted")
	notify(ctx, g.Notifier, types.NewEvent(types.EventGestorInsertado,
		fmt.Sprintf("Gestor insertado: %s - %s", saved.Usuario, saved.Correo),
		map[string]string{"usuario": saved.Usuario, "correo": saved.Correo}))
	return saved, nil
}

func (g *Gestores) reject(msg string, err error) error {
	if err != nil {
		return err
	}
	g.Prompter.Println(msg)
	return nil
}

func randomUsuario() string {
	name := strings.ToLower(gofakeit.FirstName())
	return fmt.Sprintf("%s%d", onlyAlnum(name), gofakeit.Number(10, 9999))
}

func onlyAlnum(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, s)
}

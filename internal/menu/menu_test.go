package menu

import (
	"banco/internal/backends/file"
	"banco/internal/banco"
	"banco/internal/console"
	"banco/internal/types"
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type failingStore struct {
	*file.Store[types.Gestor]
}

func (failingStore) List(context.Context) ([]types.Gestor, error) {
	return nil, errors.New("disk on fire")
}

type MenuTestSuite struct {
	suite.Suite
	dir      string
	out      bytes.Buffer
	gestores *file.Store[types.Gestor]
	clientes *file.Store[types.Cliente]
}

func TestMenuTestSuite(t *testing.T) {
	suite.Run(t, new(MenuTestSuite))
}

func (s *MenuTestSuite) SetupTest() {
	var err error
	s.dir = s.T().TempDir()
	s.out.Reset()
	s.gestores, err = file.NewStore[types.Gestor](filepath.Join(s.dir, "gestores.json"))
	s.Require().NoError(err)
	s.clientes, err = file.NewStore[types.Cliente](filepath.Join(s.dir, "clientes.json"))
	s.Require().NoError(err)
}

func (s *MenuTestSuite) run(input string) error {
	p := console.NewPrompter(strings.NewReader(input), &s.out)
	d := banco.Deps{Prompter: p, HashCost: bcrypt.MinCost}
	m := New(p, banco.NewGestores(d, s.gestores, nil), banco.NewClientes(d, s.clientes, nil))
	return m.Run(context.Background())
}

func (s *MenuTestSuite) TestExitOnZero() {
	s.NoError(s.run("0\n"))
	s.Contains(s.out.String(), "===== MENÚ PRINCIPAL =====")
	s.Contains(s.out.String(), "0. Salir")
}

func (s *MenuTestSuite) TestEndOfInputExits() {
	s.NoError(s.run("1\n"))
	s.Contains(s.out.String(), "===== GESTORES =====")
}

func (s *MenuTestSuite) TestUnknownChoiceRedraws() {
	s.NoError(s.run("9\nhola\n0\n"))
	s.Equal(3, strings.Count(s.out.String(), "===== MENÚ PRINCIPAL ====="))
}

func (s *MenuTestSuite) TestInsertAndListGestor() {
	s.NoError(s.run("1\n1\nana\nsecreto1\nana@example.com\n3\n0\n0\n"))
	out := s.out.String()
	s.Contains(out, "Gestor insertado correctamente")
	s.Contains(out, "ana@example.com")
	s.Contains(out, "Número de gestores totales: 1")
}

func (s *MenuTestSuite) TestClientesThenLogin() {
	s.NoError(s.run("2\n1\nAna\nana@example.com\n\n0\n1\n1\nana\nsecreto1\nana@example.com\n0\n3\nana\nsecreto1\n0\n"))
	out := s.out.String()
	s.Contains(out, "Cliente insertado correctamente")
	s.Contains(out, "Login correcto. Bienvenido, ana")
}

func (s *MenuTestSuite) TestErrorsKeepTheMenuRunning() {
	p := console.NewPrompter(strings.NewReader("1\n3\n0\n0\n"), &s.out)
	d := banco.Deps{Prompter: p, HashCost: bcrypt.MinCost}
	m := New(p, banco.NewGestores(d, failingStore{s.gestores}, nil), banco.NewClientes(d, s.clientes, nil))

	s.NoError(m.Run(context.Background()))
	s.Contains(s.out.String(), "Error: disk on fire")
	s.Equal(2, strings.Count(s.out.String(), "===== GESTORES ====="))
}

func (s *MenuTestSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := console.NewPrompter(strings.NewReader("0\n"), &s.out)
	d := banco.Deps{Prompter: p}
	m := New(p, banco.NewGestores(d, s.gestores, nil), banco.NewClientes(d, s.clientes, nil))
	s.ErrorIs(m.Run(ctx), context.Canceled)
}

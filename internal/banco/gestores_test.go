package banco

import (
	"banco/internal/password"
	"banco/internal/ports"
	"banco/internal/types"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

type GestoresTestSuite struct {
	bancoSuite
}

func TestGestoresTestSuite(t *testing.T) {
	suite.Run(t, new(GestoresTestSuite))
}

func (s *GestoresTestSuite) service(input string) *Gestores {
	return NewGestores(s.deps(input), s.gestores, s.gestoresDB)
}

func (s *GestoresTestSuite) fileOnly(input string) *Gestores {
	return NewGestores(s.deps(input), s.gestores, nil)
}

func (s *GestoresTestSuite) seed(usuario, correo string) types.Gestor {
	g, msg, err := s.fileOnly("").Create(s.ctx, GestorInput{Usuario: usuario, Password: "secreto1", Correo: correo})
	s.Require().NoError(err)
	s.Require().Empty(msg)
	return g
}

func (s *GestoresTestSuite) TestInsertAna() {
	s.Require().NoError(s.service("ana\nsecreto1\nana@example.com\n").Insert(s.ctx))
	s.Contains(s.out.String(), "Gestor insertado correctamente")

	byKey, err := s.gestores.GetByKey(s.ctx, "ana")
	s.Require().NoError(err)
	s.Equal("ana@example.com", byKey.Correo)
	s.NotEqual("secreto1", byKey.Password)
	s.True(password.Verify(byKey.Password, "secreto1"))

	byID, err := s.gestores.GetByID(s.ctx, byKey.ID)
	s.Require().NoError(err)
	s.Equal(byKey, byID)

	n, err := s.gestoresDB.Count(s.ctx)
	s.NoError(err)
	s.Zero(n, "insertion must only reach the active store")
	s.Equal([]string{types.EventGestorInsertado}, s.notifier.kinds())
}

func (s *GestoresTestSuite) TestInsertRejectsMalformedCorreo() {
	s.Require().NoError(s.service("ana\nsecreto1\nnot-an-email\n").Insert(s.ctx))
	s.Contains(s.out.String(), "No es un correo válido")
	s.NotContains(s.out.String(), "Gestor insertado")

	n, err := s.gestores.Count(s.ctx)
	s.NoError(err)
	s.Zero(n)
	s.Empty(s.notifier.events)
}

func (s *GestoresTestSuite) TestInsertStopsAtFirstRejection() {
	// "x" fails the usuario check, so the password and correo prompts never show.
	s.Require().NoError(s.service("x\n").Insert(s.ctx))
	s.NotContains(s.out.String(), "Password: ")
	s.NotContains(s.out.String(), "Correo: ")
}

func (s *GestoresTestSuite) TestInsertRejectsExistingUsuario() {
	s.seed("ana", "ana@example.com")
	s.Require().NoError(s.service("ana\n").Insert(s.ctx))
	s.Contains(s.out.String(), "El usuario ana ya existe")

	n, err := s.gestores.Count(s.ctx)
	s.NoError(err)
	s.Equal(1, n)
}

func (s *GestoresTestSuite) TestInsertEndOfInput() {
	err := s.service("ana\n").Insert(s.ctx)
	s.Error(err)
}

func (s *GestoresTestSuite) TestNotifierFailureKeepsOutcome() {
	s.notifier.err = errors.New("smtp down")
	s.Require().NoError(s.service("ana\nsecreto1\nana@example.com\n").Insert(s.ctx))
	s.Contains(s.out.String(), "Gestor insertado correctamente")
	_, err := s.gestores.GetByKey(s.ctx, "ana")
	s.NoError(err)
}

func (s *GestoresTestSuite) TestInsertBulkGoesToDatabase() {
	s.Require().NoError(s.service("3\n").InsertBulk(s.ctx))
	s.Contains(s.out.String(), "Gestores introducidos correctamente")

	n, err := s.gestores.Count(s.ctx)
	s.NoError(err)
	s.Zero(n)

	all, err := s.gestoresDB.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	for _, g := range all {
		s.NotEmpty(g.Usuario)
		s.True(password.Verify(g.Password, BulkPassword))
	}
}

func (s *GestoresTestSuite) TestInsertBulkRejectsBadCount() {
	for _, in := range []string{"abc\n", "-2\n"} {
		s.out.Reset()
		s.Require().NoError(s.service(in).InsertBulk(s.ctx))
		s.Contains(s.out.String(), "El número de gestores introducidos no es un número")
	}
	n, err := s.gestoresDB.Count(s.ctx)
	s.NoError(err)
	s.Zero(n)
}

func (s *GestoresTestSuite) TestInsertBulkWithoutDatabase() {
	s.Require().NoError(s.fileOnly("2\n").InsertBulk(s.ctx))
	s.Contains(s.out.String(), "No hay base de datos configurada")

	_, err := s.fileOnly("").InsertRandom(s.ctx, 1)
	s.ErrorIs(err, types.ErrInvalidBackend)
}

func (s *GestoresTestSuite) TestShow() {
	s.seed("ana", "ana@example.com")
	s.seed("luis", "luis@example.com")
	s.Require().NoError(s.service("").Show(s.ctx))
	out := s.out.String()
	s.Contains(out, "ana@example.com")
	s.Contains(out, "luis@example.com")
	s.Contains(out, "Número de gestores totales: 2")
	s.NotContains(out, "$2a$")
}

func (s *GestoresTestSuite) TestShowPage() {
	s.seed("ana", "ana@example.com")
	s.seed("luis", "luis@example.com")
	s.seed("marta", "marta@example.com")

	s.Require().NoError(s.service("2\n2\n").ShowPage(s.ctx))
	s.Contains(s.out.String(), "marta")
	s.NotContains(s.out.String(), "luis@")

	s.out.Reset()
	s.Require().NoError(s.service("9\n2\n").ShowPage(s.ctx))
	s.Contains(s.out.String(), "No hay gestores")
}

func (s *GestoresTestSuite) TestShowByID() {
	g := s.seed("ana", "ana@example.com")
	s.Require().NoError(s.service("1\n").ShowByID(s.ctx))
	s.Contains(s.out.String(), g.Correo)

	s.out.Reset()
	s.Require().NoError(s.service("42\n").ShowByID(s.ctx))
	s.Contains(s.out.String(), "No existe el gestor con el id 42")

	s.out.Reset()
	s.Require().NoError(s.service("abc\n").ShowByID(s.ctx))
	s.Contains(s.out.String(), "El id abc no es un número válido")
}

func (s *GestoresTestSuite) TestUpdateByUsuario() {
	before := s.seed("ana", "ana@example.com")
	s.Require().NoError(s.service("ana\nnuevapass\nana@banco.es\n").UpdateByUsuario(s.ctx))
	s.Contains(s.out.String(), "Gestor actualizado correctamente")

	after, err := s.gestores.GetByID(s.ctx, before.ID)
	s.Require().NoError(err)
	s.Equal("ana@banco.es", after.Correo)
	s.True(password.Verify(after.Password, "nuevapass"))
	s.False(password.Verify(after.Password, "secreto1"))
	s.Contains(s.notifier.kinds(), types.EventGestorActualizado)
}

func (s *GestoresTestSuite) TestUpdateMissingUsuario() {
	s.seed("ana", "ana@example.com")
	s.Require().NoError(s.service("nadie\n").UpdateByUsuario(s.ctx))
	s.Contains(s.out.String(), "No existe el gestor con el nombre de usuario nadie")

	g, err := s.gestores.GetByKey(s.ctx, "ana")
	s.NoError(err)
	s.Equal("ana@example.com", g.Correo)
}

func (s *GestoresTestSuite) TestUpdateRejectsBadCorreo() {
	s.seed("ana", "ana@example.com")
	s.Require().NoError(s.service("ana\nnuevapass\nnope\n").UpdateByUsuario(s.ctx))
	s.Contains(s.out.String(), "No es un correo válido")

	g, err := s.gestores.GetByKey(s.ctx, "ana")
	s.NoError(err)
	s.True(password.Verify(g.Password, "secreto1"))
}

func (s *GestoresTestSuite) TestDeleteByIDReachesBothStores() {
	g := s.seed("ana", "ana@example.com")
	_, err := s.gestoresDB.Insert(s.ctx, types.Gestor{Usuario: "ana", Correo: "ana@example.com"})
	s.Require().NoError(err)

	s.Require().NoError(s.service("1\n").DeleteByID(s.ctx))
	s.Contains(s.out.String(), "Gestor eliminado")

	_, err = s.gestores.GetByID(s.ctx, g.ID)
	s.ErrorIs(err, types.ErrNotFound)
	_, err = s.gestoresDB.GetByID(s.ctx, g.ID)
	s.ErrorIs(err, types.ErrNotFound)
	s.Equal([]string{types.EventGestorInsertado, types.EventGestorEliminado}, s.notifier.kinds())
}

func (s *GestoresTestSuite) TestDeleteMissingID() {
	s.seed("ana", "ana@example.com")
	s.Require().NoError(s.service("7\n").DeleteByID(s.ctx))
	s.Contains(s.out.String(), "No existe el gestor con el id 7")

	n, err := s.gestores.Count(s.ctx)
	s.NoError(err)
	s.Equal(1, n)
}

func (s *GestoresTestSuite) TestDeleteAll() {
	s.seed("ana", "ana@example.com")
	_, err := s.service("").InsertRandom(s.ctx, 2)
	s.Require().NoError(err)

	s.Require().NoError(s.service("").DeleteAll(s.ctx))
	s.Contains(s.out.String(), "Todos los gestores eliminados")
	n, err := s.gestores.Count(s.ctx)
	s.NoError(err)
	s.Zero(n)
	n, err = s.gestoresDB.Count(s.ctx)
	s.NoError(err)
	s.Zero(n)
	s.Contains(s.notifier.kinds(), types.EventGestoresEliminados)
}

func (s *GestoresTestSuite) TestLogin() {
	s.seed("ana", "ana@example.com")

	s.Require().NoError(s.service("ana\nsecreto1\n").Login(s.ctx))
	s.Contains(s.out.String(), "Login correcto. Bienvenido, ana")

	for _, in := range []string{"ana\nmala\n", "nadie\nsecreto1\n"} {
		s.out.Reset()
		s.Require().NoError(s.service(in).Login(s.ctx))
		s.Contains(s.out.String(), "Usuario o password incorrectos")
	}
}

func (s *GestoresTestSuite) TestCreateReportsRejection() {
	_, msg, err := s.service("").Create(s.ctx, GestorInput{Usuario: "ana", Password: "123", Correo: "ana@example.com"})
	s.NoError(err)
	s.NotEmpty(msg)
	n, err := s.gestores.Count(s.ctx)
	s.NoError(err)
	s.Zero(n)
}

// keyCheckingStore fails lookups by an empty key the way DynamoDB rejects an empty sort key.
type keyCheckingStore struct {
	ports.Store[types.Gestor]
}

func (k keyCheckingStore) GetByKey(ctx context.Context, key string) (types.Gestor, error) {
	if key == "" {
		return types.Gestor{}, errors.New("ValidationException: empty sort key")
	}
	return k.Store.GetByKey(ctx, key)
}

func (s *GestoresTestSuite) TestLoginEmptyUsuario() {
	g := NewGestores(s.deps("\nsecreto1\n"), keyCheckingStore{s.gestores}, nil)
	s.Require().NoError(g.Login(s.ctx))
	s.Contains(s.out.String(), "Usuario o password incorrectos")
}

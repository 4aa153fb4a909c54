// Package storetest holds the behaviour every ports.Store backend must share.
// Backend packages embed StoreSuite in their own suite and provide a fresh store per test.
package storetest

import (
	"banco/internal/ports"
	"banco/internal/types"
	"context"
	"fmt"

	"github.com/stretchr/testify/suite"
)

type StoreSuite struct {
	suite.Suite

	// NewGestores and NewClientes return an empty store. They are called once per test.
	NewGestores func() ports.Store[types.Gestor]
	NewClientes func() ports.Store[types.Cliente]

	gestores ports.Store[types.Gestor]
	clientes ports.Store[types.Cliente]
}

func (s *StoreSuite) SetupTest() {
	s.gestores = s.NewGestores()
	s.clientes = s.NewClientes()
}

func (s *StoreSuite) Gestores() ports.Store[types.Gestor] { return s.gestores }

func gestor(usuario string) types.Gestor {
	return types.Gestor{Usuario: usuario, Password: "$2a$04$hash", Correo: usuario + "@example.com"}
}

func (s *StoreSuite) TestInsertAssignsIDs() {
	ctx := context.Background()
	a, err := s.gestores.Insert(ctx, gestor("ana"))
	s.Require().NoError(err)
	b, err := s.gestores.Insert(ctx, gestor("bea"))
	s.Require().NoError(err)
	s.Greater(a.ID, int64(0))
	s.Greater(b.ID, a.ID)

	got, err := s.gestores.GetByID(ctx, a.ID)
	s.NoError(err)
	s.Equal(a, got)

	got, err = s.gestores.GetByKey(ctx, "bea")
	s.NoError(err)
	s.Equal(b, got)
}

func (s *StoreSuite) TestInsertDuplicateKey() {
	ctx := context.Background()
	_, err := s.gestores.Insert(ctx, gestor("ana"))
	s.Require().NoError(err)
	_, err = s.gestores.Insert(ctx, gestor("ana"))
	s.ErrorIs(err, types.ErrDuplicate)

	n, err := s.gestores.Count(ctx)
	s.NoError(err)
	s.Equal(1, n)
}

func (s *StoreSuite) TestNotFound() {
	ctx := context.Background()
	_, err := s.gestores.GetByID(ctx, 999)
	s.ErrorIs(err, types.ErrNotFound)
	_, err = s.gestores.GetByKey(ctx, "nadie")
	s.ErrorIs(err, types.ErrNotFound)
	s.ErrorIs(s.gestores.DeleteByID(ctx, 999), types.ErrNotFound)
	s.ErrorIs(s.gestores.Update(ctx, gestor("nadie").WithID(999)), types.ErrNotFound)
}

func (s *StoreSuite) TestListAndPages() {
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := s.gestores.Insert(ctx, gestor(fmt.Sprintf("gestor%d", i)))
		s.Require().NoError(err)
	}
	all, err := s.gestores.List(ctx)
	s.NoError(err)
	s.Len(all, 5)
	for i := 1; i < len(all); i++ {
		s.Less(all[i-1].ID, all[i].ID)
	}

	p1, err := s.gestores.ListPage(ctx, 1, 2)
	s.NoError(err)
	s.Equal(all[0:2], p1)

	p3, err := s.gestores.ListPage(ctx, 3, 2)
	s.NoError(err)
	s.Equal(all[4:5], p3)

	p4, err := s.gestores.ListPage(ctx, 4, 2)
	s.NoError(err)
	s.Empty(p4)

	n, err := s.gestores.Count(ctx)
	s.NoError(err)
	s.Equal(5, n)
}

func (s *StoreSuite) TestUpdate() {
	ctx := context.Background()
	g, err := s.gestores.Insert(ctx, gestor("ana"))
	s.Require().NoError(err)
	g.Correo = "ana.nueva@example.com"
	g.Password = "$2a$04$other"
	s.NoError(s.gestores.Update(ctx, g))

	got, err := s.gestores.GetByKey(ctx, "ana")
	s.NoError(err)
	s.Equal(g, got)
}

func (s *StoreSuite) TestUpdateChangesKey() {
	ctx := context.Background()
	a, err := s.clientes.Insert(ctx, types.Cliente{Nombre: "Ana", Correo: "ana@example.com"})
	s.Require().NoError(err)
	_, err = s.clientes.Insert(ctx, types.Cliente{Nombre: "Bea", Correo: "bea@example.com"})
	s.Require().NoError(err)

	a.Correo = "bea@example.com"
	s.ErrorIs(s.clientes.Update(ctx, a), types.ErrDuplicate)

	a.Correo = "ana@banco.es"
	s.NoError(s.clientes.Update(ctx, a))
	_, err = s.clientes.GetByKey(ctx, "ana@example.com")
	s.ErrorIs(err, types.ErrNotFound)
	got, err := s.clientes.GetByKey(ctx, "ana@banco.es")
	s.NoError(err)
	s.Equal(a, got)
}

func (s *StoreSuite) TestDeleteByID() {
	ctx := context.Background()
	a, err := s.gestores.Insert(ctx, gestor("ana"))
	s.Require().NoError(err)
	b, err := s.gestores.Insert(ctx, gestor("bea"))
	s.Require().NoError(err)

	s.NoError(s.gestores.DeleteByID(ctx, a.ID))
	_, err = s.gestores.GetByID(ctx, a.ID)
	s.ErrorIs(err, types.ErrNotFound)
	_, err = s.gestores.GetByKey(ctx, "ana")
	s.ErrorIs(err, types.ErrNotFound)

	// the key is free again
	c, err := s.gestores.Insert(ctx, gestor("ana"))
	s.NoError(err)
	s.Greater(c.ID, b.ID)
}

func (s *StoreSuite) TestDeleteAllKeepsSequence() {
	ctx := context.Background()
	a, err := s.gestores.Insert(ctx, gestor("ana"))
	s.Require().NoError(err)
	_, err = s.gestores.Insert(ctx, gestor("bea"))
	s.Require().NoError(err)
	_, err = s.clientes.Insert(ctx, types.Cliente{Nombre: "Ana", Correo: "ana@example.com"})
	s.Require().NoError(err)

	s.NoError(s.gestores.DeleteAll(ctx))
	n, err := s.gestores.Count(ctx)
	s.NoError(err)
	s.Equal(0, n)
	all, err := s.gestores.List(ctx)
	s.NoError(err)
	s.Empty(all)

	// other collections are untouched
	n, err = s.clientes.Count(ctx)
	s.NoError(err)
	s.Equal(1, n)

	c, err := s.gestores.Insert(ctx, gestor("ana"))
	s.NoError(err)
	s.Greater(c.ID, a.ID)
}

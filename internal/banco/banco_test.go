package banco

import (
	"banco/internal/backends/file"
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

type recorder struct {
	events []types.Event
	err    error
}

func (r *recorder) Notify(_ context.Context, ev types.Event) error {
	r.events = append(r.events, ev)
	return r.err
}

func (r *recorder) kinds() []string {
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

// bancoSuite holds a file store acting as the active backend and a second file store
// standing in for the database.
type bancoSuite struct {
	suite.Suite
	ctx      context.Context
	notifier *recorder
	out      bytes.Buffer

	gestores   *file.Store[types.Gestor]
	gestoresDB *file.Store[types.Gestor]
	clientes   *file.Store[types.Cliente]
	clientesDB *file.Store[types.Cliente]
}

func (s *bancoSuite) SetupTest() {
	var err error
	dir := s.T().TempDir()
	s.ctx = context.Background()
	s.notifier = &recorder{}
	s.out.Reset()
	s.gestores, err = file.NewStore[types.Gestor](filepath.Join(dir, "gestores.json"))
	s.Require().NoError(err)
	s.gestoresDB, err = file.NewStore[types.Gestor](filepath.Join(dir, "db", "gestores.json"))
	s.Require().NoError(err)
	s.clientes, err = file.NewStore[types.Cliente](filepath.Join(dir, "clientes.json"))
	s.Require().NoError(err)
	s.clientesDB, err = file.NewStore[types.Cliente](filepath.Join(dir, "db", "clientes.json"))
	s.Require().NoError(err)
}

func (s *bancoSuite) deps(input string) Deps {
	return Deps{
		Prompter: console.NewPrompter(strings.NewReader(input), &s.out),
		Notifier: s.notifier,
		HashCost: bcrypt.MinCost,
	}
}

type BancoHelpersTestSuite struct {
	bancoSuite
}

func TestBancoHelpersTestSuite(t *testing.T) {
	suite.Run(t, new(BancoHelpersTestSuite))
}

func (s *BancoHelpersTestSuite) TestParseCount() {
	for in, want := range map[string]int{"0": 0, "7": 7} {
		n, ok := parseCount(in)
		s.True(ok, in)
		s.Equal(want, n)
	}
	for _, in := range []string{"", "abc", "-1", "1.5"} {
		_, ok := parseCount(in)
		s.False(ok, in)
	}
}

func (s *BancoHelpersTestSuite) TestTargets() {
	s.Len(targets[types.Gestor](s.gestores, nil), 1)
	s.Len(targets[types.Gestor](s.gestores, s.gestores), 1)
	s.Len(targets[types.Gestor](s.gestores, s.gestoresDB), 2)
}

func (s *BancoHelpersTestSuite) TestAskPage() {
	cases := []struct {
		input string
		ok    bool
		msg   string
	}{
		{"2\n5\n", true, ""},
		{"x\n5\n", false, "Número de página incorrecto"},
		{"0\n5\n", false, "Número de página incorrecto"},
		{"1\n-3\n", false, "Número de elementos incorrecto"},
	}
	for _, c := range cases {
		s.out.Reset()
		page, size, ok, err := askPage(s.deps(c.input).Prompter)
		s.NoError(err)
		s.Equal(c.ok, ok, c.input)
		if c.ok {
			s.Equal(2, page)
			s.Equal(5, size)
		} else {
			s.Contains(s.out.String(), c.msg)
		}
	}
}

func (s *BancoHelpersTestSuite) TestInsertUniqueGivesUp() {
	_, err := s.gestores.Insert(s.ctx, types.Gestor{Usuario: "ana"})
	s.Require().NoError(err)

	calls := 0
	_, err = insertUnique[types.Gestor](s.ctx, s.gestores, func() (types.Gestor, error) {
		calls++
		return types.Gestor{Usuario: "ana"}, nil
	})
	s.ErrorIs(err, types.ErrDuplicate)
	s.Equal(maxBulkAttempts, calls)
}

func (s *BancoHelpersTestSuite) TestNotifyFailureIsSwallowed() {
	s.notifier.err = errors.New("topic gone")
	notify(s.ctx, s.notifier, types.NewEvent(types.EventGestorInsertado, "x", nil))
	notify(s.ctx, nil, types.NewEvent(types.EventGestorInsertado, "x", nil))
	s.Len(s.notifier.events, 1)
}

package console

import (
	"banco/internal/types"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ConsoleTestSuite struct {
	suite.Suite
}

func TestConsoleTestSuite(t *testing.T) {
	suite.Run(t, new(ConsoleTestSuite))
}

func (s *ConsoleTestSuite) TestAsk() {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("  ana \r\n\nlast"), &out)

	v, err := p.Ask("Usuario: ")
	s.NoError(err)
	s.Equal("ana", v)

	v, err = p.Ask("Vacío: ")
	s.NoError(err)
	s.Equal("", v)

	v, err = p.Ask("Último: ")
	s.NoError(err)
	s.Equal("last", v)

	_, err = p.Ask("Fin: ")
	s.ErrorIs(err, io.EOF)
	s.Equal("Usuario: Vacío: Último: Fin: ", out.String())
}

func (s *ConsoleTestSuite) TestGestoresTableHidesPassword() {
	var out bytes.Buffer
	Gestores(&out, []types.Gestor{
		{ID: 1, Usuario: "ana", Password: "$2a$10$secret", Correo: "ana@example.com"},
		{ID: 12, Usuario: "bartolome", Password: "$2a$10$secret", Correo: "b@example.com"},
	})
	s.NotContains(out.String(), "$2a$")
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	s.Require().Len(lines, 3)
	s.Equal("ID  USUARIO    CORREO", lines[0])
	s.Equal("1   ana        ana@example.com", lines[1])
	s.Equal("12  bartolome  b@example.com", lines[2])
}

func (s *ConsoleTestSuite) TestEmptyTables() {
	var out bytes.Buffer
	Gestores(&out, nil)
	Clientes(&out, nil)
	s.Equal("No hay gestores\nNo hay clientes\n", out.String())
}

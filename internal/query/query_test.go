package query

import (
	"banco/internal/types"
	"testing"

	"github.com/stretchr/testify/suite"
)

type QueryTestSuite struct {
	suite.Suite
}

func TestQueryTestSuite(t *testing.T) {
	suite.Run(t, new(QueryTestSuite))
}

func (s *QueryTestSuite) TestEvalAny() {
	obj := map[string]any{
		"key1": "value1",
		"key2": map[string]any{
			"subkey1": "subvalue1",
			"subkey2": 42,
		},
		"key3": []any{"elem1", "elem2", "elem3"},
		"key4": nil,
	}

	v, err := EvalAny("key1", obj)
	s.NoError(err)
	s.Equal("value1", v.(string))

	v, err = EvalAny("key2.subkey2", obj)
	s.NoError(err)
	s.Equal(42, v.(int))

	v, err = EvalAny("key3[1]", obj)
	s.NoError(err)
	s.Equal("elem2", v.(string))

	v, err = EvalAny("key4", obj)
	s.NoError(err)
	s.Nil(v)

	v, err = EvalAny("nonexistent", obj)
	s.NoError(err)
	s.Nil(v)

	v, err = EvalAny("contains(key3, 'elem2')", obj)
	s.NoError(err)
	s.Equal(true, v.(bool))

	_, err = EvalAny("key3[", obj)
	s.Error(err)
}

func (s *QueryTestSuite) TestApplyOverRecords() {
	clientes := []types.Cliente{
		{ID: 1, Nombre: "Ana", Correo: "ana@example.com", Telefono: "600000001"},
		{ID: 2, Nombre: "Luis", Correo: "luis@banco.es"},
	}

	v, err := Apply("[].correo", clientes)
	s.NoError(err)
	s.Equal([]any{"ana@example.com", "luis@banco.es"}, v)

	v, err = Apply("[?contains(correo, 'banco.es')].nombre | [0]", clientes)
	s.NoError(err)
	s.Equal("Luis", v)

	v, err = Apply("length(@)", clientes)
	s.NoError(err)
	s.Equal(float64(2), v)

	v, err = Apply("", clientes)
	s.NoError(err)
	s.Len(v, 2)
}

package types

// Record is implemented by every entity a ports.Store can hold.
// RecordKey is the secondary unique key (usuario for gestores, correo for clientes).
type Record[T any] interface {
	RecordID() int64
	RecordKey() string
	WithID(id int64) T
}

// Gestor is a bank manager. Password always holds a bcrypt hash once persisted.
type Gestor struct {
	ID       int64  `json:"id" yaml:"id" dynamodbav:"id" bson:"_id"`
	Usuario  string `json:"usuario" yaml:"usuario" dynamodbav:"usuario" bson:"usuario"`
	Password string `json:"password" yaml:"password" dynamodbav:"password" bson:"password"`
	Correo   string `json:"correo" yaml:"correo" dynamodbav:"correo" bson:"correo"`
}

func (g Gestor) RecordID() int64   { return g.ID }
func (g Gestor) RecordKey() string { return g.Usuario }

// WithID returns a copy of g carrying the store assigned id.
func (g Gestor) WithID(id int64) Gestor {
	g.ID = id
	return g
}

// Cliente is a bank customer, keyed by its email address.
type Cliente struct {
	ID       int64  `json:"id" yaml:"id" dynamodbav:"id" bson:"_id"`
	Nombre   string `json:"nombre" yaml:"nombre" dynamodbav:"nombre" bson:"nombre"`
	Correo   string `json:"correo" yaml:"correo" dynamodbav:"correo" bson:"correo"`
	Telefono string `json:"telefono,omitempty" yaml:"telefono" dynamodbav:"telefono" bson:"telefono"`
}

func (c Cliente) RecordID() int64   { return c.ID }
func (c Cliente) RecordKey() string { return c.Correo }

func (c Cliente) WithID(id int64) Cliente {
	c.ID = id
	return c
}

// Page returns the 1-based page of items with the given size. Pages past the end are empty.
func Page[T any](items []T, page, size int) []T {
	if page < 1 || size < 1 {
		return nil
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

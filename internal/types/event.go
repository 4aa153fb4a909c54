package types

import "time"

const (
	EventGestorInsertado    = "gestor_insertado"
	EventGestorActualizado  = "gestor_actualizado"
	EventGestorEliminado    = "gestor_eliminado"
	EventGestoresEliminados = "gestores_eliminados"

	EventClienteInsertado   = "cliente_insertado"
	EventClienteActualizado = "cliente_actualizado"
	EventClienteEliminado   = "cliente_eliminado"
	EventClientesEliminados = "clientes_eliminados"
)

// Event is what a Notifier sends after a successful write.
// Message is the human readable line; Fields carry the same data for structured sinks.
type Event struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	At      time.Time         `json:"at"`
}

func NewEvent(kind, message string, fields map[string]string) Event {
	return Event{Kind: kind, Message: message, Fields: fields, At: time.Now().UTC()}
}

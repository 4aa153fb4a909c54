// Package validation checks operator input before anything is hashed or stored.
// Every validator returns "" when the value is acceptable, or the message to show the operator.
package validation

import (
	"errors"
	"fmt"

	"banco/internal/types"

	"github.com/go-playground/validator/v10"
)

const (
	UsuarioMin  = 3
	UsuarioMax  = 30
	PasswordMin = 6
	// bcrypt ignores everything past 72 bytes
	PasswordMaxBytes = 72
	NombreMax        = 100
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var (
	usuarioRules  = fmt.Sprintf("required,min=%d,max=%d,alphanum", UsuarioMin, UsuarioMax)
	passwordRules = fmt.Sprintf("required,min=%d", PasswordMin)
	correoRules   = "required,email"
	// number, unlike numeric, admits no sign and no decimal point
	telefonoRules = "omitempty,number,min=9,max=15"
)

func Usuario(usuario string) string {
	return message(validate.Var(usuario, usuarioRules), map[string]string{
		"required": "El usuario es obligatorio",
		"min":      fmt.Sprintf("El usuario debe tener al menos %d caracteres", UsuarioMin),
		"max":      fmt.Sprintf("El usuario no puede tener más de %d caracteres", UsuarioMax),
		"alphanum": "El usuario solo puede contener letras y números",
	})
}

func Password(password string) string {
	if msg := message(validate.Var(password, passwordRules), map[string]string{
		"required": "El password es obligatorio",
		"min":      fmt.Sprintf("El password debe tener al menos %d caracteres", PasswordMin),
	}); msg != "" {
		return msg
	}
	if len(password) > PasswordMaxBytes {
		return fmt.Sprintf("El password no puede ocupar más de %d bytes", PasswordMaxBytes)
	}
	return ""
}

func Correo(correo string) string {
	return message(validate.Var(correo, correoRules), map[string]string{
		"required": "El correo es obligatorio",
		"email":    "No es un correo válido",
	})
}

func Nombre(nombre string) string {
	return message(validate.Var(nombre, fmt.Sprintf("required,max=%d", NombreMax)), map[string]string{
		"required": "El nombre es obligatorio",
		"max":      fmt.Sprintf("El nombre no puede tener más de %d caracteres", NombreMax),
	})
}

func Telefono(telefono string) string {
	return message(validate.Var(telefono, telefonoRules), map[string]string{
		"number":  "El teléfono solo puede contener dígitos",
		"min":     "El teléfono debe tener entre 9 y 15 dígitos",
		"max":     "El teléfono debe tener entre 9 y 15 dígitos",
	})
}

type clienteInput struct {
	Nombre   string `validate:"required"`
	Correo   string `validate:"required,email"`
	Telefono string `validate:"omitempty,number,min=9,max=15"`
}

// Cliente validates a whole cliente record, reporting the first failing field.
func Cliente(c types.Cliente) string {
	err := validate.Struct(clienteInput{Nombre: c.Nombre, Correo: c.Correo, Telefono: c.Telefono})
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	switch verrs[0].Field() {
	case "Nombre":
		return Nombre(c.Nombre)
	case "Correo":
		return Correo(c.Correo)
	default:
		return Telefono(c.Telefono)
	}
}

// message maps the first failed tag to its operator facing text.
func message(err error, msgs map[string]string) string {
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if m, ok := msgs[verrs[0].Tag()]; ok {
			return m
		}
		return fmt.Sprintf("Valor no válido (%s)", verrs[0].Tag())
	}
	return err.Error()
}

// =============================================================================
// RESPONSES.GO - RESPONSE HELPERS
// =============================================================================
// Form posts are answered with short HTML fragments, not full pages. This
// file holds those fragments and the mapping from service errors to the
// message a visitor sees.
//
// Usage:
//   WriteFragment(w, http.StatusOK, MsgPasswordMismatch)
//   WriteJSON(w, http.StatusOK, data)
// =============================================================================

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JoshBaneyCS/betanito/internal/users"
)

// Messages shown to visitors.
const (
	MsgPasswordMismatch = "Las contraseñas no coinciden."
	MsgMissingField     = "El RUT, el correo y la contraseña son obligatorios."
	MsgInvalidBirth     = "La fecha de nacimiento no es válida."
	MsgDuplicateUser    = "El RUT o el correo ya están registrados."
	MsgInternal         = "Error interno del servidor"
	MsgProfileLoad      = "Error al cargar el perfil."
)

// InvalidCredentialsHTML is the login failure fragment with a retry link to
// loginPath.
func InvalidCredentialsHTML(loginPath string) string {
	return `Credenciales inválidas. <a href="` + loginPath + `">Intentar de nuevo</a>`
}

// WriteFragment writes an HTML fragment. Callers must escape any visitor
// supplied text they put in body.
func WriteFragment(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		slog.Error("write response", "error", err)
	}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encode json response", "error", err)
		}
	}
}

// RegistrationMessage maps a registration error to the message shown inline.
// ok is false for errors that are not the visitor's fault.
func RegistrationMessage(err error) (msg string, ok bool) {
	switch {
	case errors.Is(err, users.ErrPasswordMismatch):
		return MsgPasswordMismatch, true
	case errors.Is(err, users.ErrMissingField):
		return MsgMissingField, true
	case errors.Is(err, users.ErrInvalidBirth):
		return MsgInvalidBirth, true
	case errors.Is(err, users.ErrDuplicateKey):
		return MsgDuplicateUser, true
	default:
		return "", false
	}
}

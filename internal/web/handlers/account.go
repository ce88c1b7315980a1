// =============================================================================
// ACCOUNT.GO - ACCOUNT PAGES AND FORMS
// =============================================================================
// HTTP handlers for the account area:
//   - GET  /account/register     - Registration form
//   - POST /account/register     - Create a user, then redirect to login
//   - GET  /account/login        - Login form
//   - POST /account/login        - Check credentials, set cookies
//   - GET  /account/logout       - Revoke session, clear cookies
//   - GET  /account/profile      - Profile (session required)
//   - GET  /account/transactions - Transactions (session required)
//   - GET  /bienvenida           - Greeting after login (session required)
// =============================================================================

package handlers

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/JoshBaneyCS/betanito/internal/auth"
	"github.com/JoshBaneyCS/betanito/internal/logging"
	"github.com/JoshBaneyCS/betanito/internal/routes"
	"github.com/JoshBaneyCS/betanito/internal/web/view"
)

const msgBadRequest = "Solicitud inválida."

// =============================================================================
// HANDLER STRUCT
// =============================================================================

// AccountHandler handles registration, login, logout and the pages behind
// the session gate.
type AccountHandler struct {
	service  *auth.Service
	cookies  *auth.Cookies
	renderer *view.Renderer
	table    *routes.Table
	logger   *slog.Logger
}

func NewAccountHandler(service *auth.Service, cookies *auth.Cookies, renderer *view.Renderer, table *routes.Table, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		service:  service,
		cookies:  cookies,
		renderer: renderer,
		table:    table,
		logger:   logger,
	}
}

// =============================================================================
// REGISTER
// =============================================================================

// RegisterForm renders the registration page.
// GET /account/register
func (h *AccountHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, view.PageRegister, view.Data{})
}

// Register creates a new user account.
// POST /account/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		WriteFragment(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	user, err := h.service.Register(r.Context(), auth.RegisterForm{
		Name:            r.PostForm.Get("name"),
		Surname:         r.PostForm.Get("surname"),
		User:            r.PostForm.Get("user"),
		Birth:           r.PostForm.Get("birth"),
		RUT:             r.PostForm.Get("rut"),
		Mail:            r.PostForm.Get("mail"),
		Password:        r.PostForm.Get("password"),
		PasswordConfirm: r.PostForm.Get("password-confirm"),
	})
	if err != nil {
		if msg, ok := RegistrationMessage(err); ok {
			WriteFragment(w, http.StatusOK, msg)
			return
		}
		logging.ForRequest(h.logger, r).Error("register user", "error", err)
		WriteFragment(w, http.StatusInternalServerError, MsgInternal)
		return
	}

	logging.ForRequest(h.logger, r).Info("user registered", "user_id", user.ID)
	http.Redirect(w, r, h.table.Path(routes.Login), http.StatusSeeOther)
}

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

// LoginForm renders the login page.
// GET /account/login
func (h *AccountHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, view.PageLogin, view.Data{})
}

// Login checks the RUT and password and opens a session.
// POST /account/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		WriteFragment(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	issued, err := h.service.Login(r.Context(), r.PostForm.Get("rut"), r.PostForm.Get("password"))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			WriteFragment(w, http.StatusOK, InvalidCredentialsHTML(h.table.Path(routes.Login)))
			return
		}
		logging.ForRequest(h.logger, r).Error("login", "error", err)
		WriteFragment(w, http.StatusInternalServerError, MsgInternal)
		return
	}

	h.cookies.Set(w, issued)
	http.Redirect(w, r, h.table.Path(routes.Bienvenida), http.StatusSeeOther)
}

// Logout revokes the session and clears both cookies. Anonymous visitors
// are simply redirected.
// GET /account/logout
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := auth.IdentityToken(r); ok {
		if err := h.service.Logout(r.Context(), token); err != nil {
			logging.ForRequest(h.logger, r).Error("revoke session", "error", err)
		}
	}

	h.cookies.Clear(w)
	http.Redirect(w, r, h.table.Path(routes.Login), http.StatusFound)
}

// =============================================================================
// PROTECTED PAGES
// =============================================================================
// These sit behind auth.Gate.RequireSession, which puts the user in the
// request context.

// Profile shows the logged-in user's record.
// GET /account/profile
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, h.table.Path(routes.Login), http.StatusFound)
		return
	}

	data := view.Data{DisplayName: user.DisplayName, User: user}
	if err := h.renderer.Render(w, http.StatusOK, view.PageProfile, data); err != nil {
		logging.ForRequest(h.logger, r).Error("render profile", "error", err)
		WriteFragment(w, http.StatusInternalServerError, MsgProfileLoad)
	}
}

// Transactions renders the transactions page.
// GET /account/transactions
func (h *AccountHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, h.table.Path(routes.Login), http.StatusFound)
		return
	}

	h.render(w, r, view.PageTransactions, view.Data{DisplayName: user.DisplayName, User: user})
}

// Bienvenida greets the user right after login.
// GET /bienvenida
func (h *AccountHandler) Bienvenida(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, h.table.Path(routes.Login), http.StatusFound)
		return
	}

	WriteFragment(w, http.StatusOK, "<h2>Bienvenido, "+template.HTMLEscapeString(user.DisplayName)+"!</h2>")
}

func (h *AccountHandler) render(w http.ResponseWriter, r *http.Request, page string, data view.Data) {
	if err := h.renderer.Render(w, http.StatusOK, page, data); err != nil {
		logging.ForRequest(h.logger, r).Error("render page", "page", page, "error", err)
		WriteFragment(w, http.StatusInternalServerError, MsgInternal)
	}
}

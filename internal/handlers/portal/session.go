package portal

import (
	"errors"
	"net/http"

	"hr_portal/internal/directory"
	"hr_portal/internal/handlers"
	"hr_portal/internal/security"
	"hr_portal/internal/shell"
)

const (
	loginField    = "login"
	passwordField = "password"
)

// LoginPage renders the sign-in form.
func (p *Portal) LoginPage(w http.ResponseWriter, r *http.Request) {
	p.renderLogin(w, r, http.StatusOK, "", "")
}

// Login verifies credentials and stores a fresh opaque token in the
// client's storage scope.
func (p *Portal) Login(w http.ResponseWriter, r *http.Request) {
	login := security.CleanText(r.PostFormValue(loginField))
	password := r.PostFormValue(passwordField)

	if login == "" || password == "" {
		p.renderLogin(w, r, http.StatusBadRequest, login, "Enter your username or email and your password.")
		return
	}

	employee, err := p.h.Directory.Authenticate(r.Context(), login, password)
	if errors.Is(err, directory.ErrInvalidCredentials) {
		p.h.Logger.Warn("sign-in rejected", "login", login)
		p.renderLogin(w, r, http.StatusUnauthorized, login, "Invalid username or password.")
		return
	}
	if err != nil {
		p.h.Logger.Error("sign-in failed", "error", err)
		p.h.RenderError(w, r, http.StatusServiceUnavailable, "Sign-in is unavailable right now. Please try again shortly.")
		return
	}

	scope, profileID, ok := p.h.ClientStore(r)
	if !ok {
		p.h.RenderError(w, r, http.StatusInternalServerError, "")
		return
	}

	token, err := security.NewSessionToken()
	if err != nil {
		p.h.Logger.Error("failed to generate session token", "error", err)
		p.h.RenderError(w, r, http.StatusInternalServerError, "")
		return
	}
	if err := scope.Set(r.Context(), shell.TokenKey, token, p.h.Options.TokenTTL); err != nil {
		p.h.Logger.Error("failed to store session token", "error", err, "profile_id", profileID)
		p.h.StorageUnavailable(w, r, err)
		return
	}

	p.h.Logger.Info("employee signed in", "emp_id", employee.EmpID, "profile_id", profileID)
	http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
}

// Logout clears the token, sends the client to the sign-in page and drops
// its shell. It needs no token and can be repeated.
func (p *Portal) Logout(w http.ResponseWriter, r *http.Request) {
	_, profileID, ok := p.h.ClientStore(r)
	if !ok {
		p.h.RenderError(w, r, http.StatusInternalServerError, "")
		return
	}

	sh := p.h.Shells.Mount(profileID)
	sh.Logout(r.Context(), newRequestRoute(w, r, r.URL.Path))
	p.h.Shells.Unmount(profileID)
}

func (p *Portal) renderLogin(w http.ResponseWriter, r *http.Request, status int, login, message string) {
	page := loginPage(loginView{
		Brand:      p.h.Brand(),
		Stylesheet: p.h.Stylesheet(),
		CSRFToken:  security.GetCSRFToken(r),
		Login:      login,
		Error:      message,
	})
	if err := handlers.Render(w, status, page); err != nil {
		p.h.Logger.Error("failed to render login page", "error", err)
	}
}

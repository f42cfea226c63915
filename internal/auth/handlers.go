package auth

import (
	"net/http"
	"strings"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/notify"
	"github.com/noah-isme/toko-storefront/internal/web"
)

// Handler exposes the sign-in and sign-out pages.
type Handler struct {
	Service        *Service
	Renderer       *web.Renderer
	Validate       *validator.Validate
	SessionCookie  string
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite
}

type loginForm struct {
	Name     string `validate:"required,max=64"`
	Password string `validate:"required,max=256"`
	Next     string
}

// LoginView is the data rendered by the login page.
type LoginView struct {
	Name string
	Next string
}

// LoginPage handles GET /login.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, r, http.StatusOK, web.PageLogin, "Sign in", LoginView{Next: SafeNext(r.URL.Query().Get("next"))})
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "auth service not configured", nil)
		return
	}
	form := loginForm{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Password: r.PostFormValue("password"),
		Next:     SafeNext(r.PostFormValue("next")),
	}
	view := LoginView{Name: form.Name, Next: form.Next}
	if err := h.validate().Struct(form); err != nil {
		notify.FromContext(r.Context()).Add(notify.LevelError, "Please enter your name and password.")
		h.Renderer.Render(w, r, http.StatusBadRequest, web.PageLogin, "Sign in", view)
		return
	}
	issued, err := h.Service.Login(r.Context(), form.Name, form.Password)
	if err != nil {
		appErr := common.AsAppError(err)
		if appErr.HTTPStatus == http.StatusInternalServerError {
			common.WriteError(w, err)
			return
		}
		notify.FromContext(r.Context()).Add(notify.LevelError, appErr.Message)
		h.Renderer.Render(w, r, appErr.HTTPStatus, web.PageLogin, "Sign in", view)
		return
	}
	h.setSessionCookie(w, issued)
	http.Redirect(w, r, form.Next, http.StatusSeeOther)
}

// Logout handles POST /logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.Service != nil {
		session := common.SessionFrom(r.Context())
		if err := h.Service.Logout(r.Context(), session); err != nil {
			common.WriteError(w, err)
			return
		}
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// SafeNext keeps post-login redirects on this site.
func SafeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func (h *Handler) validate() *validator.Validate {
	if h.Validate != nil {
		return h.Validate
	}
	return validator.New()
}

func (h *Handler) cookieName() string {
	if h.SessionCookie == "" {
		return "toko_session"
	}
	return h.SessionCookie
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, issued Issued) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName(),
		Value:    issued.Token,
		Domain:   h.CookieDomain,
		Path:     "/",
		Expires:  issued.ExpiresAt,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: h.CookieSameSite,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName(),
		Value:    "",
		Domain:   h.CookieDomain,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: h.CookieSameSite,
	})
}

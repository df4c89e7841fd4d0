package web

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/PotatoBoi2658/notesapp/internal/auth"
	"github.com/PotatoBoi2658/notesapp/internal/errs"
	"github.com/PotatoBoi2658/notesapp/internal/notes"
	"github.com/PotatoBoi2658/notesapp/internal/obs"
)

// WebHandler provides HTTP handlers for web UI pages.
type WebHandler struct {
	renderer       *Renderer
	notesService   *notes.Service
	userService    *auth.UserService
	sessionService *auth.SessionService
}

// NewWebHandler creates a new web handler.
func NewWebHandler(
	renderer *Renderer,
	notesService *notes.Service,
	userService *auth.UserService,
	sessionService *auth.SessionService,
) *WebHandler {
	return &WebHandler{
		renderer:       renderer,
		notesService:   notesService,
		userService:    userService,
		sessionService: sessionService,
	}
}

// RegisterRoutes registers all web UI routes on the given mux.
func (h *WebHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	// Landing page
	mux.Handle("GET /{$}", authMiddleware.OptionalAuth(http.HandlerFunc(h.HandleLanding)))

	// Auth pages
	mux.HandleFunc("GET /login", h.HandleLoginPage)
	mux.HandleFunc("POST /login", h.HandleLogin)
	mux.HandleFunc("GET /register", h.HandleRegisterPage)
	mux.HandleFunc("POST /register", h.HandleRegister)
	mux.HandleFunc("POST /logout", h.HandleLogout)

	// Password reset
	mux.HandleFunc("GET /account/forgot-password", h.HandleForgotPasswordPage)
	mux.HandleFunc("POST /account/forgot-password", h.HandleForgotPassword)
	mux.HandleFunc("GET /account/reset-password", h.HandleResetPasswordPage)
	mux.HandleFunc("POST /account/reset-password", h.HandleResetPassword)

	// Notes (auth required - redirect to login for web pages)
	requireAuth := func(fn http.HandlerFunc) http.Handler {
		return authMiddleware.RequireAuthWithRedirect(fn)
	}
	mux.Handle("GET /notes", requireAuth(h.HandleNotesList))
	mux.Handle("GET /notes/create", requireAuth(h.HandleCreateNotePage))
	mux.Handle("POST /notes/create", requireAuth(h.HandleCreateNote))
	mux.Handle("GET /notes/tags", requireAuth(h.HandleTagsList))
	mux.Handle("GET /notes/tag/{name}", requireAuth(h.HandleNotesByTag))
	mux.Handle("GET /notes/{id}", requireAuth(h.HandleViewNote))
	// Literal edit/delete suffixes would make these patterns overlap
	// GET /notes/tag/{name} on paths like /notes/tag/edit, which the mux
	// rejects at registration. A wildcard {action} is strictly less specific
	// than the tag route, so both register and the tag route wins tag paths.
	mux.Handle("GET /notes/{id}/{action}", requireAuth(h.handleNoteActionPage))
	mux.Handle("POST /notes/{id}/{action}", requireAuth(h.handleNoteAction))
}

// handleNoteActionPage routes GET /notes/{id}/{action} to the edit or delete form.
func (h *WebHandler) handleNoteActionPage(w http.ResponseWriter, r *http.Request) {
	switch r.PathValue("action") {
	case "edit":
		h.HandleEditNotePage(w, r)
	case "delete":
		h.HandleDeleteNotePage(w, r)
	default:
		h.renderer.RenderError(w, http.StatusNotFound, "Page not found")
	}
}

// handleNoteAction routes POST /notes/{id}/{action} to the edit or delete submit.
func (h *WebHandler) handleNoteAction(w http.ResponseWriter, r *http.Request) {
	switch r.PathValue("action") {
	case "edit":
		h.HandleEditNote(w, r)
	case "delete":
		h.HandleDeleteNote(w, r)
	default:
		h.renderer.RenderError(w, http.StatusNotFound, "Page not found")
	}
}

// PageData contains common data passed to all templates.
type PageData struct {
	Title        string
	User         *auth.User
	FlashMessage string
	FlashType    string // "success", "error", "info"
	Error        string
}

// NotesListData contains data for the notes list page.
type NotesListData struct {
	PageData
	Notes []notes.Note
}

// NoteViewData contains data for the note view page.
type NoteViewData struct {
	PageData
	Note *notes.Note
}

// NoteFormData contains data for the create and edit forms. The field values
// echo the submitted input so a validation failure re-renders what the user
// typed.
type NoteFormData struct {
	PageData
	NoteID       string
	TitleField   string
	ContentField string
	TagsField    string
}

// TagsListData contains data for the tag index page.
type TagsListData struct {
	PageData
	Tags []notes.Tag
}

// NotesByTagData contains data for the per-tag notes page.
type NotesByTagData struct {
	PageData
	Tag   string
	Notes []notes.Note
}

// AuthPageData contains data for login/register pages.
type AuthPageData struct {
	PageData
	Email string
}

// ResetPasswordPageData contains data for the reset-password form.
type ResetPasswordPageData struct {
	PageData
	Token string
}

// renderServiceError maps a coded service error onto an error page. Untyped
// errors collapse to a 500 with a generic message.
func (h *WebHandler) renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := errs.CodeOf(err)
	if code == errs.Internal {
		obs.From(r.Context()).Error("request failed", "error", err.Error())
	}
	h.renderer.RenderError(w, errs.HTTPStatus(code), errs.MessageOf(err))
}

func (h *WebHandler) renderPage(w http.ResponseWriter, templateName string, data interface{}) {
	if err := h.renderer.Render(w, templateName, data); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// flashFromQuery copies ?error= and ?success= params into page data.
func flashFromQuery(r *http.Request, data *PageData) {
	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		data.Error = errMsg
	}
	if success := r.URL.Query().Get("success"); success != "" {
		data.FlashMessage = success
		data.FlashType = "success"
	}
}

// Handler implementations

// HandleLanding handles GET / - shows landing page, or redirects to notes if logged in.
func (h *WebHandler) HandleLanding(w http.ResponseWriter, r *http.Request) {
	if auth.IsAuthenticated(r.Context()) {
		http.Redirect(w, r, "/notes", http.StatusFound)
		return
	}

	h.renderPage(w, "landing.html", PageData{Title: "Notes"})
}

// HandleLoginPage handles GET /login - shows the login page.
func (h *WebHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	data := AuthPageData{
		PageData: PageData{Title: "Sign In"},
		Email:    r.URL.Query().Get("email"),
	}
	flashFromQuery(r, &data.PageData)

	if r.URL.Query().Get("reset") == "requested" {
		data.FlashMessage = "If an account exists with that email, we've sent a password reset link. Check your inbox."
		data.FlashType = "success"
	}

	h.renderPage(w, "auth/login.html", data)
}

// HandleLogin handles POST /login - verifies credentials and starts a session.
func (h *WebHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.RenderError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	emailAddr := r.FormValue("email")
	password := r.FormValue("password")

	user, err := h.userService.VerifyLogin(r.Context(), emailAddr, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			http.Redirect(w, r, "/login?error="+url.QueryEscape("Invalid email or password")+"&email="+url.QueryEscape(emailAddr), http.StatusFound)
			return
		}
		h.renderServiceError(w, r, err)
		return
	}

	h.startSession(w, r, user.ID)
}

// HandleRegisterPage handles GET /register - shows registration page.
func (h *WebHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	data := AuthPageData{
		PageData: PageData{Title: "Create Account"},
		Email:    r.URL.Query().Get("email"),
	}
	flashFromQuery(r, &data.PageData)

	h.renderPage(w, "auth/register.html", data)
}

// HandleRegister handles POST /register - creates an account and signs in.
func (h *WebHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.RenderError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	emailAddr := r.FormValue("email")
	password := r.FormValue("password")

	user, err := h.userService.Register(r.Context(), emailAddr, password)
	if err != nil {
		var msg string
		switch {
		case errors.Is(err, auth.ErrAccountExists):
			msg = "An account with that email already exists"
		case errors.Is(err, auth.ErrWeakPassword):
			msg = "Password must be at least 8 characters"
		default:
			h.renderServiceError(w, r, err)
			return
		}
		http.Redirect(w, r, "/register?error="+url.QueryEscape(msg)+"&email="+url.QueryEscape(emailAddr), http.StatusFound)
		return
	}

	h.startSession(w, r, user.ID)
}

// startSession creates a session, sets the cookie, and lands on the notes list.
func (h *WebHandler) startSession(w http.ResponseWriter, r *http.Request, userID string) {
	sessionID, err := h.sessionService.Create(r.Context(), userID)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	h.sessionService.SetCookie(w, sessionID)
	http.Redirect(w, r, "/notes", http.StatusFound)
}

// HandleLogout handles POST /logout - ends the session.
func (h *WebHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sessionID, err := auth.GetFromRequest(r)
	if err == nil {
		_ = h.sessionService.Delete(r.Context(), sessionID)
	}

	h.sessionService.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// HandleForgotPasswordPage handles GET /account/forgot-password.
func (h *WebHandler) HandleForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	data := AuthPageData{
		PageData: PageData{Title: "Reset Password"},
	}
	flashFromQuery(r, &data.PageData)

	h.renderPage(w, "auth/forgot_password.html", data)
}

// HandleForgotPassword handles POST /account/forgot-password. The response is
// the same generic confirmation whether or not the account exists; only a
// missing email configuration is surfaced as an explicit error.
func (h *WebHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.RenderError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	emailAddr := r.FormValue("email")
	if emailAddr == "" {
		http.Redirect(w, r, "/account/forgot-password?error="+url.QueryEscape("Email is required"), http.StatusFound)
		return
	}

	if err := h.userService.SendPasswordReset(r.Context(), emailAddr); err != nil {
		if errors.Is(err, auth.ErrEmailNotConfigured) {
			http.Redirect(w, r, "/account/forgot-password?error="+url.QueryEscape("Password reset is unavailable: email delivery is not configured"), http.StatusFound)
			return
		}
		h.renderServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, "/login?reset=requested", http.StatusFound)
}

// HandleResetPasswordPage handles GET /account/reset-password - shows new password form.
func (h *WebHandler) HandleResetPasswordPage(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.renderer.RenderError(w, http.StatusBadRequest, "The reset link is invalid or has expired")
		return
	}

	data := ResetPasswordPageData{
		PageData: PageData{Title: "Create New Password"},
		Token:    token,
	}
	flashFromQuery(r, &data.PageData)

	h.renderPage(w, "auth/reset_password.html", data)
}

// HandleResetPassword handles POST /account/reset-password.
func (h *WebHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.RenderError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	token := r.FormValue("token")
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	redirectBack := func(msg string) {
		http.Redirect(w, r, "/account/reset-password?token="+url.QueryEscape(token)+"&error="+url.QueryEscape(msg), http.StatusFound)
	}

	if password != confirm {
		redirectBack("Passwords do not match")
		return
	}

	if err := h.userService.ResetPassword(r.Context(), token, password); err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword):
			redirectBack("Password must be at least 8 characters")
		case errors.Is(err, auth.ErrInvalidToken):
			h.renderer.RenderError(w, http.StatusBadRequest, "The reset link is invalid or has expired")
		default:
			h.renderServiceError(w, r, err)
		}
		return
	}

	http.Redirect(w, r, "/login?success="+url.QueryEscape("Password updated. Sign in with your new password."), http.StatusFound)
}

// HandleNotesList handles GET /notes - shows the notes visible to the principal.
func (h *WebHandler) HandleNotesList(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())

	list, err := h.notesService.List(r.Context(), user)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	data := NotesListData{
		PageData: PageData{Title: "My Notes", User: user},
		Notes:    list,
	}
	flashFromQuery(r, &data.PageData)

	h.renderPage(w, "notes/list.html", data)
}

// HandleCreateNotePage handles GET /notes/create - shows the empty create form.
func (h *WebHandler) HandleCreateNotePage(w http.ResponseWriter, r *http.Request) {
	data := NoteFormData{
		PageData: PageData{Title: "New Note", User: auth.GetUser(r.Context())},
	}

	h.renderPage(w, "notes/create.html", data)
}

// HandleCreateNote handles POST /notes/create. Validation failures re-render
// the form with a 400 and the submitted values intact.
func (h *WebHandler) HandleCreateNote(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())

	if err := r.ParseForm(); err != nil {
		h.renderer.RenderError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	params := notes.CreateNoteParams{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		RawTags: r.FormValue("tags"),
	}

	note, err := h.notesService.Create(r.Context(), user, params)
	if err != nil {
		if errs.Is(err, errs.InvalidArgument) {
			data := NoteFormData{
				PageData:     PageData{Title: "New Note", User: user, Error: errs.MessageOf(err)},
				TitleField:   params.Title,
				ContentField: params.Content,
				TagsField:    params.RawTags,
			}
			if rerr := h.renderer.RenderStatus(w, http.StatusBadRequest, "notes/create.html", data); rerr != nil {
				http.Error(w, "Failed to render page", http.StatusInternalServerError)
			}
			return
		}
		h.renderServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, "/notes/"+note.ID, http.StatusFound)
}

// HandleViewNote handles GET /notes/{id} - shows a note.
func (h *WebHandler) HandleViewNote(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	noteID := r.PathValue("id")

	note, err := h.notesService.Get(r.Context(), user, noteID)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	data := NoteViewData{
		PageData: PageData{Title: note.Title, User: user},
		Note:     note,
	}

	h.renderPage(w, "notes/view.html", data)
}

// HandleEditNotePage handles GET /notes/{id}/edit - shows the edit form.
func (h *WebHandler) HandleEditNotePage(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	noteID := r.PathValue("id")

	note, err := h.notesService.Get(r.Context(), user, noteID)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	data := NoteFormData{
		PageData:     PageData{Title: "Edit: " + note.Title, User: user},
		NoteID:       note.ID,
		TitleField:   note.Title,
		ContentField: note.Content,
	}

	h.renderPage(w, "notes/edit.html", data)
}

// HandleEditNote handles POST /notes/{id}/edit - applies a title/content edit.
func (h *WebHandler) HandleEditNote(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	noteID := r.PathValue("id")

	if err := r.ParseForm(); err != nil {
		h.renderer.RenderError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	params := notes.UpdateNoteParams{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
	}

	note, err := h.notesService.Update(r.Context(), user, noteID, params)
	if err != nil {
		if errs.Is(err, errs.InvalidArgument) {
			data := NoteFormData{
				PageData:     PageData{Title: "Edit Note", User: user, Error: errs.MessageOf(err)},
				NoteID:       noteID,
				TitleField:   params.Title,
				ContentField: params.Content,
			}
			if rerr := h.renderer.RenderStatus(w, http.StatusBadRequest, "notes/edit.html", data); rerr != nil {
				http.Error(w, "Failed to render page", http.StatusInternalServerError)
			}
			return
		}
		h.renderServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, "/notes/"+note.ID, http.StatusFound)
}

// HandleDeleteNotePage handles GET /notes/{id}/delete - shows the confirmation page.
func (h *WebHandler) HandleDeleteNotePage(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	noteID := r.PathValue("id")

	note, err := h.notesService.Get(r.Context(), user, noteID)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	data := NoteViewData{
		PageData: PageData{Title: "Delete: " + note.Title, User: user},
		Note:     note,
	}

	h.renderPage(w, "notes/delete.html", data)
}

// HandleDeleteNote handles POST /notes/{id}/delete - deletes the note.
func (h *WebHandler) HandleDeleteNote(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	noteID := r.PathValue("id")

	if err := h.notesService.Delete(r.Context(), user, noteID); err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, "/notes", http.StatusFound)
}

// HandleTagsList handles GET /notes/tags - lists distinct tags visible to the principal.
func (h *WebHandler) HandleTagsList(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())

	tags, err := h.notesService.ListTags(r.Context(), user)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	data := TagsListData{
		PageData: PageData{Title: "Tags", User: user},
		Tags:     tags,
	}

	h.renderPage(w, "notes/tags.html", data)
}

// HandleNotesByTag handles GET /notes/tag/{name} - lists notes carrying the tag.
func (h *WebHandler) HandleNotesByTag(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	tagName := r.PathValue("name")

	list, err := h.notesService.ListByTag(r.Context(), user, tagName)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	data := NotesByTagData{
		PageData: PageData{Title: "Tag: " + tagName, User: user},
		Tag:      tagName,
		Notes:    list,
	}

	h.renderPage(w, "notes/by_tag.html", data)
}

// internal/api/menu/handlers.go
package menu

import (
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"

	"github.com/codr1/WarungWareg/internal/api/apiutil"
	"github.com/codr1/WarungWareg/internal/api/htmx"
	"github.com/codr1/WarungWareg/internal/backend"
	"github.com/codr1/WarungWareg/internal/config"
	"github.com/codr1/WarungWareg/internal/models"
	"github.com/codr1/WarungWareg/internal/money"
	"github.com/codr1/WarungWareg/internal/session"
	menutempl "github.com/codr1/WarungWareg/internal/templates/components/menu"
	"github.com/codr1/WarungWareg/internal/templates/layouts"
)

const (
	msgListFailed   = "Failed to fetch menu. Please try again later."
	msgFetchFailed  = "Failed to fetch menu data"
	msgAddSuccess   = "Menu added successfully!"
	msgAddFailed    = "Failed to add menu"
	msgUpdateOK     = "Menu updated successfully!"
	msgUpdateFailed = "Failed to update menu"
	menuActive      = "menu"

	redirectDelaySeconds = 2
)

var fieldLabels = map[string]string{
	"name":        "Name",
	"description": "Description",
	"price":       "Price",
	"category":    "Category",
	"picture":     "Picture",
}

var (
	client    *backend.Client
	appConfig *config.Config
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(c *backend.Client, cfg *config.Config) {
	client = c
	appConfig = cfg
}

// HandleMenuPage renders GET /menu. HTMX searches get only the table.
func HandleMenuPage(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	by := models.ParseMenuSearchField(r.URL.Query().Get("by"))
	data := menutempl.MenuListData{Query: query, By: string(by)}

	items, err := client.Menu(r.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch menu")
		data.Error = msgListFailed
	} else {
		data.Items = menuRows(models.FilterMenu(items, query, by))
	}

	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(r.Context(), w, menutempl.MenuTable(data), nil,
			"Failed to render menu table", "Failed to render menu")
		return
	}
	renderPage(w, r, menutempl.MenuPage(data), "Menu", http.StatusOK, "")
}

// HandleNewMenuPage renders GET /menu/new.
func HandleNewMenuPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, menutempl.MenuForm(menutempl.MenuFormData{Categories: categoryOptions()}), "Tambah Menu", http.StatusOK, "")
}

// HandleCreateMenu handles POST /menu/new.
func HandleCreateMenu(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if err := apiutil.ParseMultipart(w, r, appConfig.Backend.UploadLimit); err != nil {
		logger.Warn().Err(err).Msg("Failed to parse menu form")
		msg, status := apiutil.FormParseError(err, "Picture", appConfig.Backend.UploadLimit)
		renderForm(w, r, menutempl.MenuFormData{Categories: categoryOptions(), Error: msg}, status)
		return
	}

	input, data, fieldErrs := parseMenuForm(r)
	picture, err := apiutil.FormUpload(r, "picture", appConfig.Backend.UploadLimit, "image/")
	var fieldErr apiutil.FieldError
	if errors.As(err, &fieldErr) {
		fieldErrs = append(fieldErrs, fieldErr)
	}
	if len(fieldErrs) > 0 {
		data.FieldErrors = apiutil.FieldMessages(fieldErrs, fieldLabels)
		renderForm(w, r, data, http.StatusUnprocessableEntity)
		return
	}

	token, _ := session.TokenFromContext(r.Context())
	item := backend.NewMenuItem{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
	}
	if err := client.AddMenu(r.Context(), token, item, picture); err != nil {
		logger.Error().Err(err).Str("name", item.Name).Msg("Failed to add menu")
		data.Error = backend.MessageFor(err, msgAddFailed)
		renderForm(w, r, data, http.StatusBadGateway)
		return
	}

	logger.Info().Str("name", item.Name).Msg("Menu added")
	renderForm(w, r, menutempl.MenuFormData{
		Categories: categoryOptions(),
		Success:    msgAddSuccess,
		RedirectTo: "/menu",
	}, http.StatusOK)
}

// HandleEditMenuPage renders GET /menu/{id}/edit prefilled from the API.
func HandleEditMenuPage(w http.ResponseWriter, r *http.Request) {
	id, ok := menuID(w, r)
	if !ok {
		return
	}

	item, err := client.MenuItem(r.Context(), id)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Int64("menu_id", id).Msg("Failed to fetch menu item")
		data := menutempl.MenuFormData{ID: id, Categories: categoryOptions(), Error: msgFetchFailed}
		renderForm(w, r, data, fetchStatus(err))
		return
	}

	renderForm(w, r, menutempl.MenuFormData{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price.String(),
		Category:    string(item.Category),
		Categories:  categoryOptions(),
		PictureURL:  layouts.AssetURL(appConfig.Backend.AssetBaseURL, item.Picture),
	}, http.StatusOK)
}

// HandleUpdateMenu handles POST /menu/{id}/edit and forwards it as a JSON PATCH.
func HandleUpdateMenu(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	id, ok := menuID(w, r)
	if !ok {
		return
	}
	if err := apiutil.ParseMultipart(w, r, appConfig.Backend.UploadLimit); err != nil {
		logger.Warn().Err(err).Int64("menu_id", id).Msg("Failed to parse menu form")
		msg, status := apiutil.FormParseError(err, "Picture", appConfig.Backend.UploadLimit)
		renderForm(w, r, menutempl.MenuFormData{ID: id, Categories: categoryOptions(), Error: msg}, status)
		return
	}

	input, data, fieldErrs := parseMenuForm(r)
	data.ID = id
	data.PictureURL = strings.TrimSpace(r.FormValue("picture_url"))
	if len(fieldErrs) > 0 {
		data.FieldErrors = apiutil.FieldMessages(fieldErrs, fieldLabels)
		renderForm(w, r, data, http.StatusUnprocessableEntity)
		return
	}

	token, _ := session.TokenFromContext(r.Context())
	if err := client.PatchMenu(r.Context(), token, id, input); err != nil {
		logger.Error().Err(err).Int64("menu_id", id).Msg("Failed to update menu")
		data.Error = backend.MessageFor(err, msgUpdateFailed)
		renderForm(w, r, data, http.StatusBadGateway)
		return
	}

	logger.Info().Int64("menu_id", id).Msg("Menu updated")
	data.Success = msgUpdateOK
	data.RedirectTo = "/menu"
	renderForm(w, r, data, http.StatusOK)
}

// parseMenuForm validates the shared add/edit fields. The returned form data
// echoes what the user typed.
func parseMenuForm(r *http.Request) (backend.MenuPatch, menutempl.MenuFormData, []apiutil.FieldError) {
	data := menutempl.MenuFormData{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Price:       strings.TrimSpace(r.FormValue("price")),
		Category:    strings.ToUpper(strings.TrimSpace(r.FormValue("category"))),
		Categories:  categoryOptions(),
	}
	input := backend.MenuPatch{
		Name:        data.Name,
		Description: data.Description,
		Category:    models.MenuCategory(data.Category),
	}

	var errs []apiutil.FieldError
	if data.Name == "" {
		errs = append(errs, apiutil.FieldError{Field: "name", Reason: "is required"})
	}
	if data.Description == "" {
		errs = append(errs, apiutil.FieldError{Field: "description", Reason: "is required"})
	}
	price, err := apiutil.ParseDecimalField(data.Price, "price")
	var fieldErr apiutil.FieldError
	switch {
	case errors.As(err, &fieldErr):
		errs = append(errs, fieldErr)
	case price.LessThan(models.MinMenuPrice):
		errs = append(errs, apiutil.FieldError{Field: "price", Reason: "must be at least " + models.MinMenuPrice.String()})
	default:
		input.Price = price
	}
	switch {
	case data.Category == "":
		errs = append(errs, apiutil.FieldError{Field: "category", Reason: "is required"})
	case !input.Category.Valid():
		errs = append(errs, apiutil.FieldError{Field: "category", Reason: "must be Food, Drink, or Dessert"})
	}
	return input, data, errs
}

func menuRows(items []models.MenuItem) []menutempl.MenuRow {
	rows := make([]menutempl.MenuRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, menutempl.MenuRow{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Price:       money.Format(item.Price),
			Category:    item.Category.Label(),
			PictureURL:  layouts.AssetURL(appConfig.Backend.AssetBaseURL, item.Picture),
		})
	}
	return rows
}

func categoryOptions() []menutempl.CategoryOption {
	categories := models.MenuCategories()
	options := make([]menutempl.CategoryOption, 0, len(categories))
	for _, c := range categories {
		options = append(options, menutempl.CategoryOption{Value: string(c), Label: c.Label()})
	}
	return options
}

func menuID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := apiutil.ParsePositiveInt64Field(r.PathValue("id"), "id")
	if err != nil {
		http.Error(w, "Invalid menu id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func fetchStatus(err error) int {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

func renderForm(w http.ResponseWriter, r *http.Request, data menutempl.MenuFormData, status int) {
	renderPage(w, r, menutempl.MenuForm(data), data.Title(), status, data.RedirectTo)
}

// renderPage returns the bare component to HTMX and the full layout
// otherwise. An expired token sends the user back to login.
func renderPage(w http.ResponseWriter, r *http.Request, content templ.Component, title string, status int, redirectTo string) {
	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponentStatus(r.Context(), w, htmx.FormStatus(r, status), content, nil,
			"Failed to render menu", "Failed to render page")
		return
	}

	token, _ := session.TokenFromContext(r.Context())
	user, err := apiutil.CurrentUser(r.Context(), client, token)
	if err != nil {
		htmx.Redirect(w, r, "/login")
		return
	}
	page := apiutil.PageData(appConfig, user, title, menuActive)
	if redirectTo != "" {
		page.RedirectTo = redirectTo
		page.RedirectSeconds = redirectDelaySeconds
	}
	apiutil.RenderHTMLComponentStatus(r.Context(), w, status, layouts.Base(content, page), nil,
		"Failed to render menu page", "Failed to render page")
}

package layouts

import (
	"strings"

	"github.com/codr1/WarungWareg/internal/models"
)

type NavItem struct {
	Key   string
	Label string
	Href  string
}

var navItems = []NavItem{
	{Key: "dashboard", Label: "Dashboard", Href: "/dashboard"},
	{Key: "menu", Label: "Menu", Href: "/menu"},
	{Key: "settings", Label: "Settings", Href: "/settings"},
}

// PageData is the per-request chrome around a page body.
type PageData struct {
	Title        string
	AppName      string
	Active       string
	Theme        models.Theme
	User         *models.User
	AssetBaseURL string
	// RedirectTo and RedirectSeconds emit a meta refresh for non-HTMX clients.
	RedirectTo      string
	RedirectSeconds int
}

// PageTitle is "<Title> | <app name>", or just the app name.
func (d PageData) PageTitle() string {
	appName := d.AppName
	if appName == "" {
		appName = d.Theme.WithDefaults().Name
	}
	if d.Title == "" {
		return appName
	}
	return d.Title + " | " + appName
}

// AssetURL joins the backend asset origin with a relative image path.
func AssetURL(base, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func navClass(active bool) string {
	if active {
		return "block px-3 py-2 rounded bg-[var(--theme-primary)] text-white"
	}
	return "block px-3 py-2 rounded hover:bg-[var(--theme-tertiary)]"
}

func profilePic(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.ProfilePic
}

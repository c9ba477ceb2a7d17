// internal/models/menu.go
package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

type MenuCategory string

const (
	CategoryFood    MenuCategory = "FOOD"
	CategoryDrink   MenuCategory = "DRINK"
	CategoryDessert MenuCategory = "DESSERT"
)

// MinMenuPrice is the lowest price the admin form accepts.
var MinMenuPrice = decimal.NewFromInt(100)

var menuCategories = []MenuCategory{CategoryFood, CategoryDrink, CategoryDessert}

func MenuCategories() []MenuCategory {
	out := make([]MenuCategory, len(menuCategories))
	copy(out, menuCategories)
	return out
}

func (c MenuCategory) Valid() bool {
	for _, known := range menuCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Label is the human form shown in the category select.
func (c MenuCategory) Label() string {
	s := strings.ToLower(string(c))
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type MenuItem struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    MenuCategory    `json:"category"`
	Picture     string          `json:"picture,omitempty"`
}

// MenuSearchField selects which column a menu search matches against.
type MenuSearchField string

const (
	MenuSearchByName     MenuSearchField = "name"
	MenuSearchByCategory MenuSearchField = "category"
)

func ParseMenuSearchField(raw string) MenuSearchField {
	if MenuSearchField(strings.ToLower(strings.TrimSpace(raw))) == MenuSearchByCategory {
		return MenuSearchByCategory
	}
	return MenuSearchByName
}

// FilterMenu keeps items whose name or category contains term, case-insensitively.
// An empty term keeps everything.
func FilterMenu(items []MenuItem, term string, field MenuSearchField) []MenuItem {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}
	filtered := make([]MenuItem, 0, len(items))
	for _, item := range items {
		var haystack string
		switch field {
		case MenuSearchByCategory:
			haystack = string(item.Category)
		default:
			haystack = item.Name
		}
		if strings.Contains(strings.ToLower(haystack), term) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/codr1/WarungWareg/internal/models"
)

const (
	menuListPath  = "/menu/get-menu"
	menuAddPath   = "/menu/add-menu"
	menuPatchPath = "/menu/patch-menu/"
)

type rawMenuItem struct {
	ID          *int64           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    string           `json:"category"`
	Picture     string           `json:"picture"`
}

func (r rawMenuItem) toMenuItem(path string) (models.MenuItem, error) {
	if r.ID == nil || *r.ID <= 0 {
		return models.MenuItem{}, &SchemaError{Path: path, Field: "id", Reason: "must be a positive integer"}
	}
	if r.Price == nil {
		return models.MenuItem{}, &SchemaError{Path: path, Field: "price", Reason: "is required"}
	}
	return models.MenuItem{
		ID:          *r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       *r.Price,
		Category:    models.MenuCategory(strings.ToUpper(strings.TrimSpace(r.Category))),
		Picture:     r.Picture,
	}, nil
}

// NewMenuItem is the add-menu form payload.
type NewMenuItem struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    models.MenuCategory
}

// MenuPatch is the edit-menu form payload.
type MenuPatch struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    models.MenuCategory
}

// menuPatchBody is the wire form; the backend expects price as a JSON number.
type menuPatchBody struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       json.Number         `json:"price"`
	Category    models.MenuCategory `json:"category"`
}

func (c *Client) Menu(ctx context.Context) ([]models.MenuItem, error) {
	var raw []rawMenuItem
	if err := c.do(ctx, request{method: http.MethodGet, path: menuListPath}, &raw); err != nil {
		return nil, err
	}
	items := make([]models.MenuItem, 0, len(raw))
	for i, r := range raw {
		item, err := r.toMenuItem(menuListPath)
		if err != nil {
			var schemaErr *SchemaError
			if errors.As(err, &schemaErr) {
				schemaErr.Field = fmt.Sprintf("menu[%d].%s", i, schemaErr.Field)
			}
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *Client) MenuItem(ctx context.Context, id int64) (models.MenuItem, error) {
	path := menuListPath + "?" + url.Values{"id": {strconv.FormatInt(id, 10)}}.Encode()
	var raw rawMenuItem
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &raw); err != nil {
		return models.MenuItem{}, err
	}
	return raw.toMenuItem(menuListPath)
}

// AddMenu posts the add-menu multipart form; picture may be nil.
func (c *Client) AddMenu(ctx context.Context, token string, item NewMenuItem, picture *Upload) error {
	body, contentType, err := multipartBody([]formField{
		{"name", item.Name},
		{"description", item.Description},
		{"price", item.Price.String()},
		{"category", string(item.Category)},
	}, "picture", picture)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        menuAddPath,
		token:       token,
		body:        body,
		contentType: contentType,
	}, nil)
}

func (c *Client) PatchMenu(ctx context.Context, token string, id int64, patch MenuPatch) error {
	body, err := jsonBody(menuPatchBody{
		Name:        patch.Name,
		Description: patch.Description,
		Price:       json.Number(patch.Price.String()),
		Category:    patch.Category,
	})
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		method:      http.MethodPatch,
		path:        menuPatchPath + strconv.FormatInt(id, 10),
		token:       token,
		body:        body,
		contentType: "application/json",
	}, nil)
}

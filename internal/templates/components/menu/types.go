package menu

import "strconv"

const redirectDelaySeconds = 2

var menuHeaders = []string{"Gambar", "Nama", "Deskripsi", "Harga", "Kategori", ""}

type MenuRow struct {
	ID          int64
	Name        string
	Description string
	Price       string
	Category    string
	PictureURL  string
}

type MenuListData struct {
	Items []MenuRow
	Query string
	By    string
	Error string
}

type CategoryOption struct {
	Value string
	Label string
}

type MenuFormData struct {
	// ID is zero for a new item.
	ID          int64
	Name        string
	Description string
	Price       string
	Category    string
	Categories  []CategoryOption
	PictureURL  string
	FieldErrors map[string]string
	Error       string
	Success     string
	RedirectTo  string
}

func (d MenuFormData) Action() string {
	if d.ID == 0 {
		return "/menu/new"
	}
	return editPath(d.ID)
}

func (d MenuFormData) Title() string {
	if d.ID == 0 {
		return "Tambah Menu"
	}
	return "Edit Menu"
}

func editPath(id int64) string {
	return "/menu/" + strconv.FormatInt(id, 10) + "/edit"
}

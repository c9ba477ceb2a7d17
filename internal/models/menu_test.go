package models

import "testing"

func TestFilterMenu(t *testing.T) {
	items := []MenuItem{
		{ID: 1, Name: "Nasi Goreng", Category: CategoryFood},
		{ID: 2, Name: "Es Teh", Category: CategoryDrink},
		{ID: 3, Name: "Es Campur", Category: CategoryDessert},
	}

	tests := []struct {
		name  string
		term  string
		field MenuSearchField
		want  []int64
	}{
		{name: "empty_term", term: "", field: MenuSearchByName, want: []int64{1, 2, 3}},
		{name: "name_case_insensitive", term: "es", field: MenuSearchByName, want: []int64{2, 3}},
		{name: "name_no_match", term: "soto", field: MenuSearchByName, want: nil},
		{name: "category", term: "drink", field: MenuSearchByCategory, want: []int64{2}},
		{name: "category_trimmed", term: "  dess ", field: MenuSearchByCategory, want: []int64{3}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := FilterMenu(items, test.term, test.field)
			if len(got) != len(test.want) {
				t.Fatalf("got %d items, want %d", len(got), len(test.want))
			}
			for i, item := range got {
				if item.ID != test.want[i] {
					t.Fatalf("item %d = %d, want %d", i, item.ID, test.want[i])
				}
			}
		})
	}
}

func TestParseMenuSearchField(t *testing.T) {
	if got := ParseMenuSearchField("Category"); got != MenuSearchByCategory {
		t.Fatalf("got %q, want category", got)
	}
	if got := ParseMenuSearchField("bogus"); got != MenuSearchByName {
		t.Fatalf("got %q, want name", got)
	}
}

func TestMenuCategory(t *testing.T) {
	if !CategoryDrink.Valid() {
		t.Fatal("DRINK should be valid")
	}
	if MenuCategory("SNACK").Valid() {
		t.Fatal("SNACK should be invalid")
	}
	if got := CategoryDessert.Label(); got != "Dessert" {
		t.Fatalf("label = %q, want Dessert", got)
	}
}

func TestOrderDisplayHelpers(t *testing.T) {
	if got := (Order{}).DisplayUUID(); got != "-" {
		t.Fatalf("DisplayUUID = %q, want -", got)
	}
	if got := OrderStatus("CANCELLED").StatusClass(); got != "other" {
		t.Fatalf("StatusClass = %q, want other", got)
	}
	var user *User
	if user.DisplayName() != "User" || user.DisplayRole() != "Guest" {
		t.Fatal("nil user should fall back to User/Guest")
	}
}

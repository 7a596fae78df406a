package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/hay-kot/tabula/internal/core/item"
	"github.com/hay-kot/tabula/internal/styles"
)

// ItemForm wraps a huh.Form for adding or editing an item.
type ItemForm struct {
	form     *huh.Form
	original item.Item // zero ID when adding
	title    string
	agreed   bool
	typ      item.Type
}

// NewItemForm creates a form prefilled with it. An item without an ID is
// treated as a new item.
func NewItemForm(it item.Item) *ItemForm {
	f := &ItemForm{
		original: it,
		title:    it.Title,
		agreed:   it.Agreed,
		typ:      it.Type,
	}
	if f.typ == "" {
		f.typ = item.TypeA
	}

	heading := "Edit item"
	if f.IsNew() {
		heading = "Add item"
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(heading).
				Description("Title").
				Value(&f.title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("title is required")
					}
					return nil
				}),
			huh.NewSelect[item.Type]().
				Title("Type").
				Options(huh.NewOptions(item.Types...)...).
				Value(&f.typ),
			huh.NewConfirm().
				Title("Agreed").
				Affirmative("Yes").
				Negative("No").
				Value(&f.agreed),
		),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)

	return f
}

// Form returns the underlying huh.Form for tea.Model integration.
func (f *ItemForm) Form() *huh.Form {
	return f.form
}

// IsNew reports whether the form adds a new item.
func (f *ItemForm) IsNew() bool {
	return f.original.ID == ""
}

// Item returns the entered values as an item to insert.
func (f *ItemForm) Item() item.Item {
	return item.Item{
		Title:  strings.TrimSpace(f.title),
		Agreed: f.agreed,
		Type:   f.typ,
	}
}

// Patch returns only the fields that differ from the item being edited.
func (f *ItemForm) Patch() item.Patch {
	var p item.Patch
	entered := f.Item()
	if entered.Title != f.original.Title {
		p = p.SetTitle(entered.Title)
	}
	if entered.Agreed != f.original.Agreed {
		p = p.SetAgreed(entered.Agreed)
	}
	if entered.Type != f.original.Type {
		p = p.SetType(entered.Type)
	}
	return p
}

// ID is the ID of the item being edited, empty when adding.
func (f *ItemForm) ID() string {
	return f.original.ID
}

// View renders the form.
func (f *ItemForm) View() string {
	return f.form.View()
}

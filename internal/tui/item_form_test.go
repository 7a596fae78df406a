package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/tabula/internal/core/item"
)

func TestNewItemForm(t *testing.T) {
	t.Run("new item defaults type", func(t *testing.T) {
		form := NewItemForm(item.Item{Title: "New Item 101"})
		require.NotNil(t, form.Form())
		assert.True(t, form.IsNew())
		assert.Equal(t, item.Item{Title: "New Item 101", Type: item.TypeA}, form.Item())
	})

	t.Run("edit produces a minimal patch", func(t *testing.T) {
		original := item.Item{ID: "id-1", Title: "Item 1", Agreed: true, Type: item.TypeB}
		form := NewItemForm(original)
		assert.False(t, form.IsNew())
		assert.Equal(t, "id-1", form.ID())
		assert.True(t, form.Patch().IsEmpty())

		form.title = "  Renamed  "
		patch := form.Patch()
		require.NotNil(t, patch.Title)
		assert.Equal(t, "Renamed", *patch.Title)
		assert.Nil(t, patch.Agreed)
		assert.Nil(t, patch.Type)

		form.typ = item.TypeC
		assert.Equal(t, item.TypeC, *form.Patch().Type)
	})
}

func TestModal(t *testing.T) {
	m := NewModal("Delete item", `Delete "Item 1"?`)
	assert.True(t, m.Visible())
	assert.False(t, m.ConfirmSelected())

	m.ToggleSelection()
	assert.True(t, m.ConfirmSelected())

	view := m.View()
	assert.Contains(t, view, "Delete item")
	assert.Contains(t, view, `Delete "Item 1"?`)

	assert.Equal(t, "bg", Modal{}.Overlay("bg", 80, 24))
}

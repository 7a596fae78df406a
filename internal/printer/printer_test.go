package printer

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/tabula/internal/core/item"
)

func TestFatalError_Plain(t *testing.T) {
	var buf bytes.Buffer
	NewPlain(&buf).FatalError(errors.New("boom"))

	assert.Equal(t, "╭ Error\n│ boom\n╵\n", buf.String())
}

func TestFatalError_Validation(t *testing.T) {
	var buf bytes.Buffer

	var b criterio.FieldErrorsBuilder
	b = b.Append("title", errors.New("is required"))
	err := fmt.Errorf("add item: %w", b.ToError())

	NewPlain(&buf).FatalError(err)

	out := buf.String()
	assert.Contains(t, out, "╭ Validation Error")
	assert.Contains(t, out, "│ add item\n")
	assert.Contains(t, out, "✘ title: is required")
}

func TestFatalError_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPlain(&buf).FatalError(nil)
	assert.Empty(t, buf.String())
}

func TestNew_NonTerminalHasNoColor(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Successf("saved %d", 3)
	assert.Equal(t, "✔ saved 3\n", buf.String())
}

func TestWriteItems(t *testing.T) {
	var buf bytes.Buffer
	err := WriteItems(&buf, []item.Item{
		{ID: "a1", Title: "Item 1", Agreed: true, Type: item.TypeA},
		{ID: "b2", Title: "Item 2", Type: item.TypeC},
	})
	require.NoError(t, err)

	want := "ID  TITLE   AGREED  TYPE\n" +
		"a1  Item 1  yes     Type A\n" +
		"b2  Item 2  no      Type C\n"
	assert.Equal(t, want, buf.String())
}

func TestPageSummary(t *testing.T) {
	tests := []struct {
		q     item.Query
		total int
		want  string
	}{
		{item.Query{Page: 0, PageSize: 10}, 100, "page 1 of 10 (100 items)"},
		{item.Query{Page: 1, PageSize: 10, Search: "Item 5"}, 11, `page 2 of 2 (11 items) matching "Item 5"`},
		{item.Query{Page: 0, PageSize: 10}, 0, "page 1 of 1 (0 items)"},
		{item.Query{Page: 0, PageSize: 10}, 1, "page 1 of 1 (1 item)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PageSummary(tt.q, tt.total))
	}
}

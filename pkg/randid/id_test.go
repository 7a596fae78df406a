package randid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	id := Generate(16)
	assert.Len(t, id, 16)
	for _, r := range id {
		assert.Contains(t, alphabet, string(r))
	}
	assert.Empty(t, Generate(0))
}

func TestRequest(t *testing.T) {
	a, b := Request(), Request()
	assert.True(t, strings.HasPrefix(a, "req-"))
	assert.Len(t, a, 14)
	assert.NotEqual(t, a, b)
}

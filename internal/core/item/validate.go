package item

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"
)

// fieldErrors collects per-field validation failures.
type fieldErrors struct {
	b criterio.FieldErrorsBuilder
}

func (f *fieldErrors) add(field, msg string) {
	f.b = f.b.Append(field, errors.New(msg))
}

// err returns nil when no failures were recorded, otherwise an error that
// matches both ErrValidation and criterio.FieldErrors.
func (f *fieldErrors) err() error {
	if err := f.b.ToError(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// Validate checks page bounds.
func (q Query) Validate() error {
	var fe fieldErrors
	if q.Page < 0 {
		fe.add("page", "must not be negative")
	}
	if q.PageSize < 1 {
		fe.add("pageSize", "must be at least 1")
	}
	return fe.err()
}

// Normalize fills defaults an insert is allowed to omit.
func (it Item) Normalize() Item {
	it.Title = strings.TrimSpace(it.Title)
	if it.Type == "" {
		it.Type = TypeA
	}
	return it
}

// Validate checks the fields an insert must provide.
func (it Item) Validate() error {
	var fe fieldErrors
	if strings.TrimSpace(it.Title) == "" {
		fe.add("title", "is required")
	}
	if !it.Type.Valid() {
		fe.add("type", fmt.Sprintf("unknown type %q", it.Type))
	}
	return fe.err()
}

// Validate checks only the fields present in the patch.
func (p Patch) Validate() error {
	var fe fieldErrors
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		fe.add("title", "cannot be blank")
	}
	if p.Type != nil && !p.Type.Valid() {
		fe.add("type", fmt.Sprintf("unknown type %q", *p.Type))
	}
	return fe.err()
}

// ParseType resolves user input such as "a", "B" or "Type C" to a Type.
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	for _, t := range Types {
		if strings.EqualFold(s, string(t)) || strings.EqualFold(s, strings.TrimPrefix(string(t), "Type ")) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown type %q", ErrValidation, s)
}

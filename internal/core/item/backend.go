package item

import "context"

// Backend is the contract a data source must implement to drive the table.
// Implementations include the in-process mock backend and the HTTP client.
type Backend interface {
	// Fetch returns the page described by q along with the filtered total.
	Fetch(ctx context.Context, q Query) (Page, error)
	// Add inserts an item, assigning an ID if it has none.
	Add(ctx context.Context, it Item) (Item, error)
	// Update merges patch into the item with the given ID. Returns ErrNotFound if absent.
	Update(ctx context.Context, id string, patch Patch) (Item, error)
	// Delete removes the item with the given ID and returns it. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) (Item, error)
}

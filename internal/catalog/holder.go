package catalog

import "sync/atomic"

// Holder publishes a Catalog to concurrent readers. Reload builds a complete
// replacement off to the side and publishes it with a single atomic store, so
// in-flight classification calls see either the old catalog or the new one in
// full, never a mix.
type Holder struct {
	current atomic.Pointer[Catalog]
}

// NewHolder creates a Holder serving the given catalog.
func NewHolder(c *Catalog) *Holder {
	h := &Holder{}
	h.current.Store(c)
	return h
}

// Current returns the catalog being served.
func (h *Holder) Current() *Catalog {
	return h.current.Load()
}

// Swap atomically replaces the served catalog.
func (h *Holder) Swap(c *Catalog) {
	h.current.Store(c)
}

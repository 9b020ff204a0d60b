package domain

import (
	"errors"
	"fmt"
)

// AdminDashboardID identifies the dashboard that hosts account management.
const AdminDashboardID = "admin"

var ErrInvalidCatalog = errors.New("invalid dashboard catalog")

// Dashboard describes one embeddable report and the roles allowed to see it.
type Dashboard struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	EmbedURL    string `json:"embed_url"`
	Roles       []Role `json:"roles"`
}

// Configured is false when no embed address was provided; the client renders
// a placeholder instead of loading the frame.
func (d Dashboard) Configured() bool {
	return d.EmbedURL != ""
}

// Allows reports whether role is in the dashboard's permitted set.
func (d Dashboard) Allows(role Role) bool {
	for _, r := range d.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (d Dashboard) clone() Dashboard {
	d.Roles = append([]Role(nil), d.Roles...)
	return d
}

// Catalog is the static, ordered set of dashboards. It is built once at
// startup and only read afterwards.
type Catalog struct {
	order []Dashboard
	byID  map[string]int
}

// NewCatalog validates the descriptors and freezes them in the given order.
func NewCatalog(dashboards []Dashboard) (*Catalog, error) {
	c := &Catalog{
		order: make([]Dashboard, 0, len(dashboards)),
		byID:  make(map[string]int, len(dashboards)),
	}
	for i, d := range dashboards {
		if d.ID == "" {
			return nil, fmt.Errorf("%w: dashboard[%d] has no id", ErrInvalidCatalog, i)
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate dashboard id %q", ErrInvalidCatalog, d.ID)
		}
		for _, r := range d.Roles {
			if !r.Valid() {
				return nil, fmt.Errorf("%w: dashboard %q references unknown role %q", ErrInvalidCatalog, d.ID, r)
			}
		}
		d.Roles = append([]Role(nil), d.Roles...)
		c.byID[d.ID] = len(c.order)
		c.order = append(c.order, d)
	}
	return c, nil
}

// Get returns the descriptor for id.
func (c *Catalog) Get(id string) (Dashboard, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Dashboard{}, false
	}
	return c.order[i].clone(), true
}

// All returns a copy of every descriptor in catalog order.
func (c *Catalog) All() []Dashboard {
	out := make([]Dashboard, 0, len(c.order))
	for _, d := range c.order {
		out = append(out, d.clone())
	}
	return out
}

// Len returns the number of dashboards.
func (c *Catalog) Len() int {
	return len(c.order)
}

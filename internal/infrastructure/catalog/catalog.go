// Package catalog loads the dashboard catalog from YAML. The built-in catalog
// is embedded in the binary; DASHBOARDS_FILE replaces it.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

//go:embed default.yaml
var defaultCatalog []byte

type file struct {
	Dashboards []entry `yaml:"dashboards"`
}

type entry struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	EmbedURL    string   `yaml:"embed_url"`
	Roles       []string `yaml:"roles"`
}

// Default returns the embedded catalog.
func Default() (*domain.Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads the catalog at path, or the embedded one when path is empty.
func Load(path string) (*domain.Catalog, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	cat, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes a YAML catalog document.
func Parse(raw []byte) (*domain.Catalog, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}
	if len(f.Dashboards) == 0 {
		return nil, fmt.Errorf("%w: no dashboards defined", domain.ErrInvalidCatalog)
	}

	ds := make([]domain.Dashboard, 0, len(f.Dashboards))
	for _, e := range f.Dashboards {
		roles := make([]domain.Role, 0, len(e.Roles))
		for _, r := range e.Roles {
			roles = append(roles, domain.Role(r))
		}
		ds = append(ds, domain.Dashboard{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			EmbedURL:    e.EmbedURL,
			Roles:       roles,
		})
	}
	return domain.NewCatalog(ds)
}

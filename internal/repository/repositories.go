package repository

import (
	"github.com/deppfellow/go-kv-crud/internal/model"
	"github.com/deppfellow/go-kv-crud/internal/server"
)

// Repositories holds one item repository per configured resource.
type Repositories struct {
	Items map[string]*ItemRepository[model.ItemData]
}

// NewRepositories builds a repository for every name in
// s.Config.Resources, all backed by s.Store.
func NewRepositories(s *server.Server) *Repositories {
	items := make(map[string]*ItemRepository[model.ItemData], len(s.Config.Resources))
	for _, name := range s.Config.Resources {
		items[name] = NewItemRepository[model.ItemData](s.Store, name)
	}
	return &Repositories{Items: items}
}

package service

import (
	"fmt"

	"github.com/deppfellow/go-kv-crud/internal/model"
	"github.com/deppfellow/go-kv-crud/internal/repository"
	"github.com/deppfellow/go-kv-crud/internal/server"
)

// Services holds one ItemService per configured resource, keyed by
// resource name.
type Services struct {
	Items map[string]*ItemService[model.ItemData]
}

// NewService builds a service for every resource in s.Config.Resources.
// It fails when repos lacks one of them.
func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	items := make(map[string]*ItemService[model.ItemData], len(s.Config.Resources))
	for _, name := range s.Config.Resources {
		repo, ok := repos.Items[name]
		if !ok {
			return nil, fmt.Errorf("no repository for resource %q", name)
		}
		items[name] = NewItemService(repo)
	}

	return &Services{Items: items}, nil
}

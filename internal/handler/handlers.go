package handler

import (
	"fmt"

	"github.com/deppfellow/go-kv-crud/internal/model"
	"github.com/deppfellow/go-kv-crud/internal/server"
	"github.com/deppfellow/go-kv-crud/internal/service"
)

// Handlers groups every HTTP handler so router setup takes one value.
type Handlers struct {
	Health *HealthHandler

	// Resources are mounted in config order.
	Resources []ResourceHandler
}

// NewHandlers builds a HealthHandler and one ItemHandler per configured
// resource.
func NewHandlers(s *server.Server, services *service.Services) (*Handlers, error) {
	resources := make([]ResourceHandler, 0, len(s.Config.Resources))
	for _, name := range s.Config.Resources {
		svc, ok := services.Items[name]
		if !ok {
			return nil, fmt.Errorf("no service for resource %q", name)
		}
		resources = append(resources, NewItemHandler[model.ItemData, *model.ItemData](s, name, svc))
	}

	return &Handlers{
		Health:    NewHealthHandler(s),
		Resources: resources,
	}, nil
}

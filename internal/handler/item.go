package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/go-kv-crud/internal/errs"
	"github.com/deppfellow/go-kv-crud/internal/kv"
	"github.com/deppfellow/go-kv-crud/internal/middleware"
	"github.com/deppfellow/go-kv-crud/internal/model"
	"github.com/deppfellow/go-kv-crud/internal/server"
	"github.com/deppfellow/go-kv-crud/internal/service"
	"github.com/deppfellow/go-kv-crud/internal/validation"
)

// Client-facing messages.
const (
	MsgCreated       = "item created successfully"
	MsgCreateFailed  = "item could not be created"
	MsgUpdated       = "item updated successfully"
	MsgUpdateFailed  = "item could not be updated"
	MsgDeleted       = "item deleted successfully"
	MsgNotFound      = "no item found"
	MsgIDNotProvided = "'id' not provided"
)

// ParamID is the optional path parameter naming an item.
const ParamID = "id"

// ResourceHandler is what the router needs to mount one resource.
type ResourceHandler interface {
	Resource() string
	Create() echo.HandlerFunc
	Read() echo.HandlerFunc
	Update() echo.HandlerFunc
	Delete() echo.HandlerFunc
}

// ItemHandler serves CRUD for one resource. PT is the pointer type the
// body is decoded into.
type ItemHandler[T any, PT validation.Payload[T]] struct {
	Handler
	resource string
	service  *service.ItemService[T]
}

var _ ResourceHandler = (*ItemHandler[model.ItemData, *model.ItemData])(nil)

// NewItemHandler serves resource through svc.
//
// PT is the pointer type bodies are decoded into:
//
//	NewItemHandler[model.ItemData, *model.ItemData](s, "tasks", svc)
func NewItemHandler[T any, PT validation.Payload[T]](s *server.Server, resource string, svc *service.ItemService[T]) *ItemHandler[T, PT] {
	return &ItemHandler[T, PT]{
		Handler:  NewHandler(s),
		resource: resource,
		service:  svc,
	}
}

// Resource returns the name the handler is mounted under.
func (h *ItemHandler[T, PT]) Resource() string {
	return h.resource
}

func (h *ItemHandler[T, PT]) newPayload() PT {
	return PT(new(T))
}

// Create stores the body under a new id. Any id in the path is ignored.
func (h *ItemHandler[T, PT]) Create() echo.HandlerFunc {
	return Handle[PT, Response[*model.Item[T]]](h.Handler, h.resource+".create", h.create, http.StatusOK, h.newPayload)
}

func (h *ItemHandler[T, PT]) create(c echo.Context, payload PT) (Response[*model.Item[T]], error) {
	item, err := h.service.Create(c.Request().Context(), *payload)
	if err != nil {
		middleware.GetLogger(c).Error().Err(err).Msg("failed to store new item")
		return Response[*model.Item[T]]{}, errs.NewNotFoundError(MsgCreateFailed, nil)
	}

	return Response[*model.Item[T]]{Message: MsgCreated, Data: item}, nil
}

// Read returns one item when the path has an id, otherwise every item.
func (h *ItemHandler[T, PT]) Read() echo.HandlerFunc {
	return HandleNoBody[any](h.Handler, h.resource+".read", h.read, http.StatusOK)
}

func (h *ItemHandler[T, PT]) read(c echo.Context) (any, error) {
	ctx := c.Request().Context()

	id := c.Param(ParamID)
	if id == "" {
		items, err := h.service.List(ctx)
		if err != nil {
			return nil, err
		}
		return Response[[]model.Item[T]]{Data: items}, nil
	}

	item, err := h.service.Get(ctx, id)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, errs.NewNotFoundError(MsgNotFound, nil)
	}
	if err != nil {
		return nil, err
	}

	return Response[*model.Item[T]]{Data: item}, nil
}

// Update overwrites the item at the path id, creating it if absent.
func (h *ItemHandler[T, PT]) Update() echo.HandlerFunc {
	return Handle[PT, Response[*model.Item[T]]](h.Handler, h.resource+".update", h.update, http.StatusOK, h.newPayload,
		RequireParam(ParamID, MsgIDNotProvided))
}

func (h *ItemHandler[T, PT]) update(c echo.Context, payload PT) (Response[*model.Item[T]], error) {
	item, err := h.service.Replace(c.Request().Context(), c.Param(ParamID), *payload)
	if err != nil {
		middleware.GetLogger(c).Error().Err(err).Msg("failed to store updated item")
		return Response[*model.Item[T]]{}, errs.NewNotFoundError(MsgUpdateFailed, nil)
	}

	return Response[*model.Item[T]]{Message: MsgUpdated, Data: item}, nil
}

// Delete removes the item at the path id. It reports success whether or
// not the item existed, and store failures are only logged.
func (h *ItemHandler[T, PT]) Delete() echo.HandlerFunc {
	return HandleNoBody[MessageResponse](h.Handler, h.resource+".delete", h.delete, http.StatusOK,
		RequireParam(ParamID, MsgIDNotProvided))
}

func (h *ItemHandler[T, PT]) delete(c echo.Context) (MessageResponse, error) {
	if err := h.service.Delete(c.Request().Context(), c.Param(ParamID)); err != nil {
		middleware.GetLogger(c).Error().
			Err(err).
			Str("id", c.Param(ParamID)).
			Msg("failed to delete item")
	}

	return MessageResponse{Message: MsgDeleted}, nil
}

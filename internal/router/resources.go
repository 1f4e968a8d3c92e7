package router

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/go-kv-crud/internal/handler"
)

// registerResourceRoutes mounts POST, GET, PUT and DELETE on both
// "/<resource>" and "/<resource>/:id" so the id is optional for every
// method. Handlers decide what a missing id means.
func registerResourceRoutes(r *echo.Echo, h *handler.Handlers) {
	for _, rh := range h.Resources {
		base := "/" + rh.Resource()
		item := base + "/:" + handler.ParamID

		r.POST(base, rh.Create())
		r.GET(base, rh.Read())
		r.PUT(base, rh.Update())
		r.DELETE(base, rh.Delete())

		r.POST(item, rh.Create(), singleSegmentID)
		r.GET(item, rh.Read(), singleSegmentID)
		r.PUT(item, rh.Update(), singleSegmentID)
		r.DELETE(item, rh.Delete(), singleSegmentID)
	}
}

// singleSegmentID rejects ids spanning more than one path segment. echo
// lets a trailing param absorb the rest of the path, so "/tasks/a/b"
// would otherwise reach the handlers with id "a/b".
func singleSegmentID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if strings.Contains(c.Param(handler.ParamID), "/") {
			return echo.ErrNotFound
		}
		return next(c)
	}
}

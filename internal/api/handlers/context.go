package handlers

import (
	"Foodgram-Backend/domain"
	"net/url"

	"github.com/gofiber/fiber/v2"
)

// viewerID returns the authenticated user id, or "" for anonymous requests
// that came through the optional-auth middleware.
func viewerID(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}

func viewerRole(c *fiber.Ctx) string {
	if role, ok := c.Locals("role").(string); ok {
		return role
	}
	return ""
}

// queryValues copies the request's query parameters so pagination links can
// carry the active filters forward.
func queryValues(c *fiber.Ctx) url.Values {
	values := url.Values{}
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		values.Add(string(key), string(value))
	})
	return values
}

// parsePagination reads the page and limit query parameters; the default
// page size comes from the explicit pagination config.
func parsePagination(c *fiber.Ctx, pagination domain.PaginationConfig) (int, int) {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	limit := c.QueryInt("limit", pagination.DefaultLimit)
	if limit < 1 {
		limit = pagination.DefaultLimit
	}
	return page, limit
}

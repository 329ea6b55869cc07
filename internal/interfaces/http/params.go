package http

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// paramID lee un parámetro de ruta entero positivo.
func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// paramName lee un parámetro de ruta de texto y deshace el escape de URL.
func paramName(c *fiber.Ctx, name string) (string, bool) {
	raw, err := url.PathUnescape(c.Params(name))
	if err != nil || strings.TrimSpace(raw) == "" {
		return "", false
	}
	return raw, true
}

// queryID lee un query param entero opcional; vacío devuelve nil.
func queryID(c *fiber.Ctx, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	return &id, true
}

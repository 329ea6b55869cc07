package entity

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Category agrupa artículos. El nombre es la clave única.
type Category struct {
	Name      string
	CreatedAt time.Time
}

// NormalizeCategoryName recorta espacios y lleva el nombre a forma NFC para que
// "Café" escrito con acento combinado y con acento precompuesto sean la misma categoría.
func NormalizeCategoryName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shastra-reservations/internal/menu"
)

// MenuHandler serves the read-only menu.
type MenuHandler struct {
	menu *menu.Menu
}

func NewMenuHandler(m *menu.Menu) *MenuHandler { return &MenuHandler{menu: m} }

// Get returns the menu, optionally narrowed with ?category= and
// ?signature=true (house specials only).
func (h *MenuHandler) Get(c echo.Context) error {
	out := h.menu.Filter(c.QueryParam("category"))
	if sig, _ := strconv.ParseBool(c.QueryParam("signature")); sig {
		out.Items = out.Signature()
	}
	return c.JSON(http.StatusOK, out)
}

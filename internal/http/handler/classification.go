package handler

import (
	"github.com/gofiber/fiber/v2"

	"projdocs/internal/classification"
)

// ClassificationOptions godoc
// @Summary Picker options at a classification level
// @Tags classification
// @Produce json
// @Param level query int true "Level (1-3)"
// @Param parent query string false "Selected parent code"
// @Param grandparent query string false "Selected grandparent code"
// @Success 200 {array} classification.Option
// @Router /classification/options [get]
func ClassificationOptions(catalog *classification.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		level := c.QueryInt("level", 1)
		if level < 1 || level > 3 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LEVEL", "level must be 1, 2 or 3")
		}
		return c.JSON(catalog.OptionsFor(level, c.Query("parent"), c.Query("grandparent")))
	}
}

// ClassificationFolder godoc
// @Summary Folder path derived from a classification code
// @Tags classification
// @Produce json
// @Param code query string true "Code at any level"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errorPayload
// @Router /classification/folder [get]
func ClassificationFolder(catalog *classification.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := catalog.FolderPathFor(c.Query("code"))
		if !ok {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "unknown classification code")
		}
		return c.JSON(fiber.Map{"path": p})
	}
}

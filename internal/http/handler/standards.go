package handler

import (
	"github.com/gofiber/fiber/v2"

	"projdocs/internal/model"
	"projdocs/internal/service"
)

type promoteRequest struct {
	Items []model.PromotionItem `json:"items"`
}

type promoteResponse struct {
	Results  []model.PromotionResult `json:"results"`
	Progress []float64               `json:"progress"`
}

type copyTemplatesRequest struct {
	Code string `json:"code"`
}

// ListStandards godoc
// @Summary List catalogued standards
// @Tags standards
// @Produce json
// @Success 200 {array} model.Standard
// @Router /standards [get]
func ListStandards(svc service.StandardsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := svc.ListExistingStandards(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(out)
	}
}

// NextVersion godoc
// @Summary Next version label for a client
// @Tags standards
// @Produce json
// @Param client query string true "Client"
// @Success 200 {object} map[string]string
// @Router /standards/next-version [get]
func NextVersion(svc service.StandardsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := svc.GetNextVersion(c.UserContext(), c.Query("client"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"version": v})
	}
}

// UploadStandard godoc
// @Summary Upload a native file into the standards library
// @Tags standards
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Standard"
// @Param client formData string true "Client"
// @Param version formData string true "Version label"
// @Param project_number formData string false "Originating project"
// @Param code formData string false "Classification code"
// @Param title formData string false "Classification title"
// @Param description formData string false "Description"
// @Success 201 {object} model.Standard
// @Router /standards [post]
func UploadStandard(svc service.StandardsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		std, err := svc.UploadNativeFile(c.UserContext(),
			service.UploadFile{Name: fh.Filename, Size: fh.Size, Content: f},
			c.FormValue("version"), c.FormValue("client"), c.FormValue("project_number"),
			model.StandardMetadata{
				Code:        c.FormValue("code"),
				Title:       c.FormValue("title"),
				Description: c.FormValue("description"),
			})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(std)
	}
}

// PromoteStandards godoc
// @Summary Copy standards into a project
// @Description Items are copied in order; the first failure aborts the batch.
// @Tags standards
// @Accept json
// @Produce json
// @Param project path string true "Project number"
// @Param body body promoteRequest true "Items"
// @Success 200 {object} promoteResponse
// @Failure 502 {object} errorPayload
// @Router /projects/{project}/standards [post]
func PromoteStandards(svc service.StandardsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req promoteRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		progress := make([]float64, 0, len(req.Items))
		results, err := svc.AddStandardsToProjectWithProgress(c.UserContext(), req.Items, c.Params("project"),
			func(fraction float64, _ []model.PromotionResult) {
				progress = append(progress, fraction)
			})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(promoteResponse{Results: results, Progress: progress})
	}
}

// CopyTemplates godoc
// @Summary Copy templates for a classification code into a project
// @Tags standards
// @Accept json
// @Produce json
// @Param project path string true "Project number"
// @Param body body copyTemplatesRequest true "Code"
// @Success 200 {array} model.PromotionResult
// @Router /projects/{project}/templates [post]
func CopyTemplates(svc service.StandardsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req copyTemplatesRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		out, err := svc.CopyTemplates(c.UserContext(), c.Params("project"), req.Code)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(out)
	}
}

package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"projdocs/internal/classification"
	"projdocs/internal/model"
	"projdocs/internal/service"
)

type createFolderRequest struct {
	Path string `json:"path"`
}

type checkinRequest struct {
	Comment string `json:"comment"`
}

func documentID(c *fiber.Ctx) (int, bool) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ListDocuments godoc
// @Summary List a project's documents
// @Description Metadata records whose project id matches; served from a short-lived cache.
// @Tags documents
// @Produce json
// @Param project path string true "Project identifier"
// @Success 200 {array} model.Document
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /projects/{project}/documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := svc.ListDocuments(c.UserContext(), c.Params("project"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(docs)
	}
}

// EnsureProjectFolder godoc
// @Summary Ensure a project's folder exists
// @Tags documents
// @Produce json
// @Param project path string true "Project identifier"
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /projects/{project}/folder [post]
func EnsureProjectFolder(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		folder, err := svc.EnsureProjectFolder(c.UserContext(), c.Params("project"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"path": folder})
	}
}

// UploadDocument godoc
// @Summary Upload a document into a project
// @Description Multipart form; large files are sent in chunks.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param project path string true "Project identifier"
// @Param file formData file true "Document"
// @Param document_type formData string false "Document type"
// @Param status formData string false "Status"
// @Param code formData string false "Classification code at any level"
// @Param sub_folder formData string false "Folder below the project folder"
// @Success 201 {object} model.Document
// @Failure 400 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /projects/{project}/documents [post]
func UploadDocument(svc service.DocumentService, catalog *classification.Catalog) fiber.Handler {
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

		meta := model.DocumentMetadata{
			DocumentType: c.FormValue("document_type"),
			Status:       c.FormValue("status"),
			SubFolder:    c.FormValue("sub_folder"),
		}
		if code := strings.TrimSpace(c.FormValue("code")); code != "" {
			cl, ok := catalog.Resolve(code)
			if !ok {
				return writeError(c, fiber.StatusBadRequest, "UNKNOWN_CLASSIFICATION", "unknown classification code")
			}
			meta.Classification = &cl
		}

		doc, err := svc.UploadDocument(c.UserContext(), c.Params("project"),
			service.UploadFile{Name: fh.Filename, Size: fh.Size, Content: f}, meta, nil)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// ListFolderContents godoc
// @Summary List a folder
// @Description Immediate subfolders first, then files with their metadata; always read live.
// @Tags documents
// @Produce json
// @Param path query string true "Folder path"
// @Success 200 {array} model.Document
// @Router /folders [get]
func ListFolderContents(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := c.Query("path")
		if p == "" {
			return writeError(c, fiber.StatusBadRequest, "PATH_REQUIRED", "path is required")
		}
		docs, err := svc.ListFolderContents(c.UserContext(), p)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(docs)
	}
}

// CreateFolder godoc
// @Summary Create a folder and any missing parents
// @Tags documents
// @Accept json
// @Produce json
// @Param body body createFolderRequest true "Folder"
// @Success 201 {object} model.FolderInfo
// @Router /folders [post]
func CreateFolder(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createFolderRequest
		if err := c.BodyParser(&req); err != nil || req.Path == "" {
			return writeError(c, fiber.StatusBadRequest, "PATH_REQUIRED", "path is required")
		}
		info, err := svc.CreateFolder(c.UserContext(), req.Path)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(info)
	}
}

// DeleteDocument godoc
// @Summary Delete a document
// @Tags documents
// @Param id path int true "Document id"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.DeleteDocument(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// CheckoutDocument godoc
// @Summary Lock a document for editing
// @Tags documents
// @Param id path int true "Document id"
// @Success 204
// @Failure 409 {object} errorPayload
// @Router /documents/{id}/checkout [post]
func CheckoutDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.CheckoutDocument(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// CheckinDocument godoc
// @Summary Release a document lock, recording a version
// @Tags documents
// @Accept json
// @Param id path int true "Document id"
// @Param body body checkinRequest false "Comment"
// @Success 204
// @Failure 409 {object} errorPayload
// @Router /documents/{id}/checkin [post]
func CheckinDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req checkinRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
			}
		}
		if err := svc.CheckinDocument(c.UserContext(), id, req.Comment); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DocumentVersions godoc
// @Summary List a document's versions, oldest first
// @Tags documents
// @Produce json
// @Param id path int true "Document id"
// @Success 200 {array} store.FileVersion
// @Router /documents/{id}/versions [get]
func DocumentVersions(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		versions, err := svc.GetDocumentVersions(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(versions)
	}
}

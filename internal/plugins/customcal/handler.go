// Package customcal — handler.go serves the /definitions endpoints,
// including JSON export and import.
package customcal

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/almanac/internal/apperror"
)

// Handler serves the definition CRUD endpoints.
type Handler struct {
	svc DefinitionService
}

// NewHandler creates a new definitions Handler.
func NewHandler(svc DefinitionService) *Handler {
	return &Handler{svc: svc}
}

// List returns every definition.
// GET /api/v1/definitions
func (h *Handler) List(c echo.Context) error {
	defs, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	if defs == nil {
		defs = []Definition{}
	}
	return c.JSON(http.StatusOK, defs)
}

// Get returns one definition. Clients revalidating with If-None-Match get
// 304 while the definition is unchanged.
// GET /api/v1/definitions/:slug
func (h *Handler) Get(c echo.Context) error {
	def, err := h.svc.Get(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	tag, err := etag(def)
	if err != nil {
		return apperror.NewInternal(err)
	}
	c.Response().Header().Set("ETag", tag)
	if inm := c.Request().Header.Get("If-None-Match"); inm != "" && matchesETag(inm, tag) {
		return c.NoContent(http.StatusNotModified)
	}
	return c.JSON(http.StatusOK, def)
}

// Create stores a new definition and registers its calendar.
// POST /api/v1/definitions
func (h *Handler) Create(c echo.Context) error {
	var in Input
	if err := c.Bind(&in); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	def, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, def)
}

// Update replaces a definition.
// PUT /api/v1/definitions/:slug
func (h *Handler) Update(c echo.Context) error {
	var in Input
	if err := c.Bind(&in); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	def, err := h.svc.Update(c.Request().Context(), c.Param("slug"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, def)
}

// Delete removes a definition.
// DELETE /api/v1/definitions/:slug
func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("slug")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// maxImportBytes caps the size of an uploaded import file.
const maxImportBytes = 1 << 20

// Export returns a definition as a downloadable JSON file.
// GET /api/v1/definitions/:slug/export
func (h *Handler) Export(c echo.Context) error {
	def, err := h.svc.Get(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	c.Response().Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s.json"`, def.Slug))
	return c.JSON(http.StatusOK, BuildExport(def))
}

// Import creates a definition from an uploaded JSON file in any format
// DetectAndParse recognizes. The file comes as multipart "file" or as the
// raw body. Query parameters slug, epoch_date and epoch_year fill in what
// foreign formats lack; preview=true returns the payload without storing it.
// POST /api/v1/definitions/import
func (h *Handler) Import(c echo.Context) error {
	data, err := readImportBody(c)
	if err != nil {
		return err
	}
	result, err := DetectAndParse(data)
	if err != nil {
		return err
	}

	opts := ImportOptions{
		Slug:      c.QueryParam("slug"),
		EpochDate: c.QueryParam("epoch_date"),
	}
	if raw := c.QueryParam("epoch_year"); raw != "" {
		year, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return apperror.NewBadRequest("epoch_year must be an integer")
		}
		opts.EpochYear = &year
	}
	in := result.Input(opts)

	if c.QueryParam("preview") == "true" {
		in = in.Sanitized()
		if err := in.Validate(); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]any{
			"format": result.Format,
			"input":  in,
		})
	}

	def, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, def)
}

// readImportBody reads the multipart "file" field, or the raw body when the
// request is not a multipart upload.
func readImportBody(c echo.Context) ([]byte, error) {
	var src io.Reader = c.Request().Body
	if file, err := c.FormFile("file"); err == nil {
		f, openErr := file.Open()
		if openErr != nil {
			return nil, apperror.NewBadRequest("could not read uploaded file")
		}
		defer f.Close()
		src = f
	}

	data, err := io.ReadAll(io.LimitReader(src, maxImportBytes+1))
	if err != nil {
		return nil, apperror.NewBadRequest("could not read uploaded file")
	}
	if len(data) == 0 {
		return nil, apperror.NewBadRequest("no file uploaded and no JSON body")
	}
	if len(data) > maxImportBytes {
		return nil, apperror.NewBadRequest(fmt.Sprintf("import file exceeds %d bytes", maxImportBytes))
	}
	return data, nil
}

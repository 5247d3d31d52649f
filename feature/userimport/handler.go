package userimport

import (
	"encoding/json"
	"errors"
	"io"

	"user-import/core/logger"
	"user-import/core/reconcile"
	"user-import/core/utils"
	"user-import/feature/userimport/models"
	"user-import/feature/userimport/parser"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for user imports.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the import routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/tools")
	group.Post("/import_users", h.HandleImportUsers)
}

// HandleImportUsers reconciles an uploaded user snapshot into a resolver.
// @Summary Import Users
// @Description Replace the users of a resolver with the uploaded snapshot. With dryrun only the counts are computed.
// @Tags tools
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Snapshot (passwd or csv)"
// @Param groupid formData string true "Import group"
// @Param resolver formData string true "Resolver name"
// @Param format formData string true "password or csv"
// @Param dryrun formData bool false "Only compute the counts"
// @Param delimiter formData string false "CSV delimiter (default ,)"
// @Param quotechar formData string false "CSV quote character (default \")"
// @Param column_mapping formData string false "JSON object mapping field names to column indexes"
// @Param skip_header formData bool false "Ignore the first csv row"
// @Param encoding formData string false "Input charset (detected when empty)"
// @Success 200 {object} models.Report "Import report"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 422 {object} map[string]string "No valid records"
// @Failure 500 {object} map[string]string "Store error"
// @Router /tools/import_users [post]
func (h *Handler) HandleImportUsers(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	req, err := readRequest(c)
	if err != nil {
		return writeError(c, l, err)
	}

	report, err := h.service.ImportUsers(c.UserContext(), *req)
	if err != nil {
		return writeError(c, l, err)
	}
	return c.JSON(report)
}

func readRequest(c *fiber.Ctx) (*Request, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, models.Invalid("file", "missing upload")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, models.Invalid("file", "cannot open upload: %v", err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, models.Invalid("file", "cannot read upload: %v", err)
	}

	mapping, err := ParseColumnMapping(c.FormValue("column_mapping"))
	if err != nil {
		return nil, err
	}

	return &Request{
		Namespace: reconcile.Namespace{
			GroupID:  c.FormValue("groupid"),
			Resolver: c.FormValue("resolver"),
		},
		Content: content,
		Options: parser.Options{
			Format:        parser.Format(c.FormValue("format")),
			Delimiter:     c.FormValue("delimiter"),
			QuoteChar:     c.FormValue("quotechar"),
			ColumnMapping: mapping,
			SkipHeader:    utils.ToBool(c.FormValue("skip_header")),
			Encoding:      c.FormValue("encoding"),
		},
		DryRun: utils.ToBool(c.FormValue("dryrun")),
	}, nil
}

// ParseColumnMapping decodes a JSON object whose values are numbers or numeric strings.
func ParseColumnMapping(raw string) (map[string]int, error) {
	if raw == "" {
		return nil, nil
	}

	var values map[string]any
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, models.Invalid("column_mapping", "not a JSON object: %v", err)
	}

	mapping := make(map[string]int, len(values))
	for field, v := range values {
		idx, err := utils.ParseInt(v)
		if err != nil {
			return nil, models.Invalid("column_mapping", "column of %q: %v", field, err)
		}
		mapping[field] = idx
	}
	return mapping, nil
}

func writeError(c *fiber.Ctx, l *zap.Logger, err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": verr.Error(),
			"field": verr.Field,
		})
	case errors.Is(err, ErrNoValidRecords):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		l.Error("User import failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}

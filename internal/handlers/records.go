package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/wpq-drafts/internal/certificate"
	"github.com/localnerve/wpq-drafts/internal/services"
	"github.com/localnerve/wpq-drafts/internal/types"
	"github.com/localnerve/wpq-drafts/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RecordsHandler handles submitted records and their attachments
type RecordsHandler struct {
	DB  *gorm.DB
	Log logrus.FieldLogger
}

// SearchRecords handles GET /api/records
// @Summary Search submitted records
// @Description Matches the text against certificate number, welder name and iqama/passport
// @Tags Records
// @Produce json
// @Param q query string false "Search text"
// @Param page query int false "Page, starting at 1"
// @Param pageSize query int false "Page size"
// @Success 200 {object} services.SearchResult
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /records [get]
func (h *RecordsHandler) SearchRecords(c *fiber.Ctx) error {
	if _, err := getUserID(c); err != nil {
		return err
	}

	page, err := queryInt(c, "page")
	if err != nil {
		return err
	}
	pageSize, err := queryInt(c, "pageSize")
	if err != nil {
		return err
	}

	result, err := services.SearchRecords(h.DB, services.SearchQuery{
		Text:     c.Query("q"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return toHTTPError(err, "searchRecords")
	}
	return utils.SuccessResponse(c, result, fiber.StatusOK)
}

// GetRecord handles GET /api/records/:id
// @Summary Get a submitted record
// @Tags Records
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} services.Record
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /records/{id} [get]
func (h *RecordsHandler) GetRecord(c *fiber.Ctx) error {
	if _, err := getUserID(c); err != nil {
		return err
	}
	record, err := services.GetRecord(h.DB, c.Params("id"))
	if err != nil {
		return toHTTPError(err, "getRecord")
	}
	return utils.SuccessResponse(c, record, fiber.StatusOK)
}

// GetCertificate handles GET /api/records/:id/certificate
// @Summary Get the printable certificate of a record
// @Tags Records
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} certificate.Certificate
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /records/{id}/certificate [get]
func (h *RecordsHandler) GetCertificate(c *fiber.Ctx) error {
	if _, err := getUserID(c); err != nil {
		return err
	}
	record, err := services.GetRecord(h.DB, c.Params("id"))
	if err != nil {
		return toHTTPError(err, "getCertificate")
	}
	return utils.SuccessResponse(c, certificate.Build(record), fiber.StatusOK)
}

// DeleteRecord handles DELETE /api/records/:id
// @Summary Delete a submitted record
// @Description Admin only. Removes the record and its attachments
// @Tags Records
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /records/{id} [delete]
func (h *RecordsHandler) DeleteRecord(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	if err := services.DeleteRecord(h.DB, id); err != nil {
		return toHTTPError(err, "deleteRecord")
	}
	if h.Log != nil {
		h.Log.WithFields(logrus.Fields{"user": userID, "record": id}).Info("record deleted")
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, 1)
}

// GetAttachment handles GET /api/attachments/:id
// @Summary Stream a stored photo or signature
// @Tags Records
// @Produce image/png
// @Param id path string true "Attachment ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /attachments/{id} [get]
func (h *RecordsHandler) GetAttachment(c *fiber.Ctx) error {
	if _, err := getUserID(c); err != nil {
		return err
	}
	att, err := services.GetAttachment(h.DB, c.Params("id"))
	if err != nil {
		return toHTTPError(err, "getAttachment")
	}
	c.Set(fiber.HeaderContentType, att.ContentType)
	c.Set(fiber.HeaderCacheControl, "private, max-age=86400")
	return c.Status(fiber.StatusOK).Send(att.Content)
}

// queryInt reads an optional positive integer query parameter.
func queryInt(c *fiber.Ctx, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &types.CustomError{
			Code:    fiber.StatusBadRequest,
			Message: "query parameter " + name + " must be a positive integer",
			Type:    "records.query",
		}
	}
	return n, nil
}

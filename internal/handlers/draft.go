package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/wpq-drafts/internal/draft"
	"github.com/localnerve/wpq-drafts/internal/previews"
	"github.com/localnerve/wpq-drafts/internal/services"
	"github.com/localnerve/wpq-drafts/internal/types"
	"github.com/localnerve/wpq-drafts/internal/utils"
	"github.com/localnerve/wpq-drafts/internal/validation"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DraftHandler handles the per-user draft routes
type DraftHandler struct {
	Drafts   *draft.Manager
	Previews *previews.Registry
	// DB receives submitted records
	DB  *gorm.DB
	Log logrus.FieldLogger
}

// DraftState is the draft as returned by every draft route.
type DraftState struct {
	Draft    draft.FormDraft        `json:"draft"`
	Progress int                    `json:"progress"`
	Sections map[draft.Section]bool `json:"sections"`
	// SuggestedCodeYear pre-fills an empty code year field
	SuggestedCodeYear string `json:"suggestedCodeYear"`
}

// FormNoRequest sets the editable part of the form number.
type FormNoRequest struct {
	Suffix string `json:"suffix"`
}

// SubmitResponse is returned by a successful submission.
type SubmitResponse struct {
	Ok     bool             `json:"ok"`
	Record *services.Record `json:"record"`
}

func (h *DraftHandler) controller(c *fiber.Ctx) (*draft.Controller, string, error) {
	userID, err := getUserID(c)
	if err != nil {
		return nil, "", err
	}
	return h.Drafts.For(userID), userID, nil
}

func state(ctrl *draft.Controller) DraftState {
	d := ctrl.Draft()
	return DraftState{
		Draft:             d,
		Progress:          draft.Progress(d),
		Sections:          draft.SectionStatus(d),
		SuggestedCodeYear: ctrl.SuggestedCodeYear(),
	}
}

// GetDraft handles GET /api/draft
// @Summary Get the current draft
// @Description Returns the user's draft with its completion percentage and per-section status
// @Tags Draft
// @Produce json
// @Success 200 {object} DraftState
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /draft [get]
func (h *DraftHandler) GetDraft(c *fiber.Ctx) error {
	ctrl, _, err := h.controller(c)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, state(ctrl), fiber.StatusOK)
}

// UpdateSection handles PATCH /api/draft/:section
// @Summary Update a draft section
// @Description Shallow-merges the JSON object into the section; unknown keys and photo/signature keys are rejected
// @Tags Draft
// @Accept json
// @Produce json
// @Param section path string true "Section key"
// @Param patch body object true "Partial section"
// @Success 200 {object} DraftState
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /draft/{section} [patch]
func (h *DraftHandler) UpdateSection(c *fiber.Ctx) error {
	ctrl, _, err := h.controller(c)
	if err != nil {
		return err
	}
	section, ok := draft.ParseSection(c.Params("section"))
	if !ok {
		return toHTTPError(fmt.Errorf("%w: %q", draft.ErrUnknownSection, c.Params("section")), "updateSection")
	}
	if err := ctrl.UpdateSectionJSON(section, c.Body()); err != nil {
		return toHTTPError(err, "updateSection")
	}
	return utils.SuccessResponse(c, state(ctrl), fiber.StatusOK)
}

// ResetDraft handles DELETE /api/draft
// @Summary Discard the draft
// @Description Releases uploaded previews, clears storage and starts a fresh draft
// @Tags Draft
// @Produce json
// @Success 200 {object} DraftState
// @Security CookieAuth
// @Router /draft [delete]
func (h *DraftHandler) ResetDraft(c *fiber.Ctx) error {
	ctrl, userID, err := h.controller(c)
	if err != nil {
		return err
	}
	ctrl.Reset()
	if n := h.Previews.RevokeOwner(userID); n > 0 {
		h.Log.WithFields(logrus.Fields{"user": userID, "count": n}).Debug("released unreferenced previews")
	}
	// The stored default hydrates the next request.
	h.Drafts.Forget(userID)
	return utils.SuccessResponse(c, state(ctrl), fiber.StatusOK)
}

// AddContinuityEntry handles POST /api/draft/continuity
// @Summary Add a continuity entry
// @Tags Draft
// @Produce json
// @Success 201 {object} DraftState
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /draft/continuity [post]
func (h *DraftHandler) AddContinuityEntry(c *fiber.Ctx) error {
	ctrl, _, err := h.controller(c)
	if err != nil {
		return err
	}
	if _, err := ctrl.AddContinuityEntry(); err != nil {
		return toHTTPError(err, "addContinuityEntry")
	}
	return utils.SuccessResponse(c, state(ctrl), fiber.StatusCreated)
}

// UpdateContinuityEntry handles PATCH /api/draft/continuity/:id
// @Summary Update a continuity entry
// @Tags Draft
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param patch body object true "Partial entry"
// @Success 200 {object} DraftState
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /draft/continuity/{id} [patch]
func (h *DraftHandler) UpdateContinuityEntry(c *fiber.Ctx) error {
	ctrl, _, err := h.controller(c)
	if err != nil {
		return err
	}
	var fields draft.Fields
	if err := json.Unmarshal(c.Body(), &fields); err != nil || fields == nil {
		return toHTTPError(fmt.Errorf("%w: body must be a JSON object", draft.ErrInvalidPatch), "updateContinuityEntry")
	}
	if err := ctrl.UpdateContinuityEntry(param(c, "id"), fields); err != nil {
		return toHTTPError(err, "updateContinuityEntry")
	}
	return utils.SuccessResponse(c, state(ctrl), fiber.StatusOK)
}

// RemoveContinuityEntry handles DELETE /api/draft/continuity/:id
// @Summary Remove a continuity entry
// @Description The last remaining entry cannot be removed
// @Tags Draft
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} DraftState
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /draft/continuity/{id} [delete]
func (h *DraftHandler) RemoveContinuityEntry(c *fiber.Ctx) error {
	ctrl, _, err := h.controller(c)
	if err != nil {
		return err
	}
	if err := ctrl.RemoveContinuityEntry(param(c, "id")); err != nil {
		return toHTTPError(err, "removeContinuityEntry")
	}
	return utils.SuccessResponse(c, state(ctrl), fiber.StatusOK)
}

// SetFormNo handles PUT /api/draft/form-no
// @Summary Set the form number suffix
// @Tags Draft
// @Accept json
// @Produce json
// @Param body body FormNoRequest true "Suffix"
// @Success 200 {object} DraftState
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /draft/form-no [put]
func (h *DraftHandler) SetFormNo(c *fiber.Ctx) error {
	ctrl, _, err := h.controller(c)
	if err != nil {
		return err
	}
	var req FormNoRequest
	if err := c.BodyParser(&req); err != nil {
		return &types.CustomError{Code: fiber.StatusBadRequest, Message: "invalid form number body", Type: "draft.formNo"}
	}
	ctrl.SetFormNoSuffix(req.Suffix)
	return utils.SuccessResponse(c, state(ctrl), fiber.StatusOK)
}

// UploadFile handles POST /api/draft/files/:target
// @Summary Upload a photo or signature
// @Description Holds the image as a preview until submission and attaches it to the target
// @Tags Draft
// @Accept multipart/form-data
// @Produce json
// @Param target path string true "File target"
// @Param entry query string false "Continuity entry ID for entry targets"
// @Param file formData file true "Image"
// @Success 200 {object} DraftState
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 413 {object} utils.ErrorResponseStruct
// @Failure 415 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /draft/files/{target} [post]
func (h *DraftHandler) UploadFile(c *fiber.Ctx) error {
	ctrl, userID, err := h.controller(c)
	if err != nil {
		return err
	}
	target, ok := draft.ParseFileTarget(c.Params("target"))
	if !ok {
		return toHTTPError(fmt.Errorf("%w: %q", draft.ErrUnknownFileTarget, c.Params("target")), "uploadFile")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return &types.CustomError{Code: fiber.StatusBadRequest, Message: "multipart field \"file\" is required", Type: "preview"}
	}
	f, err := fh.Open()
	if err != nil {
		return toHTTPError(err, "uploadFile")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return toHTTPError(err, "uploadFile")
	}

	handle, url, err := h.Previews.Create(userID, fh.Filename, data)
	if err != nil {
		return toHTTPError(err, "uploadFile")
	}
	if err := ctrl.AttachFile(target, c.Query("entry"), &handle, url); err != nil {
		h.Previews.Revoke(userID, url)
		return toHTTPError(err, "uploadFile")
	}
	return utils.SuccessResponse(c, state(ctrl), fiber.StatusOK)
}

// RemoveFile handles DELETE /api/draft/files/:target
// @Summary Remove a photo or signature
// @Tags Draft
// @Produce json
// @Param target path string true "File target"
// @Param entry query string false "Continuity entry ID for entry targets"
// @Success 200 {object} DraftState
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /draft/files/{target} [delete]
func (h *DraftHandler) RemoveFile(c *fiber.Ctx) error {
	ctrl, _, err := h.controller(c)
	if err != nil {
		return err
	}
	target, ok := draft.ParseFileTarget(c.Params("target"))
	if !ok {
		return toHTTPError(fmt.Errorf("%w: %q", draft.ErrUnknownFileTarget, c.Params("target")), "removeFile")
	}
	if err := ctrl.AttachFile(target, c.Query("entry"), nil, ""); err != nil {
		return toHTTPError(err, "removeFile")
	}
	return utils.SuccessResponse(c, state(ctrl), fiber.StatusOK)
}

// GetPreview handles GET /api/previews/:id
// @Summary Stream an uploaded preview
// @Tags Draft
// @Produce image/png
// @Param id path string true "Preview ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /previews/{id} [get]
func (h *DraftHandler) GetPreview(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	u, err := h.Previews.Open(userID, c.Params("id"))
	if err != nil {
		return toHTTPError(err, "getPreview")
	}
	c.Set(fiber.HeaderContentType, u.ContentType)
	c.Set(fiber.HeaderCacheControl, "private, no-store")
	return c.Status(fiber.StatusOK).Send(u.Data)
}

// ValidateSection handles GET /api/draft/validate/:section
// @Summary Validate a draft section
// @Description Use the section "all" to validate the whole draft
// @Tags Draft
// @Produce json
// @Param section path string true "Section key or all"
// @Success 200 {object} validation.Result
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /draft/validate/{section} [get]
func (h *DraftHandler) ValidateSection(c *fiber.Ctx) error {
	ctrl, _, err := h.controller(c)
	if err != nil {
		return err
	}
	key := c.Params("section")
	if key == "all" {
		return utils.SuccessResponse(c, validation.ValidateAll(ctrl.Draft()), fiber.StatusOK)
	}
	section, ok := draft.ParseSection(key)
	if !ok {
		return toHTTPError(fmt.Errorf("%w: %q", draft.ErrUnknownSection, key), "validateSection")
	}
	return utils.SuccessResponse(c, validation.ValidateSection(section, ctrl.Draft()), fiber.StatusOK)
}

// Submit handles POST /api/draft/submit
// @Summary Submit the draft
// @Description Validates the draft, stores it as a record with its files and resets the draft
// @Tags Draft
// @Produce json
// @Success 201 {object} SubmitResponse
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /draft/submit [post]
func (h *DraftHandler) Submit(c *fiber.Ctx) error {
	ctrl, userID, err := h.controller(c)
	if err != nil {
		return err
	}
	record, result, err := services.SubmitDraft(h.DB, h.Previews, ctrl, userID)
	if errors.Is(err, services.ErrInvalidDraft) {
		return utils.ValidationErrorResponse(c, err.Error(), result.Errors)
	}
	if err != nil {
		return toHTTPError(err, "submit")
	}
	h.Drafts.Forget(userID)

	h.Log.WithFields(logrus.Fields{
		"user":          userID,
		"record":        record.ID,
		"certificateNo": record.CertificateNo,
	}).Info("draft submitted")
	return utils.SuccessResponse(c, SubmitResponse{Ok: true, Record: record}, fiber.StatusCreated)
}

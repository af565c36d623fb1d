// common.go
//
// Draft and record service for welder performance qualification (WPQ) certificates
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of wpq-drafts.
// wpq-drafts is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// wpq-drafts is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with wpq-drafts.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/localnerve/wpq-drafts/internal/draft"
	"github.com/localnerve/wpq-drafts/internal/previews"
	"github.com/localnerve/wpq-drafts/internal/services"
	"github.com/localnerve/wpq-drafts/internal/types"
	"github.com/localnerve/wpq-drafts/internal/utils"
)

// UserLocal is the fiber.Ctx locals key the auth middleware stores the
// *services.SessionUser under.
const UserLocal = "user"

// getUserID returns the authenticated user's id
func getUserID(c *fiber.Ctx) (string, error) {
	user, ok := c.Locals(UserLocal).(*services.SessionUser)
	if !ok || user == nil {
		return "", &types.CustomError{
			Code:    fiber.StatusUnauthorized,
			Message: "user not found in context",
			Type:    "auth",
		}
	}
	if user.ID == "" {
		return "", &types.CustomError{
			Code:    fiber.StatusUnauthorized,
			Message: "user id not found in session",
			Type:    "auth",
		}
	}
	// The id keys long-lived maps; never share a request buffer.
	return fiberutils.CopyString(user.ID), nil
}

// param copies a route parameter out of fiber's reused request buffer.
func param(c *fiber.Ctx, name string) string {
	return fiberutils.CopyString(c.Params(name))
}

// errorStatus maps domain errors to a status and error type.
var errorStatus = []struct {
	err    error
	status int
	kind   string
}{
	{draft.ErrUnknownSection, fiber.StatusNotFound, "draft.section"},
	{draft.ErrUnknownField, fiber.StatusBadRequest, "draft.patch"},
	{draft.ErrInvalidPatch, fiber.StatusBadRequest, "draft.patch"},
	{draft.ErrFileField, fiber.StatusBadRequest, "draft.patch"},
	{draft.ErrEntryNotFound, fiber.StatusNotFound, "draft.continuity"},
	{draft.ErrLastContinuityEntry, fiber.StatusConflict, "draft.continuity"},
	{draft.ErrContinuityFull, fiber.StatusConflict, "draft.continuity"},
	{draft.ErrUnknownFileTarget, fiber.StatusNotFound, "draft.file"},
	{previews.ErrNotFound, fiber.StatusNotFound, "preview"},
	{previews.ErrEmpty, fiber.StatusBadRequest, "preview"},
	{previews.ErrTooLarge, fiber.StatusRequestEntityTooLarge, "preview"},
	{previews.ErrUnsupportedContent, fiber.StatusUnsupportedMediaType, "preview"},
	{services.ErrNotFound, fiber.StatusNotFound, "notFound"},
	{services.ErrDuplicateCertificate, fiber.StatusConflict, "record.duplicate"},
}

// toHTTPError converts err into a *types.CustomError for ErrorHandler.
func toHTTPError(err error, fallbackType string) error {
	var ce *types.CustomError
	if errors.As(err, &ce) {
		return ce
	}
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			return &types.CustomError{Code: m.status, Message: err.Error(), Type: m.kind, Err: err}
		}
	}
	return &types.CustomError{
		Code:    fiber.StatusInternalServerError,
		Message: err.Error(),
		Type:    fallbackType,
		Err:     err,
	}
}

// ErrorHandler renders every returned error in the common error envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	var fe *fiber.Error
	var ce *types.CustomError
	switch {
	case errors.As(err, &ce):
		code, message, errorType = ce.Code, ce.Message, ce.Type
	case errors.As(err, &fe):
		code, message = fe.Code, fe.Message
	}

	return utils.ErrorResponse(c, message, code, errorType)
}

// NotFound is the catch-all handler for unmatched routes.
func NotFound(c *fiber.Ctx) error {
	return utils.NotFoundResponse(c, fmt.Sprintf("[404] Resource Not Found: %s", c.Path()))
}

package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/wpq-drafts/internal/types"
)

// APIVersion is the version served when the request names none.
const APIVersion = "1.0.0"

// VersionLocal is the fiber.Ctx locals key holding the requested version.
const VersionLocal = "apiVersion"

// VersionMiddleware parses the X-Api-Version header and stores it in context
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get("X-Api-Version", APIVersion)

		// Support version aliases
		switch version {
		case "1", "1.0":
			version = APIVersion
		}
		if version != APIVersion {
			return &types.CustomError{
				Code:    fiber.StatusBadRequest,
				Message: "unsupported api version " + version,
				Type:    "version",
			}
		}

		c.Locals(VersionLocal, version)
		c.Set("X-Api-Version", version)
		return c.Next()
	}
}

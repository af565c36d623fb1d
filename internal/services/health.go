package services

import (
	"fmt"

	"github.com/localnerve/wpq-drafts/internal/config"
	"github.com/localnerve/wpq-drafts/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Storage      string            `json:"storage"`
	Authorizer   string            `json:"authorizer"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(component, message string, err error) {
	r.Status = "unhealthy"
	r.Details[component+"_error"] = err.Error()
	if r.ErrorMessage == "" {
		r.ErrorMessage = fmt.Sprintf("%s: %v", message, err)
	} else {
		r.ErrorMessage += fmt.Sprintf("; %s: %v", message, err)
	}
}

// HealthCheck checks both database pools and the Authorizer. userDB may be
// nil when only the application pool is open.
func HealthCheck(cfg *config.Config, appDB, userDB *gorm.DB, log logrus.FieldLogger) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	if err := pingDB(appDB); err != nil {
		result.Database = "unreachable"
		result.fail("database", "Database ping failed", err)
		log.WithError(err).Warn("Health check failed - database ping")
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBAppDatabase
	}

	if userDB != nil {
		if err := pingDB(userDB); err != nil {
			result.Storage = "unreachable"
			result.fail("storage", "Draft storage ping failed", err)
			log.WithError(err).Warn("Health check failed - draft storage ping")
		} else {
			result.Storage = "ok"
		}
	}

	if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
		result.Authorizer = "unreachable"
		result.fail("authorizer", "Authorizer ping failed", err)
		log.WithError(err).Warn("Health check failed - authorizer ping")
	} else {
		result.Authorizer = "ok"
		result.Details["authorizer_url"] = cfg.AuthzURL
	}

	if result.Status == "healthy" {
		log.Debug("Health check passed - all systems operational")
	}

	return result
}

func pingDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

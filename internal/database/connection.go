// connection.go
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

package database

import (
	"fmt"
	"net"
	"strings"
	"time"

	glebarez "github.com/glebarez/sqlite"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/localnerve/wpq-drafts/internal/config"
	"github.com/localnerve/wpq-drafts/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	sqlite3 "gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// credentials selects which account a connection uses.
type credentials struct {
	user     string
	password string
	limit    int
	label    string
}

// Connect establishes the application database connection based on the configured DB_TYPE.
// Records and attachments are served through it.
func Connect(cfg *config.Config, log logrus.FieldLogger) (*gorm.DB, error) {
	return open(cfg, log, credentials{
		user:     cfg.DBAppUser,
		password: cfg.DBAppPassword,
		limit:    cfg.DBAppConnectionLimit,
		label:    "app",
	})
}

// ConnectUser establishes a user database connection (with different credentials).
// Per-user draft storage goes through it.
func ConnectUser(cfg *config.Config, log logrus.FieldLogger) (*gorm.DB, error) {
	return open(cfg, log, credentials{
		user:     cfg.DBUser,
		password: cfg.DBPassword,
		limit:    cfg.DBConnectionLimit,
		label:    "user",
	})
}

// Dialector builds the GORM dialector for cfg.DBType.
func Dialector(cfg *config.Config, user, password string) (gorm.Dialector, error) {
	switch cfg.DBType {
	case "mysql", "mariadb":
		dsn := gomysql.NewConfig()
		dsn.User = user
		dsn.Passwd = password
		dsn.Net = "tcp"
		dsn.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
		dsn.DBName = cfg.DBAppDatabase
		dsn.ParseTime = true
		dsn.Loc = time.UTC
		dsn.Params = map[string]string{"charset": "utf8mb4"}
		return mysql.Open(dsn.FormatDSN()), nil

	case "postgres", "postgresql":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost,
			user,
			password,
			cfg.DBAppDatabase,
			cfg.DBPort,
		)
		return postgres.Open(dsn), nil

	case "sqlite":
		// Pure Go driver; DBAppDatabase is the file path
		return glebarez.Open(cfg.DBAppDatabase), nil

	case "sqlite3":
		// cgo driver, same file path semantics
		return sqlite3.Open(cfg.DBAppDatabase), nil

	case "sqlserver", "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s?database=%s",
			user,
			password,
			net.JoinHostPort(cfg.DBHost, cfg.DBPort),
			cfg.DBAppDatabase,
		)
		return sqlserver.Open(dsn), nil
	}

	return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
}

func open(cfg *config.Config, log logrus.FieldLogger, creds credentials) (*gorm.DB, error) {
	dialector, err := Dialector(cfg, creds.user, creds.password)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		// Dialect constraint errors surface as gorm.ErrDuplicatedKey and friends
		TranslateError: true,
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  LogLevel(cfg.DBLogLevel),
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", creds.label, err)
	}

	// Get underlying SQL DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	limit := max(creds.limit, 1)
	sqlDB.SetMaxOpenConns(limit)
	// An in-memory SQLite database lives only as long as one connection does
	sqlDB.SetMaxIdleConns(max(1, limit/2))

	log.WithFields(logrus.Fields{
		"type":     cfg.DBType,
		"database": cfg.DBAppDatabase,
		"pool":     creds.label,
	}).Info("connected to database")

	return db, nil
}

// LogLevel maps DB_LOG_LEVEL to the GORM logger level. Unknown values mean warn.
func LogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	}
	return logger.Warn
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.UserStorageItem{},
		&models.WPQRecord{},
		&models.Attachment{},
	)
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

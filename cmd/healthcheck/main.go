// main.go
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

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/localnerve/wpq-drafts/internal/config"
	"github.com/localnerve/wpq-drafts/internal/database"
	"github.com/localnerve/wpq-drafts/internal/logging"
	"github.com/localnerve/wpq-drafts/internal/services"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Logs go to stderr; stdout carries the result
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	// Connect to database (app pool)
	appDB, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(appDB)

	// Connect to database (draft storage pool)
	var userDB *gorm.DB
	if !cfg.IsSQLite() {
		userDB, err = database.ConnectUser(cfg, log)
		if err != nil {
			log.Fatalf("Failed to connect to user database: %v", err)
		}
		defer database.Close(userDB)
	}

	// Perform health check
	result := services.HealthCheck(cfg, appDB, userDB, log)

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	// Exit with appropriate code
	if result.Status != "healthy" {
		os.Exit(1)
	}
	os.Exit(0)
}

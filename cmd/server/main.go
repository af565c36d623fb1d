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
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/wpq-drafts/internal/config"
	"github.com/localnerve/wpq-drafts/internal/database"
	"github.com/localnerve/wpq-drafts/internal/draft"
	"github.com/localnerve/wpq-drafts/internal/handlers"
	"github.com/localnerve/wpq-drafts/internal/logging"
	"github.com/localnerve/wpq-drafts/internal/middleware"
	"github.com/localnerve/wpq-drafts/internal/previews"
	"github.com/localnerve/wpq-drafts/internal/services"
	"github.com/localnerve/wpq-drafts/internal/store"
	"github.com/sirupsen/logrus"

	_ "github.com/localnerve/wpq-drafts/docs/api" // Swagger docs
)

// @title WPQ Drafts API
// @version 1.0.0
// @description Draft and record service for welder performance qualification certificates
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/wpq-drafts
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	// Connect to database (app pool)
	appDB, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to app database: %v", err)
	}
	defer database.Close(appDB)

	// Run auto-migrations
	if err := database.AutoMigrate(appDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Connect to database (draft storage pool)
	userDB := appDB
	if !cfg.IsSQLite() {
		userDB, err = database.ConnectUser(cfg, log)
		if err != nil {
			log.Fatalf("Failed to connect to user database: %v", err)
		}
		defer database.Close(userDB)
	}

	uploads := previews.NewRegistry(cfg.MaxUploadBytes)
	drafts := draft.NewManager(
		store.DraftStoreFactory(userDB, cfg.StoreTimeout),
		log,
		draft.WithRevoker(uploads),
	)
	authz := services.NewAuthorizer(cfg, log)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    cfg.MaxUploadBytes + 64<<10,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New(logging.ServiceName)
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Create handlers
	draftHandler := &handlers.DraftHandler{DB: appDB, Drafts: drafts, Previews: uploads, Log: log}
	recordsHandler := &handlers.RecordsHandler{DB: appDB, Log: log}
	authUser := middleware.AuthUser(authz)

	// Draft routes (user authentication)
	d := api.Group("/draft", authUser)
	d.Get("/", draftHandler.GetDraft)
	d.Delete("/", draftHandler.ResetDraft)
	d.Post("/continuity", draftHandler.AddContinuityEntry)
	d.Patch("/continuity/:id", draftHandler.UpdateContinuityEntry)
	d.Delete("/continuity/:id", draftHandler.RemoveContinuityEntry)
	d.Put("/form-no", draftHandler.SetFormNo)
	d.Post("/files/:target", draftHandler.UploadFile)
	d.Delete("/files/:target", draftHandler.RemoveFile)
	d.Get("/validate/:section", draftHandler.ValidateSection)
	d.Post("/submit", draftHandler.Submit)
	d.Patch("/:section", draftHandler.UpdateSection)

	api.Get("/previews/:id", authUser, draftHandler.GetPreview)

	// Record routes (user authentication, admin for deletion)
	api.Get("/records", authUser, recordsHandler.SearchRecords)
	api.Get("/records/:id", authUser, recordsHandler.GetRecord)
	api.Get("/records/:id/certificate", authUser, recordsHandler.GetCertificate)
	api.Delete("/records/:id", middleware.AuthAdmin(authz), recordsHandler.DeleteRecord)
	api.Get("/attachments/:id", authUser, recordsHandler.GetAttachment)

	// 404 handler
	app.Use(handlers.NotFound)

	log.Info("Authorizer will be initialized on first authenticated request")

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	log.WithField("port", cfg.Port).Info("Starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Info("Server stopped")
}

package testenv

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/localnerve/wpq-drafts/data"
	"github.com/localnerve/wpq-drafts/internal/config"
	"github.com/localnerve/wpq-drafts/internal/database"
	"github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	dbNetworkAlias   = "db"
	authzNetworkName = "authorizer"
)

// Environment is a running Postgres, and optionally an Authorizer, on a private network.
type Environment struct {
	Network             *testcontainers.DockerNetwork
	DBContainer         testcontainers.Container
	AuthorizerContainer testcontainers.Container

	// Config points at the mapped host ports.
	Config *config.Config
}

// Options selects what Start brings up.
type Options struct {
	WithAuthorizer bool
}

// Terminate stops every container that was started and removes the network.
func (e *Environment) Terminate(ctx context.Context, log logrus.FieldLogger) {
	if e.AuthorizerContainer != nil {
		if err := e.AuthorizerContainer.Terminate(ctx); err != nil {
			log.WithError(err).Warn("failed to terminate authorizer")
		}
	}
	if e.DBContainer != nil {
		if err := e.DBContainer.Terminate(ctx); err != nil {
			log.WithError(err).Warn("failed to terminate database")
		}
	}
	if e.Network != nil {
		if err := e.Network.Remove(ctx); err != nil {
			log.WithError(err).Warn("failed to remove network")
		}
	}
}

// Start launches the containers, migrates the schema and creates the
// restricted draft storage account. On error everything started so far is
// terminated.
func Start(ctx context.Context, log logrus.FieldLogger, opts Options) (*Environment, error) {
	env := &Environment{}
	cfg := &config.Config{
		DBType:               "postgres",
		DBAppDatabase:        getEnv("DB_APP_DATABASE", "wpq"),
		DBAppUser:            getEnv("DB_APP_USER", "wpq_app"),
		DBAppPassword:        getEnv("DB_APP_PASSWORD", "wpq_app_password"),
		DBAppConnectionLimit: 4,
		DBUser:               getEnv("DB_USER", "wpq_drafts"),
		DBPassword:           getEnv("DB_PASSWORD", "wpq_drafts_password"),
		DBConnectionLimit:    4,
		DBLogLevel:           "silent",
		AuthzClientID:        getEnv("AUTHZ_CLIENT_ID", "wpq-test-client"),
		MaxUploadBytes:       2 << 20,
	}
	env.Config = cfg

	fail := func(err error, msg string) (*Environment, error) {
		env.Terminate(context.Background(), log)
		return nil, fmt.Errorf("%s: %w", msg, err)
	}

	nw, err := network.New(ctx)
	if err != nil {
		return fail(err, "failed to create network")
	}
	env.Network = nw

	tcpDBPort, err := nat.NewPort("tcp", "5432")
	if err != nil {
		return fail(err, "failed to create database port")
	}
	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        getEnv("DB_IMAGE", "postgres:17-alpine"),
			ExposedPorts: []string{string(tcpDBPort)},
			Env: map[string]string{
				"POSTGRES_PASSWORD": cfg.DBAppPassword,
				"POSTGRES_USER":     cfg.DBAppUser,
				"POSTGRES_DB":       cfg.DBAppDatabase,
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort(tcpDBPort),
			).WithDeadline(60 * time.Second),
			Networks: []string{nw.Name},
			NetworkAliases: map[string][]string{
				nw.Name: {dbNetworkAlias},
			},
		},
		Started: true,
	})
	if err != nil {
		return fail(err, "failed to start database")
	}
	env.DBContainer = dbContainer

	dbHost, err := dbContainer.Host(ctx)
	if err != nil {
		return fail(err, "failed to get database host")
	}
	dbPort, err := dbContainer.MappedPort(ctx, tcpDBPort)
	if err != nil {
		return fail(err, "failed to get database port")
	}
	cfg.DBHost = dbHost
	cfg.DBPort = dbPort.Port()

	if err := initDatabase(cfg, log); err != nil {
		return fail(err, "failed to initialize database")
	}

	if opts.WithAuthorizer {
		if err := env.startAuthorizer(ctx); err != nil {
			return fail(err, "failed to start authorizer")
		}
	} else {
		cfg.AuthzURL = "http://authorizer.invalid"
	}

	log.WithFields(logrus.Fields{
		"db_host": cfg.DBHost,
		"db_port": cfg.DBPort,
		"authz":   cfg.AuthzURL,
	}).Info("test environment started")
	return env, nil
}

func initDatabase(cfg *config.Config, log logrus.FieldLogger) error {
	db, err := database.Connect(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	stmts, err := data.PrivilegeStatements(cfg.DBType, data.Account{
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBAppDatabase,
	})
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("%w: when executing > %s", err, stmt)
		}
	}
	return nil
}

func (e *Environment) startAuthorizer(ctx context.Context) error {
	cfg := e.Config
	tcpAuthzPort, err := nat.NewPort("tcp", "8080")
	if err != nil {
		return err
	}
	dbURL := fmt.Sprintf("postgres://%s:%s@%s:5432/%s?sslmode=disable",
		cfg.DBAppUser, cfg.DBAppPassword, dbNetworkAlias, cfg.DBAppDatabase)

	authz, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        getEnv("AUTHZ_IMAGE", "lakhansamani/authorizer:latest"),
			ExposedPorts: []string{string(tcpAuthzPort)},
			Env: map[string]string{
				"ENV":           "production",
				"CLIENT_ID":     cfg.AuthzClientID,
				"PORT":          tcpAuthzPort.Port(),
				"DATABASE_TYPE": "postgres",
				"DATABASE_URL":  dbURL,
				"ADMIN_SECRET":  getEnv("AUTHZ_ADMIN_SECRET", "wpq-admin-secret"),
				"ROLES":         "admin,user",
				"DEFAULT_ROLES": "user",
			},
			WaitingFor: wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(30 * time.Second),
			Networks:   []string{e.Network.Name},
			NetworkAliases: map[string][]string{
				e.Network.Name: {authzNetworkName},
			},
		},
		Started: true,
	})
	if err != nil {
		return err
	}
	e.AuthorizerContainer = authz

	host, err := authz.Host(ctx)
	if err != nil {
		return err
	}
	port, err := authz.MappedPort(ctx, tcpAuthzPort)
	if err != nil {
		return err
	}
	cfg.AuthzURL = fmt.Sprintf("http://%s:%s", host, port.Port())
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

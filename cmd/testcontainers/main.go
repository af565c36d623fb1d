package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/wpq-drafts/internal/logging"
	"github.com/localnerve/wpq-drafts/internal/testenv"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var noAuthz bool
	flag.BoolVar(&noAuthz, "no-authorizer", false, "start the database only")
	flag.Parse()

	usage := `
Run the wpq-drafts testcontainers with the environment variables from the .env file.
Prints the environment the service needs to connect to them.

Usage:

testcontainers [-h] [-no-authorizer] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to the .env file

example
  testcontainers -f /path/to/something/.env
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	log := logging.New(os.Getenv("LOG_LEVEL"), "text", os.Stderr)

	if envFilename != "" {
		log.Infof("Loading environment variables from %s", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	} else {
		log.Info("No environment file specified, using current environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	env, err := testenv.Start(ctx, log, testenv.Options{WithAuthorizer: !noAuthz})
	if err != nil {
		log.Fatalf("Failed to create test containers: %v", err)
	}

	cfg := env.Config
	fmt.Printf("DB_TYPE=%s\n", cfg.DBType)
	fmt.Printf("DB_HOST=%s\n", cfg.DBHost)
	fmt.Printf("DB_PORT=%s\n", cfg.DBPort)
	fmt.Printf("DB_APP_DATABASE=%s\n", cfg.DBAppDatabase)
	fmt.Printf("DB_APP_USER=%s\n", cfg.DBAppUser)
	fmt.Printf("DB_APP_PASSWORD=%s\n", cfg.DBAppPassword)
	fmt.Printf("DB_USER=%s\n", cfg.DBUser)
	fmt.Printf("DB_PASSWORD=%s\n", cfg.DBPassword)
	fmt.Printf("AUTHZ_URL=%s\n", cfg.AuthzURL)
	fmt.Printf("AUTHZ_CLIENT_ID=%s\n", cfg.AuthzClientID)

	<-ctx.Done()
	log.Info("Received signal, terminating test containers...")
	env.Terminate(context.Background(), log)
}

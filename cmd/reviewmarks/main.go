package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/reviewmarks/internal/cli"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	os.Exit(cli.Run())
}

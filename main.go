package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sapogames/roomkit/logger"
)

func main() {
	// Initialize logger
	logger.Init()

	// Local overrides for backend credentials
	_ = godotenv.Load()

	cobra.CheckErr(newCmd().Execute())
}

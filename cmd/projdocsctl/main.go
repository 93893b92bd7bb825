package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"projdocs/cmd/projdocsctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

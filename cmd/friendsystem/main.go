package main

import (
	"log/slog"
	"os"

	"github.com/ferdiebergado/friendsystem/cmd/friendsystem/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		slog.Error("Command failed.", "reason", err)
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/G-Research/rainbow/cmd/rainbow/cmd"
	"github.com/G-Research/rainbow/internal/common/logging"
)

func main() {
	logging.ConfigureCommandLineLogging()
	os.Exit(cmd.Execute())
}

// Command originserver runs the example application over the origin
// HTTP server. It is glue, not part of the reusable core in
// internal/http11 and internal/httpserver.
package main

import (
	"bufio"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wattlabs/originhttp/examples/exampleapp"
	"github.com/wattlabs/originhttp/internal/httpserver"
)

const port = 8080

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "originserver: failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	handle, err := httpserver.Serve(port, exampleapp.Handler{}, httpserver.WithLogger(logger))
	if err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
	defer handle.Close()

	logger.Info("listening", zap.Stringer("addr", handle.Addr()))

	// Block until an operator sends a newline, mirroring the reference
	// implementation's stdin readline.
	bufio.NewReader(os.Stdin).ReadString('\n')
}

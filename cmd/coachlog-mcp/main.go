package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/coachlog/internal/mcp"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "CoachLog server URL (e.g. https://coachlog.tail1234.ts.net)")
	token := flag.String("token", os.Getenv("COACHLOG_TOKEN"), "bearer token (default $COACHLOG_TOKEN); optional on a tailnet")
	flag.Parse()

	// stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: coachlog-mcp -server <URL> [-token T]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	client := mcp.NewHTTPClient(*serverURL, *token)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err := client.Ping(ctx)
	cancel()
	if err != nil {
		log.Error("server check failed", "server", *serverURL, "error", err)
		os.Exit(1)
	}

	s := mcp.New(client, Version, log)
	log.Info("serving MCP over stdio", "server", *serverURL)
	if err := server.ServeStdio(s); err != nil {
		log.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}

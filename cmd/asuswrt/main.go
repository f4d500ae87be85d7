package main

import (
	"github.com/rileyhilliard/asuswrt/internal/cli"
	"github.com/rileyhilliard/asuswrt/pkg/connection"
)

// Version info set via ldflags at build time:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2024-01-01" ./cmd/asuswrt
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	defer connection.CloseAgent()

	cli.SetVersionInfo(version, commit, date)
	cli.Execute()
}

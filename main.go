package main

import (
	"github.com/daechang/placetalk/internal/server"
)

func main() {
	// Create a new server instance and run it until a shutdown signal.
	s := server.New()
	s.Start()
}

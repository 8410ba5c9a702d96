package main

import (
	"github.com/daechang/placetalk/cmd/placetalk/cmd"
)

func main() {
	cmd.Execute()
}

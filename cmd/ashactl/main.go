package main

import (
	"context"

	"ashasphere/internal/cli"
)

func main() {
	cli.Main(context.Background())
}

package main

import (
	"fmt"
	"os"

	"github.com/MrSnakeDoc/promoavail/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ promoavail: %v\n", err)
		os.Exit(1)
	}
}

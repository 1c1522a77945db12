package main

import (
	"context"
	"fmt"
	"os"

	"github.com/savetide/backend/internal/bootstrap"
)

func main() {
	if err := bootstrap.Start(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "savetide: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/unixpariah/nh/pkg/errors"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		if code := errors.GetCode(err); code != errors.ErrUnknown {
			fmt.Fprintf(os.Stderr, "Run with -v for details (code: %s)\n", code)
		}
		os.Exit(1)
	}
}

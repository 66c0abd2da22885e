package main

import (
	"fmt"
	"os"

	appErrors "actbatch/internal/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		exitWithError(err)
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, appErrors.UserMessage(err))
	if appErrors.KindOf(err) == appErrors.Interrupted {
		os.Exit(130)
	}
	os.Exit(1)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/deploy-man/deploy-man/internal/cmdexec"
	"github.com/deploy-man/deploy-man/internal/creds"
	"github.com/deploy-man/deploy-man/internal/helm"
	"github.com/deploy-man/deploy-man/internal/kubectl"
	"github.com/deploy-man/deploy-man/internal/qualitygate"
)

var version = "dev"

func main() {
	// Create a context that cancels on interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	if err := ExecuteWithContext(ctx); err != nil {
		printError(err)
		os.Exit(1)
	}
}

// printError formats errors with clear separation between pipeline errors and
// the collaborator command output that caused them
func printError(err error) {
	var cmdErr *cmdexec.CommandError
	if errors.As(err, &cmdErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if cmdErr.Stderr != "" {
			fmt.Fprintf(os.Stderr, "\nCommand stderr:\n  %s\n", cmdErr.Stderr)
		}
		return
	}

	var notFound *creds.NotFoundError
	if errors.As(err, &notFound) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "\nSet DEPLOYMAN_CRED_<ID>_USERNAME and DEPLOYMAN_CRED_<ID>_SECRET for this credential.\n")
		return
	}

	var gateErr *qualitygate.GateError
	if errors.As(err, &gateErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	var waitErr *kubectl.WaitTimeoutError
	if errors.As(err, &waitErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "\nThe release was deployed but did not become ready in time.\n")
		return
	}

	var resErr *helm.ResolutionError
	if errors.As(err, &resErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "\nCheck cluster connectivity and namespace permissions.\n")
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

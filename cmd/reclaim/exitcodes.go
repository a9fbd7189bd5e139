package main

import (
	"errors"
	"strings"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK             = 0
	exitFailure        = 1
	exitUsage          = 2
	exitRecordFailures = 3
)

var errRecordFailures = errors.New("run completed with failed records")

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	// cobra reports unknown subcommands and bad positional args as plain errors
	if strings.HasPrefix(err.Error(), "unknown command") {
		return exitUsage
	}
	return exitFailure
}

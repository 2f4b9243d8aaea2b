/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"log"
	"time"
)

const logDate string = `2006-01-02T15:04:05.000-07:00`

var (
	ErrConfig    = errors.New("configuration error")
	ErrTransport = errors.New("transport error")
	ErrParse     = errors.New("parse error")
	ErrData      = errors.New("data error")
)

// QuotaError reports a mailbox whose usage could not be read. It matches
// ErrData as well as the underlying cause.
type QuotaError struct {
	Mailbox string
	Err     error
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%v: mailbox %q: %v", ErrData, e.Mailbox, e.Err)
}

func (e *QuotaError) Unwrap() []error {
	return []error{ErrData, e.Err}
}

var errNoQuota = errors.New("no quota usage reported")

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

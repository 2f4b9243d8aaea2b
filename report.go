package main

import (
	"errors"
	"fmt"
	"io"
)

// printReport writes one usage line per mailbox followed by the API status.
// Mailboxes with unreadable usage are still listed; their errors are
// returned together once the report is complete.
func printReport(w io.Writer, resp *ListResponse) error {
	var errs []error

	for _, m := range resp.Data {
		used := "unknown"

		n, err := m.usedBytes()
		if err != nil {
			errs = append(errs, err)
		} else {
			used = humanReadableSize(n)
		}

		if _, err := fmt.Fprintf(w, "Name:%s, Used: %s\n", m.Name, used); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "Status: %s\n", resp.Status); err != nil {
		return err
	}

	return errors.Join(errs...)
}

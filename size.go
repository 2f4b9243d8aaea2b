/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
)

// humanReadableSize formats bytes in binary units with one truncated
// decimal, so output never rounds up into the next unit.
func humanReadableSize(bytes uint64) string {
	const unit uint64 = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := unit, 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%d.%d %ciB",
		bytes/div,
		(bytes%div)*10/div,
		"KMGTPE"[exp])
}

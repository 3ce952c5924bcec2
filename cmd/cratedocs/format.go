package main

import (
	"fmt"
	"time"
)

// FormatKB formats a byte count as kilobytes with one decimal.
func FormatKB(bytes int) string {
	return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
}

// FormatSeconds formats a duration as seconds with two decimals.
func FormatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// FormatCost formats a USD amount with six decimals.
func FormatCost(usd float64) string {
	return fmt.Sprintf("$%.6f", usd)
}

// FormatVersion returns "N/A" for an unknown version.
func FormatVersion(version string) string {
	if version == "" {
		return "N/A"
	}
	return version
}

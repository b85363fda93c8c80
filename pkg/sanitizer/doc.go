// Package sanitizer normalizes user input before it is validated or stored.
package sanitizer

// Package ui is the Bubble Tea terminal client. It renders store snapshots
// and triggers store actions from key presses; it holds no domain state of
// its own.
package ui

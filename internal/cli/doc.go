// Package cli parses the command line of dockpipe and runs the selected
// command.
package cli

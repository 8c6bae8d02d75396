// Package clipboard reads and writes blueprint strings on the system clipboard.
//
// The system clipboard is initialised on first use, not at startup, so runs that never
// touch it work without a display. On Linux, text written by a process is served by that
// process: once landfiller exits the clipboard may be empty again unless a clipboard
// manager has taken a copy.
package clipboard

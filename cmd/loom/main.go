// Command loom serves the guestbook demo on the loom engine and manages
// its session store.
//
// Usage:
//
//	loom serve --addr :8080
//	loom migrate
//	loom routes
//
// Settings are read from --config or from loom/settings.yaml in the XDG
// config directories.
package main

func main() {
	Execute()
}

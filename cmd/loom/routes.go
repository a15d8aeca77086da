package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/loom"
	"github.com/dmitrymomot/loom/cmd/loom/guestbook"
	"github.com/dmitrymomot/loom/pkg/coding"
	"github.com/dmitrymomot/loom/pkg/logger"
)

// NewRoutesCmd creates the routes command.
func NewRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List page classes, mounts and router endpoints",
		RunE:  runRoutesCmd,
	}
}

func runRoutesCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}
	// Listing needs no real stores.
	cfg.Session.Driver = DriverMemory
	cfg.Redis.URL = ""

	ctx := context.Background()
	log := logger.NewNope()
	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close(ctx) }()

	msgs, err := guestbook.Messages()
	if err != nil {
		return err
	}
	app := buildApp(cfg, log, b, guestbook.NewBook(), msgs)
	return printRoutes(cmd.OutOrStdout(), app)
}

// printRoutes writes the page classes with their URL and the router endpoints.
func printRoutes(out io.Writer, app *loom.App) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "PAGE\tURL")
	for _, class := range app.Pages().Classes() {
		u := "/?" + coding.BookmarkableParam + "=" + coding.Separator + class
		if m, ok := app.Coding().MountFor(class); ok {
			u = m.Path
		}
		fmt.Fprintf(w, "%s\t%s\n", class, u)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "METHOD\tROUTE")
	err := chi.Walk(app.Router(), func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		fmt.Fprintf(w, "%s\t%s\n", method, route)
		return nil
	})
	if err != nil {
		return err
	}
	return w.Flush()
}

package main

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"
)

func newAuthCmd(a *app) *cobra.Command {
	var noBrowser bool

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize as a user through the browser and cache the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, err := a.newCatalogClient(nil)
			if err != nil {
				return err
			}
			defer store.Close()

			open := openBrowser
			if noBrowser {
				open = nil
			}

			tok, err := client.AuthorizeWithUser(cmd.Context(), open)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Access token obtained, expires at %s\n", tok.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "only print the authorization URL")
	return cmd
}

func openBrowser(url string) error {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.Command("open", url)
	case "windows":
		c = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		c = exec.Command("xdg-open", url)
	}
	return c.Start()
}

package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var adminAddr string

var resetKeysCmd = &cobra.Command{
	Use:   "reset-keys",
	Short: "Re-enable all API keys on a running instance",
	Run: func(cmd *cobra.Command, args []string) {
		postAdmin("/keys/reset")
	},
}

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Drop all cached LLM results on a running instance",
	Run: func(cmd *cobra.Command, args []string) {
		postAdmin("/cache/clear")
	},
}

func init() {
	for _, c := range []*cobra.Command{resetKeysCmd, clearCacheCmd} {
		c.Flags().StringVar(&adminAddr, "addr", "http://localhost:8080", "admin server address")
		rootCmd.AddCommand(c)
	}
}

// postAdmin hits an admin endpoint on the running service. These
// operations act on in-process state, so they go through HTTP instead of
// touching storage directly.
func postAdmin(path string) {
	resp, err := http.Post(adminAddr+path, "application/json", nil)
	if err != nil {
		fmt.Printf("Request failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed: %s: %s\n", resp.Status, body)
		os.Exit(1)
	}
	fmt.Printf("%s", body)
}

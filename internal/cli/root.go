// Package cli implements the tracectl commands for querying a running engine.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var engineURL string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "tracectl",
	Short: "Query a running contact engine",
	Long:  "tracectl talks to the engine's HTTP API: timestamps, contact snapshots, deltas, trajectories, and cache administration.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&engineURL, "engine-url", "e", "", "Engine base URL (default: $TRACEMAP_ENGINE_URL or http://localhost:8080)")
}

func baseURL() string {
	if engineURL != "" {
		return engineURL
	}
	if env := os.Getenv("TRACEMAP_ENGINE_URL"); env != "" {
		return env
	}
	return "http://localhost:8080"
}

func getJSON(ctx context.Context, path string, out any) error {
	return doJSON(ctx, http.MethodGet, path, out)
}

func postJSON(ctx context.Context, path string, out any) error {
	return doJSON(ctx, http.MethodPost, path, out)
}

func doJSON(ctx context.Context, method, path string, out any) error {
	client := &http.Client{Timeout: 30 * time.Second}

	req, err := http.NewRequestWithContext(ctx, method, baseURL()+path, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("engine returned %d: %s", resp.StatusCode, string(body))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

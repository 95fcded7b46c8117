package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/zephyr/internal/build"
)

// NewEmitCmd returns the "emit" subcommand that posts an event to a running
// daemon.
func NewEmitCmd() *cobra.Command {
	var (
		serverURL string
		mode      string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "emit <event-type> [payload-json]",
		Short: "Emit an event through a running zephyr daemon",
		Long: `Emit an event by posting it to a running zephyr daemon.

Examples:
  zephyr emit order.created '{"order_id": 42}'
  zephyr emit --mode async order.created '{"order_id": 42}'
  zephyr emit --server http://zephyr.internal:8790 cache.invalidated`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload json.RawMessage
			if len(args) == 2 {
				if !json.Valid([]byte(args[1])) {
					return fmt.Errorf("payload is not valid JSON: %s", args[1])
				}
				payload = json.RawMessage(args[1])
			}
			return runEmit(cmd.Context(), serverURL, args[0], payload, mode, timeout)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "http://localhost:8790", "Base URL of the zephyr daemon")
	cmd.Flags().StringVar(&mode, "mode", "sync", "Dispatch mode: sync waits for outcomes, async returns immediately")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	return cmd
}

func runEmit(ctx context.Context, serverURL, eventType string, payload json.RawMessage, mode string, timeout time.Duration) error {
	body, err := json.Marshal(map[string]any{
		"type":    eventType,
		"payload": payload,
		"mode":    mode,
	})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := strings.TrimSuffix(serverURL, "/") + "/api/events"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", build.UserAgent())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting to %s: %w", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("daemon returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, respBody, "", "  "); err != nil {
		fmt.Println(strings.TrimSpace(string(respBody)))
		return nil
	}
	fmt.Println(pretty.String())
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/zephyr"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadFile_FormatEquivalence(t *testing.T) {
	yamlSrc := `
webhooks:
  - name: billing
    url: https://hooks.example.com/billing
    method: PUT
    timeout: 10s
    max_retries: 3
    events: [order.created]
queued:
  - name: reports
    queue: reporting
    task: build_report
    events: [report.requested]
sources:
  - name: heartbeat
    every: 30s
    event_type: system.heartbeat
`
	jsonSrc := `{
  "webhooks": [
    {"name": "billing", "url": "https://hooks.example.com/billing", "method": "PUT", "timeout": "10s", "max_retries": 3, "events": ["order.created"]}
  ],
  "queued": [
    {"name": "reports", "queue": "reporting", "task": "build_report", "events": ["report.requested"]}
  ],
  "sources": [
    {"name": "heartbeat", "every": "30s", "event_type": "system.heartbeat"}
  ]
}`
	tomlSrc := `
[[webhooks]]
name = "billing"
url = "https://hooks.example.com/billing"
method = "PUT"
timeout = "10s"
max_retries = 3
events = ["order.created"]

[[queued]]
name = "reports"
queue = "reporting"
task = "build_report"
events = ["report.requested"]

[[sources]]
name = "heartbeat"
every = "30s"
event_type = "system.heartbeat"
`

	files := map[string]string{
		"zephyr.yaml": yamlSrc,
		"zephyr.json": jsonSrc,
		"zephyr.toml": tomlSrc,
	}

	for name, src := range files {
		t.Run(name, func(t *testing.T) {
			cfg, err := LoadFile(writeFile(t, name, src))
			require.NoError(t, err)

			require.Len(t, cfg.Webhooks, 1)
			assert.Equal(t, "billing", cfg.Webhooks[0].Name)
			assert.Equal(t, "https://hooks.example.com/billing", cfg.Webhooks[0].URL)
			assert.Equal(t, "PUT", cfg.Webhooks[0].Method)
			assert.Equal(t, "10s", cfg.Webhooks[0].Timeout)
			assert.Equal(t, 3, cfg.Webhooks[0].MaxRetries)
			assert.Equal(t, []string{"order.created"}, cfg.Webhooks[0].Events)

			require.Len(t, cfg.Queued, 1)
			assert.Equal(t, "reporting", cfg.Queued[0].Queue)
			assert.Equal(t, "build_report", cfg.Queued[0].Task)

			require.Len(t, cfg.Sources, 1)
			assert.Equal(t, "heartbeat", cfg.Sources[0].Name)
			assert.Equal(t, "30s", cfg.Sources[0].Every)
			assert.Equal(t, "system.heartbeat", cfg.Sources[0].EventType)
		})
	}
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, "zephyr.ini", "[webhooks]")

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config extension")
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "zephyr.yaml"))
	require.Error(t, err)
}

func TestFindConfigFile(t *testing.T) {
	t.Run("probes names in order", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "zephyr.toml"), []byte(""), 0600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "zephyr.json"), []byte("{}"), 0600))

		assert.Equal(t, filepath.Join(dir, "zephyr.json"), FindConfigFile(dir))
	})

	t.Run("falls through directories", func(t *testing.T) {
		empty := t.TempDir()
		dataDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, "zephyr.yaml"), []byte(""), 0600))

		assert.Equal(t, filepath.Join(dataDir, "zephyr.yaml"), FindConfigFile(empty, dataDir))
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, FindConfigFile(t.TempDir(), ""))
	})
}

func TestFileConfig_Descriptors(t *testing.T) {
	cfg := &FileConfig{
		Webhooks: []WebhookTarget{
			{
				Name:    "billing",
				URL:     "https://hooks.example.com/billing",
				Timeout: "15s",
				Events:  []string{"order.created", "order.paid"},
			},
			{
				URL:    "https://hooks.example.com/anon",
				Events: []string{"user.signup"},
			},
		},
		Queued: []QueuedTarget{
			{Name: "reports", Queue: "reporting", Task: "build_report", Events: []string{"report.requested"}},
		},
	}

	descriptors, err := cfg.Descriptors()
	require.NoError(t, err)
	require.Len(t, descriptors, 4)

	// A named target listing several events fans out with suffixed IDs.
	assert.Equal(t, "billing.order.created", descriptors[0].ID)
	assert.Equal(t, "order.created", descriptors[0].EventType)
	assert.Equal(t, zephyr.KindWebhook, descriptors[0].Kind)
	assert.Equal(t, 15*time.Second, descriptors[0].Webhook.Timeout)
	assert.Equal(t, "billing.order.paid", descriptors[1].ID)
	assert.Equal(t, "order.paid", descriptors[1].EventType)

	// Unnamed targets leave the ID for the registry to generate.
	assert.Empty(t, descriptors[2].ID)
	assert.Equal(t, "user.signup", descriptors[2].EventType)

	// Single-event named targets keep the bare name.
	assert.Equal(t, "reports", descriptors[3].ID)
	assert.Equal(t, zephyr.KindQueued, descriptors[3].Kind)
	assert.Equal(t, "reporting", descriptors[3].Queued.Queue)
	assert.Equal(t, "build_report", descriptors[3].Queued.Task)
}

func TestFileConfig_Descriptors_Validation(t *testing.T) {
	t.Run("webhook without events", func(t *testing.T) {
		cfg := &FileConfig{Webhooks: []WebhookTarget{{Name: "billing", URL: "https://x"}}}
		_, err := cfg.Descriptors()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no events listed")
	})

	t.Run("queued without events", func(t *testing.T) {
		cfg := &FileConfig{Queued: []QueuedTarget{{Queue: "q", Task: "t"}}}
		_, err := cfg.Descriptors()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no events listed")
	})

	t.Run("bad duration", func(t *testing.T) {
		cfg := &FileConfig{Webhooks: []WebhookTarget{{
			URL:     "https://x",
			Timeout: "not-a-duration",
			Events:  []string{"a"},
		}}}
		_, err := cfg.Descriptors()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid duration")
	})
}

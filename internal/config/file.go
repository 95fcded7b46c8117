package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/shaharia-lab/zephyr"
)

// FileConfig declares listeners and scheduled event sources. It is loaded
// from a YAML, JSON or TOML file, selected by extension.
type FileConfig struct {
	Webhooks []WebhookTarget   `json:"webhooks,omitempty" yaml:"webhooks,omitempty" toml:"webhooks,omitempty"`
	Queued   []QueuedTarget    `json:"queued,omitempty" yaml:"queued,omitempty" toml:"queued,omitempty"`
	Sources  []ScheduledSource `json:"sources,omitempty" yaml:"sources,omitempty" toml:"sources,omitempty"`
}

// WebhookTarget declares one webhook endpoint subscribed to one or more event
// types. Durations are Go duration strings ("10s", "500ms").
type WebhookTarget struct {
	Name        string            `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	URL         string            `json:"url" yaml:"url" toml:"url"`
	Method      string            `json:"method,omitempty" yaml:"method,omitempty" toml:"method,omitempty"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" toml:"headers,omitempty"`
	Timeout     string            `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout,omitempty"`
	MaxRetries  int               `json:"max_retries,omitempty" yaml:"max_retries,omitempty" toml:"max_retries,omitempty"`
	BackoffBase string            `json:"backoff_base,omitempty" yaml:"backoff_base,omitempty" toml:"backoff_base,omitempty"`
	MaxBackoff  string            `json:"max_backoff,omitempty" yaml:"max_backoff,omitempty" toml:"max_backoff,omitempty"`
	Events      []string          `json:"events" yaml:"events" toml:"events"`
}

// QueuedTarget declares one queue-backed task subscribed to one or more event
// types.
type QueuedTarget struct {
	Name   string   `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Queue  string   `json:"queue" yaml:"queue" toml:"queue"`
	Task   string   `json:"task" yaml:"task" toml:"task"`
	Events []string `json:"events" yaml:"events" toml:"events"`
}

// ScheduledSource declares an event emitted on a schedule. Exactly one of
// Cron (a cron expression) or Every (a duration string) must be set.
type ScheduledSource struct {
	Name      string `json:"name" yaml:"name" toml:"name"`
	Cron      string `json:"cron,omitempty" yaml:"cron,omitempty" toml:"cron,omitempty"`
	Every     string `json:"every,omitempty" yaml:"every,omitempty" toml:"every,omitempty"`
	EventType string `json:"event_type" yaml:"event_type" toml:"event_type"`
	Payload   any    `json:"payload,omitempty" yaml:"payload,omitempty" toml:"payload,omitempty"`
}

// configFileNames are probed in order by FindConfigFile.
var configFileNames = []string{"zephyr.yaml", "zephyr.yml", "zephyr.json", "zephyr.toml"}

// FindConfigFile probes each directory for a zephyr config file and returns
// the first match, or "" if none exists.
func FindConfigFile(dirs ...string) string {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		for _, name := range configFileNames {
			p := filepath.Join(dir, name)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p
			}
		}
	}
	return ""
}

// LoadFile reads a listener definition file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func LoadFile(path string) (*FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg FileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return &cfg, nil
}

// Descriptors expands the declared targets into listener descriptors, one per
// (target, event type) pair. Descriptor IDs derive from the target name: the
// name itself for a single event, name.eventType when a target lists several.
// Unnamed targets get generated IDs at registration.
func (f *FileConfig) Descriptors() ([]zephyr.Descriptor, error) {
	var out []zephyr.Descriptor

	for _, w := range f.Webhooks {
		if len(w.Events) == 0 {
			return nil, fmt.Errorf("webhook %q: no events listed", w.displayName())
		}
		timeout, err := parseOptionalDuration(w.Timeout)
		if err != nil {
			return nil, fmt.Errorf("webhook %q: timeout: %w", w.displayName(), err)
		}
		backoffBase, err := parseOptionalDuration(w.BackoffBase)
		if err != nil {
			return nil, fmt.Errorf("webhook %q: backoff_base: %w", w.displayName(), err)
		}
		maxBackoff, err := parseOptionalDuration(w.MaxBackoff)
		if err != nil {
			return nil, fmt.Errorf("webhook %q: max_backoff: %w", w.displayName(), err)
		}

		for _, eventType := range w.Events {
			d := zephyr.NewWebhookListener(eventType, zephyr.WebhookConfig{
				URL:         w.URL,
				Method:      w.Method,
				Headers:     w.Headers,
				Timeout:     timeout,
				MaxRetries:  w.MaxRetries,
				BackoffBase: backoffBase,
				MaxBackoff:  maxBackoff,
			})
			d.ID = listenerID(w.Name, eventType, len(w.Events) > 1)
			out = append(out, d)
		}
	}

	for _, q := range f.Queued {
		if len(q.Events) == 0 {
			return nil, fmt.Errorf("queued target %q: no events listed", q.displayName())
		}
		for _, eventType := range q.Events {
			d := zephyr.NewQueuedListener(eventType, zephyr.QueuedConfig{
				Queue: q.Queue,
				Task:  q.Task,
			})
			d.ID = listenerID(q.Name, eventType, len(q.Events) > 1)
			out = append(out, d)
		}
	}

	return out, nil
}

func (w WebhookTarget) displayName() string {
	if w.Name != "" {
		return w.Name
	}
	return w.URL
}

func (q QueuedTarget) displayName() string {
	if q.Name != "" {
		return q.Name
	}
	return q.Queue + "/" + q.Task
}

func listenerID(name, eventType string, multi bool) string {
	if name == "" {
		return ""
	}
	if multi {
		return name + "." + eventType
	}
	return name
}

func parseOptionalDuration(v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", v, err)
	}
	return d, nil
}

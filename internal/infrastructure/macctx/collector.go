// Package macctx collects macOS environment data injected into generation
// prompts: OS version, frontmost application, and running applications.
package macctx

import (
	"context"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/doeshing/osai-go/internal/domain"
	"github.com/doeshing/osai-go/internal/ports"
)

// Collector probes the system with short-lived subprocesses. Every probe is
// best-effort: a missing tool or denied permission yields an empty field,
// never an error.
type Collector struct {
	maxApps int
}

// NewCollector builds a collector.
func NewCollector() *Collector {
	return &Collector{maxApps: 15}
}

// Collect implements ports.ContextCollector.
func (c *Collector) Collect(ctx context.Context, _ domain.Config) (domain.ContextSnapshot, error) {
	snapshot := domain.ContextSnapshot{
		User:         os.Getenv("USER"),
		OSVersion:    c.osVersion(ctx),
		FrontmostApp: c.frontmostApp(ctx),
		RunningApps:  c.runningApps(ctx),
	}
	return snapshot, nil
}

func (c *Collector) osVersion(ctx context.Context) string {
	out := probe(ctx, "sw_vers", "--productVersion")
	if out == "" {
		return ""
	}
	return "macOS " + out
}

func (c *Collector) frontmostApp(ctx context.Context) string {
	return probe(ctx, "osascript", "-e",
		`tell application "System Events" to get name of first application process whose frontmost is true`)
}

func (c *Collector) runningApps(ctx context.Context) []string {
	out := probe(ctx, "osascript", "-e",
		`tell application "System Events" to get name of every application process whose background only is false`)
	if out == "" {
		return nil
	}
	var apps []string
	for _, name := range strings.Split(out, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		apps = append(apps, name)
	}
	sort.Strings(apps)
	if len(apps) > c.maxApps {
		apps = apps[:c.maxApps]
	}
	return apps
}

func probe(ctx context.Context, name string, args ...string) string {
	cctx, cancel := context.WithTimeout(ctx, domain.DefaultContextProbeTimeout)
	defer cancel()
	out, err := exec.CommandContext(cctx, name, args...).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

var _ ports.ContextCollector = (*Collector)(nil)

package bench

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hamed0406/safewarmer/internal/domain"
)

// DrillItem is the placeholder drill substitutes with each with_items entry.
const DrillItem = "{{ item }}"

// DrillPlan is a drill benchmark file.
type DrillPlan struct {
	Concurrency int         `yaml:"concurrency"`
	Base        string      `yaml:"base"`
	Iterations  int         `yaml:"iterations"`
	Rampup      int         `yaml:"rampup"`
	Plan        []DrillStep `yaml:"plan"`
}

type DrillStep struct {
	Name      string       `yaml:"name"`
	Request   DrillRequest `yaml:"request"`
	WithItems []string     `yaml:"with_items,omitempty"`
}

type DrillRequest struct {
	URL string `yaml:"url"`
}

type DrillOptions struct {
	Concurrency int
	Iterations  int
	Rampup      int
}

// NewDrillPlan requests every endpoint kind for every safe, in kind order.
func NewDrillPlan(base string, safes []domain.Safe, opts DrillOptions) DrillPlan {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Iterations < 1 {
		opts.Iterations = 1
	}
	items := make([]string, len(safes))
	for i, s := range safes {
		items[i] = string(s)
	}

	p := DrillPlan{
		Concurrency: opts.Concurrency,
		Base:        base,
		Iterations:  opts.Iterations,
		Rampup:      opts.Rampup,
		Plan:        make([]DrillStep, 0, len(domain.Kinds)),
	}
	for _, k := range domain.Kinds {
		p.Plan = append(p.Plan, DrillStep{
			Name:      "Fetch " + k.String(),
			Request:   DrillRequest{URL: k.Path(DrillItem)},
			WithItems: items,
		})
	}
	return p
}

func WriteDrillPlan(path string, p DrillPlan) error {
	b, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode drill plan: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, b, 0o644)
}

// DrillCommand is the shell command that runs plan with stats.
func DrillCommand(path string) string {
	return fmt.Sprintf("drill --benchmark %s --stats", shellQuote(path))
}

// shellQuote wraps s in single quotes for sh.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

const InstallDrill = "cargo install drill"

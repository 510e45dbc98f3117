package tools

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"
)

const versionTimeout = 5 * time.Second

var versionRe = regexp.MustCompile(`\d+\.\d+(?:\.\d+)*`)

// Tool is an external program a passing capture is usually handed to next.
// Nothing in a check depends on it being installed.
type Tool struct {
	Name    string
	Purpose string
	// VersionArgs are tried in order until one prints a version number.
	VersionArgs [][]string

	once   sync.Once
	status Status
}

// Status is the outcome of looking a Tool up on PATH.
type Status struct {
	Name      string
	Purpose   string
	Available bool
	Path      string
	Version   string
}

// Lookup resolves the tool on PATH and probes its version once; later
// calls return the cached status.
func (t *Tool) Lookup() Status {
	t.once.Do(func() {
		t.status = Status{Name: t.Name, Purpose: t.Purpose}
		path, err := exec.LookPath(t.Name)
		if err != nil {
			return
		}
		t.status.Available = true
		t.status.Path = path
		t.status.Version = probeVersion(path, t.VersionArgs)
	})
	return t.status
}

func probeVersion(path string, candidates [][]string) string {
	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()

	for _, args := range candidates {
		// some tools print their version and still exit non-zero
		out, _ := Output(ctx, path, args...)
		if v := versionRe.FindString(out); v != "" {
			return v
		}
	}
	return ""
}

// Checker reports on the downstream tools capcheck knows about.
type Checker struct {
	tools []*Tool
}

func NewChecker() *Checker {
	return &Checker{tools: []*Tool{
		{Name: "tshark", Purpose: "EAPOL cross-check (--tshark)", VersionArgs: [][]string{{"--version"}}},
		{Name: "hcxpcapngtool", Purpose: "convert to hashcat 22000", VersionArgs: [][]string{{"--version"}, {"-v"}}},
		{Name: "hashcat", Purpose: "offline cracking", VersionArgs: [][]string{{"--version"}}},
	}}
}

// InstallHint returns a platform-appropriate install message.
func InstallHint() string {
	return platformInstallHint()
}

func (c *Checker) CheckAll() []Status {
	out := make([]Status, len(c.tools))
	for i, t := range c.tools {
		out[i] = t.Lookup()
	}
	return out
}

// Missing lists the tools that are not on PATH.
func (c *Checker) Missing() []string {
	var missing []string
	for _, t := range c.tools {
		if !t.Lookup().Available {
			missing = append(missing, t.Name)
		}
	}
	return missing
}

// Available reports whether the named tool is known and installed.
func (c *Checker) Available(name string) bool {
	for _, t := range c.tools {
		if t.Name == name {
			return t.Lookup().Available
		}
	}
	return false
}

// FormatStatus renders one line per tool.
func FormatStatus(statuses []Status) string {
	var sb strings.Builder
	for _, s := range statuses {
		if !s.Available {
			fmt.Fprintf(&sb, " [-] %-16s %-10s %s\n", s.Name, "--", s.Purpose)
			continue
		}
		ver := s.Version
		if ver == "" {
			ver = "ok"
		}
		fmt.Fprintf(&sb, " [+] %-16s %-10s %s\n", s.Name, ver, s.Path)
	}
	return sb.String()
}

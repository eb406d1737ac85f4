// safety.go — allow-list gating for untrusted execution.
//
// A SafetyProfile is configured per invocation and names the operations a
// program may not perform. Both backends consult it through the same check
// (Interp.guard / generator.guard) before a call is dispatched or emitted, so
// a disallowed operation fails with SafetyError no matter which path runs it.
package jam

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SafetyProfile holds a set of disallowed operation names. Operation names
// are the built-in names (sqrt, random, choose, wait, ...) plus the statement
// operations "say", "ask" and "timer". A nil profile allows everything.
type SafetyProfile struct {
	Name     string   `yaml:"name"`
	Disallow []string `yaml:"disallow"`

	set map[string]bool
}

// Allows reports whether the named operation may run under this profile.
func (p *SafetyProfile) Allows(op string) bool {
	if p == nil {
		return true
	}
	if p.set == nil {
		p.set = make(map[string]bool, len(p.Disallow))
		for _, d := range p.Disallow {
			p.set[d] = true
		}
	}
	return !p.set[op]
}

// NewProfile builds a profile from a name and a disallow list.
func NewProfile(name string, disallow ...string) *SafetyProfile {
	return &SafetyProfile{Name: name, Disallow: disallow}
}

// SandboxProfile is the ready-made untrusted profile: no sleeping the host
// process ("wait") and no voice output ("say").
func SandboxProfile() *SafetyProfile {
	return NewProfile("sandbox", "wait", "say")
}

// LoadProfile reads a YAML profile file:
//
//	name: classroom
//	disallow: [wait, say, ask]
func LoadProfile(path string) (*SafetyProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseProfile(data)
}

// ParseProfile decodes a YAML profile document.
func ParseProfile(data []byte) (*SafetyProfile, error) {
	var p SafetyProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid safety profile: %w", err)
	}
	if p.Name == "" {
		p.Name = "unnamed"
	}
	return &p, nil
}

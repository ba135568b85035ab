package prompt

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
)

// validKeyPattern matches valid prompt keys (alphanumeric with dots, underscores).
var validKeyPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._]*$`)

// Embedded represents a prompt text shipped in the binary.
type Embedded struct {
	Key         string   // Hierarchical key: agents.requirements.system
	Text        string   // The prompt text (Go template)
	Description string   // Human-readable description
	Variables   []string // Extracted template variables
	Hash        string   // SHA256 hash of the text for change detection
}

// Registry holds the embedded prompts registered by agent packages.
type Registry struct {
	mu      sync.RWMutex
	prompts map[string]Embedded
}

// NewRegistry creates an empty prompt registry.
func NewRegistry() *Registry {
	return &Registry{prompts: make(map[string]Embedded)}
}

// Register adds a prompt. Hash and Variables are derived when unset.
// Invalid keys are rejected.
func (r *Registry) Register(p Embedded) error {
	if !validKeyPattern.MatchString(p.Key) {
		return fmt.Errorf("invalid prompt key: %s", p.Key)
	}
	if p.Hash == "" {
		p.Hash = HashText(p.Text)
	}
	if p.Variables == nil {
		p.Variables = ExtractVariables(p.Text)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts[p.Key] = p
	return nil
}

// Get returns a registered prompt by key.
func (r *Registry) Get(key string) (Embedded, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.prompts[key]
	return p, ok
}

// List returns all registered prompts sorted by key.
func (r *Registry) List() []Embedded {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Embedded, 0, len(r.prompts))
	for _, p := range r.prompts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

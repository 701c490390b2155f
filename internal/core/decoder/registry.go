package decoder

import (
	"fmt"
	"sync"

	"firestige.xyz/dissector/internal/core"
)

// Registry holds the registered protocols. It is filled during startup and
// sealed when an Engine is built from it; after that it is read-only and
// safe for concurrent use without locking.
type Registry struct {
	mu        sync.Mutex
	sealed    bool
	protocols []*Protocol
	byName    map[string]*Protocol
	byPort    map[uint16]*Protocol
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Protocol),
		byPort: make(map[uint16]*Protocol),
	}
}

// Register validates p and adds it. Validation failures are protocol
// description bugs and are reported here rather than per packet.
func (r *Registry) Register(p *Protocol) error {
	if p == nil {
		return fmt.Errorf("nil protocol: %w", core.ErrInvalidField)
	}
	if err := p.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("register %s: %w", p.Name, core.ErrRegistrySealed)
	}
	if _, exists := r.byName[p.Name]; exists {
		return fmt.Errorf("register %s: %w", p.Name, core.ErrDuplicateProtocol)
	}
	for _, port := range p.Ports {
		if other, taken := r.byPort[port]; taken {
			return fmt.Errorf("register %s: udp port %d already claimed by %s: %w",
				p.Name, port, other.Name, core.ErrDuplicateProtocol)
		}
	}

	if p.Title == "" {
		p.Title = p.Name
	}
	r.protocols = append(r.protocols, p)
	r.byName[p.Name] = p
	for _, port := range p.Ports {
		r.byPort[port] = p
	}
	return nil
}

// MustRegister registers p and panics on failure. Intended for tests and
// fixed startup wiring.
func (r *Registry) MustRegister(p *Protocol) {
	if err := r.Register(p); err != nil {
		panic(err)
	}
}

// Find returns the protocol registered under name.
func (r *Registry) Find(name string) (*Protocol, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// ForPort returns the protocol claiming a UDP port.
func (r *Registry) ForPort(port uint16) (*Protocol, bool) {
	p, ok := r.byPort[port]
	return p, ok
}

// Protocols returns the protocols in registration order.
func (r *Registry) Protocols() []*Protocol {
	out := make([]*Protocol, len(r.protocols))
	copy(out, r.protocols)
	return out
}

// Sealed reports whether the registry accepts no more protocols.
func (r *Registry) Sealed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sealed
}

func (r *Registry) seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

package spec

import "fmt"

// Phase names the build stage an override sequence belongs to.
type Phase string

const (
	PhaseConstraints Phase = "constraints"
	PhaseObjective   Phase = "objective"
)

// Override is a named invocation of a registered constraint or objective
// capability. Target identifies the capability; Args are opaque to the
// spec system and interpreted only by the capability at build time.
type Override struct {
	Name   string
	Target string
	Args   map[string]any
}

// Specification is the immutable declarative description of one
// optimization problem instance. The zero value is not usable; build one
// through New or the codec.
type Specification struct {
	Template   string
	Indexes    map[string]*Index
	Parameters map[string]*Parameter
	Options    map[string]any
	Overrides  map[Phase][]Override
}

// New validates and assembles a Specification. Nil section maps are
// normalized to empty ones so lookups never nil-check.
func New(template string, indexes map[string]*Index, params map[string]*Parameter,
	options map[string]any, overrides map[Phase][]Override) (*Specification, error) {

	if template == "" {
		return nil, fmt.Errorf("specification requires a template id")
	}
	s := &Specification{
		Template:   template,
		Indexes:    indexes,
		Parameters: params,
		Options:    options,
		Overrides:  overrides,
	}
	if s.Indexes == nil {
		s.Indexes = map[string]*Index{}
	}
	if s.Parameters == nil {
		s.Parameters = map[string]*Parameter{}
	}
	if s.Options == nil {
		s.Options = map[string]any{}
	}
	if s.Overrides == nil {
		s.Overrides = map[Phase][]Override{}
	}
	return s, nil
}

// Index returns the named index or an error naming the miss.
func (s *Specification) Index(name string) (*Index, error) {
	ix, ok := s.Indexes[name]
	if !ok {
		return nil, fmt.Errorf("specification has no index %q", name)
	}
	return ix, nil
}

// Parameter returns the named parameter or an error naming the miss.
func (s *Specification) Parameter(name string) (*Parameter, error) {
	p, ok := s.Parameters[name]
	if !ok {
		return nil, fmt.Errorf("specification has no parameter %q", name)
	}
	return p, nil
}

// Option returns the named option value and whether it is set.
func (s *Specification) Option(name string) (any, bool) {
	v, ok := s.Options[name]
	return v, ok
}

package spec

// The With* helpers below implement copy-on-write updates. Each one copies
// only the map whose entry changes; every other branch of the tree is
// shared with the receiver. Shared branches are safe because nothing in
// this package mutates a value after construction.

func (s *Specification) shallow() *Specification {
	cp := *s
	return &cp
}

func copyIndexMap(m map[string]*Index) map[string]*Index {
	cp := make(map[string]*Index, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func copyParamMap(m map[string]*Parameter) map[string]*Parameter {
	cp := make(map[string]*Parameter, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func copyOptionMap(m map[string]any) map[string]any {
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func copyOverrideMap(m map[Phase][]Override) map[Phase][]Override {
	cp := make(map[Phase][]Override, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// WithParameter returns a copy of s in which name maps to p.
func (s *Specification) WithParameter(name string, p *Parameter) *Specification {
	cp := s.shallow()
	cp.Parameters = copyParamMap(s.Parameters)
	cp.Parameters[name] = p
	return cp
}

// WithTableRows returns a copy of s in which the named table parameter
// carries rows as its cached data.
func (s *Specification) WithTableRows(name string, rows [][]any) *Specification {
	return s.WithParameter(name, s.Parameters[name].withRows(rows))
}

// WithMappingData returns a copy of s in which the named mapping parameter
// carries m as its cached data.
func (s *Specification) WithMappingData(name string, m map[string]any) *Specification {
	return s.WithParameter(name, s.Parameters[name].withMap(m))
}

// WithOption returns a copy of s with the named option inserted or
// replaced.
func (s *Specification) WithOption(name string, value any) *Specification {
	cp := s.shallow()
	cp.Options = copyOptionMap(s.Options)
	cp.Options[name] = value
	return cp
}

// WithIndex returns a copy of s in which name maps to ix.
func (s *Specification) WithIndex(name string, ix *Index) *Specification {
	cp := s.shallow()
	cp.Indexes = copyIndexMap(s.Indexes)
	cp.Indexes[name] = ix
	return cp
}

// WithOverrides returns a copy of s in which the given phase carries
// overrides, replacing the previous sequence wholesale.
func (s *Specification) WithOverrides(phase Phase, overrides []Override) *Specification {
	cp := s.shallow()
	cp.Overrides = copyOverrideMap(s.Overrides)
	cp.Overrides[phase] = overrides
	return cp
}

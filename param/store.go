package param

import (
	"sort"
	"strings"
	"sync"
)

// Separator splits namespace levels in parameter names.
const Separator = "."

// Store is a thread-safe mapping from dotted parameter names to typed values.
// Every operation holds the single store-wide mutex for its whole duration;
// critical sections are short and never block on I/O or other operations.
//
// Parameters are created on first set, overwritten on subsequent sets and
// never deleted: no removal operation exists in this design.
type Store struct {
	mu     sync.Mutex
	params map[string]Parameter
}

// NewStore constructs an empty parameter store.
func NewStore() *Store {
	return &Store{params: make(map[string]Parameter)}
}

// Set applies the parameters one by one, each an independent overwrite or
// insert, and returns one result per input in input order. Every individual
// set reports success: constraint validation is intentionally absent here,
// an extension point rather than a bug. The whole batch runs inside one
// critical section, but unlike SetAtomically each key commits independently.
func (s *Store) Set(params ...Parameter) []SetResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	results := make([]SetResult, 0, len(params))
	for _, p := range params {
		s.params[p.Name] = p
		results = append(results, SetResult{Successful: true})
	}
	return results
}

// SetAtomically applies the batch all-or-nothing: it stages the new values in
// a fresh map, merges the existing map underneath (staged values win on
// overlapping keys) and swaps the staged map in as the store's map in a
// single critical section. No reader bound by the store lock can observe some
// but not all of the batch's values.
func (s *Store) SetAtomically(params ...Parameter) SetResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := make(map[string]Parameter, len(s.params)+len(params))
	for _, p := range params {
		staged[p.Name] = p
	}
	for name, p := range s.params {
		if _, ok := staged[name]; !ok {
			staged[name] = p
		}
	}
	s.params = staged
	return SetResult{Successful: true}
}

// Get returns the current value of every requested name that is set, in
// request order. Unknown names are silently omitted, never an error;
// duplicate requests yield a single result.
func (s *Store) Get(names ...string) []Parameter {
	s.mu.Lock()
	defer s.mu.Unlock()
	results := make([]Parameter, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if p, ok := s.params[name]; ok {
			results = append(results, p)
		}
	}
	return results
}

// GetTypes returns the stored type for every requested name, aligned with the
// request: results[i] describes names[i], with ParameterNotSet for names that
// have no stored value.
func (s *Store) GetTypes(names ...string) []ParameterType {
	s.mu.Lock()
	defer s.mu.Unlock()
	results := make([]ParameterType, len(names))
	for i, name := range names {
		if p, ok := s.params[name]; ok {
			results[i] = p.Type()
		} else {
			results[i] = ParameterNotSet
		}
	}
	return results
}

// Describe returns a descriptor for every requested name that is set, in
// request order; unknown names are silently omitted.
func (s *Store) Describe(names ...string) []Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	results := make([]Descriptor, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if p, ok := s.params[name]; ok {
			results = append(results, Descriptor{Name: name, Type: p.Type()})
		}
	}
	return results
}

// List performs a hierarchical query over dot-separated namespaces. A stored
// name matches a prefix when it begins with prefix+"." and the remaining
// suffix contains strictly fewer than depth separators; depth 1 therefore
// selects direct children only. One ListResult is emitted per matching name,
// carrying the name and the name's own prefix. Names are visited in sorted
// order so output is deterministic.
func (s *Store) List(prefixes []string, depth uint64) []ListResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.params))
	for name := range s.params {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []ListResult
	for _, name := range names {
		if !matchesAny(name, prefixes, depth) {
			continue
		}
		result := ListResult{ParameterNames: []string{name}}
		if i := strings.LastIndex(name, Separator); i >= 0 {
			result.ParameterPrefixes = appendUnique(result.ParameterPrefixes, name[:i])
		}
		results = append(results, result)
	}
	return results
}

func matchesAny(name string, prefixes []string, depth uint64) bool {
	for _, prefix := range prefixes {
		rooted := prefix + Separator
		if !strings.HasPrefix(name, rooted) {
			continue
		}
		suffix := name[len(rooted):]
		if uint64(strings.Count(suffix, Separator)) < depth {
			return true
		}
	}
	return false
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}

// Names returns a sorted snapshot of all stored parameter names.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.params))
	for name := range s.params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored parameters.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.params)
}

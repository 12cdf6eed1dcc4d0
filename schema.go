package webifc

import "github.com/ssured/web-ifc/internal/ifccrc"

// Schema models spec.md §1's "IFC schema header file", which the core
// treats as "an external constant table of type names". The Loader itself
// never references a Schema; it exists so a host can ask for a type's
// fingerprint by name without recomputing CRC32 inline, keeping schema
// semantics (Non-goal) entirely out of the loader core.
type Schema struct {
	fingerprints map[string]uint32
	declared     map[string]bool // names passed to NewSchema, distinct from fingerprints' cache
}

// NewSchema precomputes the CRC32 fingerprint of every name in typeNames,
// e.g. the ~800 entity type names declared in the generated IFC schema
// header (spec.md §9).
func NewSchema(typeNames []string) *Schema {
	s := &Schema{
		fingerprints: make(map[string]uint32, len(typeNames)),
		declared:     make(map[string]bool, len(typeNames)),
	}
	for _, name := range typeNames {
		s.fingerprints[name] = ifccrc.Fingerprint([]byte(name))
		s.declared[name] = true
	}
	return s
}

// Fingerprint returns name's CRC32 fingerprint, computing and caching it on
// the fly if name wasn't part of the table NewSchema was built from. An
// on-the-fly lookup does not make IsKnownType(name) true.
func (s *Schema) Fingerprint(name string) uint32 {
	if fp, ok := s.fingerprints[name]; ok {
		return fp
	}
	fp := ifccrc.Fingerprint([]byte(name))
	s.fingerprints[name] = fp
	return fp
}

// IsKnownType reports whether name was declared in the schema table this
// Schema was built from.
func (s *Schema) IsKnownType(name string) bool {
	return s.declared[name]
}

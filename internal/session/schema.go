package session

import "slices"

// BeginSchemaLoad marks a schema fetch as in progress.
func (s *Store) BeginSchemaLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemaLoading = true
}

// ReplaceSchema swaps in a new snapshot and ends the load.
func (s *Store) ReplaceSchema(tables []TableInfo) {
	if tables == nil {
		tables = []TableInfo{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schema = slices.Clone(tables)
	s.schemaLoading = false
}

// FailSchemaLoad clears the snapshot and ends the load.
func (s *Store) FailSchemaLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schema = []TableInfo{}
	s.schemaLoading = false
}

// Schema returns the current snapshot and whether a load is in progress.
func (s *Store) Schema() ([]TableInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.schema), s.schemaLoading
}

// Table returns the named table from the snapshot.
func (s *Store) Table(name string) (TableInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.schema {
		if t.Name == name {
			return t, true
		}
	}
	return TableInfo{}, false
}

package session

import "slices"

// Display is what the session currently shows: the last natural-language
// query and either its SQL and rows or an error.
type Display struct {
	NaturalQuery  string   `json:"naturalQuery"`
	SQL           string   `json:"sql"`
	Rows          []Row    `json:"results"`
	HasRows       bool     `json:"hasResults"`
	ExecutionTime *float64 `json:"executionTime,omitempty"`
	Warning       string   `json:"warning,omitempty"`
	Error         string   `json:"error,omitempty"`
	// Explanation belongs to SQL; it is cleared whenever SQL changes.
	Explanation string `json:"explanation,omitempty"`
}

// BeginQuery clears everything shown and records the new natural query.
func (s *Store) BeginQuery(naturalQuery string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.display = Display{NaturalQuery: naturalQuery}
}

// ShowResult displays the outcome of a successful submission.
func (s *Store) ShowResult(sql string, rows []Row, hasRows bool, execTime *float64, warning string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setSQLLocked(sql)
	s.display.Rows = rows
	s.display.HasRows = hasRows
	s.display.ExecutionTime = execTime
	s.display.Warning = warning
	s.display.Error = ""
}

// ShowError displays a failed submission.
func (s *Store) ShowError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setSQLLocked("")
	s.display.Rows = nil
	s.display.HasRows = false
	s.display.ExecutionTime = nil
	s.display.Error = msg
}

// ShowHistoryItem redisplays a past submission.
func (s *Store) ShowHistoryItem(item HistoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setSQLLocked(item.SQL)
	s.display.NaturalQuery = item.NaturalQuery
	s.display.Rows = item.Rows
	s.display.HasRows = item.Rows != nil
	s.display.ExecutionTime = item.ExecutionTime
	s.display.Warning = ""
	s.display.Error = item.Error
}

// SetDisplayedSQL replaces the displayed SQL, discarding an explanation that
// belonged to different SQL.
func (s *Store) SetDisplayedSQL(sql string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setSQLLocked(sql)
}

func (s *Store) setSQLLocked(sql string) {
	if sql != s.display.SQL {
		s.display.Explanation = ""
	}
	s.display.SQL = sql
}

// SetExplanation caches text as the explanation of sql. It is ignored when
// sql is no longer displayed. Reports whether the text was kept.
func (s *Store) SetExplanation(sql, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sql != s.display.SQL {
		return false
	}
	s.display.Explanation = text
	return true
}

// Display returns a copy of what is currently shown.
func (s *Store) Display() Display {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.display
	d.Rows = slices.Clone(d.Rows)
	return d
}

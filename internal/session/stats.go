package session

import "math"

// Stats summarizes the history.
type Stats struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Errors  int `json:"errors"`
	// SuccessRate is a whole percentage.
	SuccessRate int `json:"successRate"`
	// AverageTime and FastestTime cover items that reported an execution
	// time; both are nil when none did.
	AverageTime *float64 `json:"averageTime,omitempty"`
	FastestTime *float64 `json:"fastestTime,omitempty"`
}

// ComputeStats summarizes items.
func ComputeStats(items []HistoryItem) Stats {
	var st Stats
	var sum float64
	var timed int
	fastest := math.Inf(1)

	for _, h := range items {
		st.Total++
		switch h.Status {
		case StatusSuccess:
			st.Success++
		case StatusError:
			st.Errors++
		}
		if h.ExecutionTime != nil && *h.ExecutionTime != 0 {
			t := *h.ExecutionTime
			sum += t
			timed++
			fastest = math.Min(fastest, t)
		}
	}

	if st.Total > 0 {
		st.SuccessRate = int(math.Round(float64(st.Success) / float64(st.Total) * 100))
	}
	if timed > 0 {
		avg := sum / float64(timed)
		st.AverageTime = &avg
		st.FastestTime = &fastest
	}
	return st
}

// Stats summarizes the current history.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeStats(s.history)
}

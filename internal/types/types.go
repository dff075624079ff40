package types

import "time"

// Outcome records whether one page URL produced a downloaded constituent file
type Outcome struct {
	Category  string
	URL       string
	Success   bool
	Timestamp time.Time
}

// Category groups page URLs that share an output subdirectory
type Category struct {
	Name string   `yaml:"name"`
	URLs []string `yaml:"urls"`
}

// Summary is the aggregate view over a batch run's outcomes
type Summary struct {
	Total      int
	Succeeded  int
	Failed     int
	Duration   time.Duration
	FailedURLs []string
}

// NewSummary derives a Summary from the outcome sequence of a finished run
func NewSummary(outcomes []Outcome, duration time.Duration) *Summary {
	s := &Summary{
		Total:    len(outcomes),
		Duration: duration,
	}
	for _, o := range outcomes {
		if o.Success {
			s.Succeeded++
			continue
		}
		s.Failed++
		s.FailedURLs = append(s.FailedURLs, o.URL)
	}
	return s
}

// SuccessRate returns the share of successful outcomes as a percentage
func (s *Summary) SuccessRate() float64 {
	return percent(s.Succeeded, s.Total)
}

// FailureRate returns the share of failed outcomes as a percentage
func (s *Summary) FailureRate() float64 {
	return percent(s.Failed, s.Total)
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

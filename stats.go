package surveyor

// RunStatistics accumulates counters for one run. The Driver mutates the
// root and file counters; reporting visitors record findings through
// AddFindings. Read it after Run returns via Driver.Stats.
type RunStatistics struct {
	RootsDiscovered int
	RootsProcessed  int
	RootsSkipped    int
	FilesAnalyzed   int
	FilesFailed     int
	Findings        int
}

// AddFindings records n reported findings.
func (s *RunStatistics) AddFindings(n int) {
	s.Findings += n
}

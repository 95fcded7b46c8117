package scheduler

import "github.com/shaharia-lab/zephyr/internal/config"

// ExportedFire exposes the private fire method for external tests.
func (s *Scheduler) ExportedFire(src config.ScheduledSource) {
	s.fire(src)
}

// ExportedJobCount reports the number of scheduled sources for external tests.
func (s *Scheduler) ExportedJobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

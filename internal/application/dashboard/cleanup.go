package dashboard

import "time"

// CleanupIdleSessions removes sessions untouched for longer than the idle TTL
// and returns how many were removed.
func (s *Service) CleanupIdleSessions() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.sessionsMu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.touchedAt.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			removed++
		}
	}
	count := len(s.sessions)
	s.sessionsMu.Unlock()

	if removed > 0 {
		s.metrics.SetActiveSessions(count)
	}
	return removed
}

// StartBackgroundCleanup periodically removes idle sessions.
// Call StopBackgroundCleanup to stop it.
func (s *Service) StartBackgroundCleanup(checkInterval time.Duration) {
	s.cleanupStop = make(chan struct{})
	s.cleanupDone = make(chan struct{})

	go func() {
		defer close(s.cleanupDone)

		ticker := time.NewTicker(checkInterval)
		defer ticker.Stop()

		s.logger.Info("session cleanup started",
			"check_interval", checkInterval,
			"idle_ttl", s.idleTTL)

		for {
			select {
			case <-s.cleanupStop:
				s.logger.Info("session cleanup stopped")
				return
			case <-ticker.C:
				if removed := s.CleanupIdleSessions(); removed > 0 {
					s.logger.Info("removed idle sessions", "count", removed)
				}
			}
		}
	}()
}

// StopBackgroundCleanup stops the cleanup goroutine and waits for it to exit.
func (s *Service) StopBackgroundCleanup() {
	if s.cleanupStop == nil {
		return
	}
	close(s.cleanupStop)
	<-s.cleanupDone
	s.cleanupStop = nil
}

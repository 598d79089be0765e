package api

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
)

// StartScheduler refreshes the pipeline every RefreshInterval and re-pushes
// the latest snapshot every WSPushInterval. It blocks until ctx is done.
func (s *Server) StartScheduler(ctx context.Context) {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	s.logger.Info("[scheduler] refresh every %v, websocket push every %v", s.cfg.RefreshInterval, s.cfg.WSPushInterval)

	if _, err := scheduler.Every(s.cfg.RefreshInterval).WaitForSchedule().Do(func() {
		s.logger.Info("[scheduler] scheduled refresh")
		s.Refresh(ctx)
	}); err != nil {
		s.logger.Error("[scheduler] refresh job: %v", err)
		return
	}
	if _, err := scheduler.Every(s.cfg.WSPushInterval).WaitForSchedule().Do(s.PushLatest); err != nil {
		s.logger.Error("[scheduler] push job: %v", err)
		return
	}

	scheduler.StartAsync()
	<-ctx.Done()
	scheduler.Stop()
	s.logger.Info("[scheduler] stopped")
}

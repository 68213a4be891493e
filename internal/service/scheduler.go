package service

import (
	"context"
	"sync"
	"time"

	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/types"
	"go.uber.org/fx"
)

// SyncScheduler runs the provider sync every sync.interval while the process is up
type SyncScheduler struct {
	ServiceParams
	syncService  SyncService
	tokenManager TokenManager

	interval time.Duration
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewSyncScheduler(params ServiceParams, syncService SyncService, tokenManager TokenManager) *SyncScheduler {
	return &SyncScheduler{
		ServiceParams: params,
		syncService:   syncService,
		tokenManager:  tokenManager,
		interval:      params.Config.Sync.Interval,
	}
}

// RegisterHooks loads the stored token on start and stops the timers on shutdown
func (s *SyncScheduler) RegisterHooks(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := s.tokenManager.Load(ctx); err != nil {
				s.Logger.Warnw("continuing without a stored zoho token", "error", err)
			}
			s.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.Stop()
			s.tokenManager.Stop()
			return nil
		},
	})
}

// Start launches the ticker; a zero interval disables scheduled syncs
func (s *SyncScheduler) Start() {
	if s.interval <= 0 {
		s.Logger.Infow("scheduled sync disabled")
		return
	}

	ctx, cancel := context.WithCancel(types.SetUserID(context.Background(), types.DefaultUserID))
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.Logger.Infow("scheduled sync started", "interval", s.interval)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce performs one scheduled sync; errors are logged only
func (s *SyncScheduler) RunOnce(ctx context.Context) {
	creds := s.tokenManager.Current()
	if creds == nil {
		s.Logger.Debugw("skipping scheduled sync, zoho is not authorized")
		return
	}

	if _, err := s.syncService.RunFullSync(ctx, creds, types.SyncTriggerScheduled); err != nil {
		if ierr.IsInvalidOperation(err) {
			s.Logger.Infow("skipping scheduled sync, a sync is already running")
			return
		}
		s.Logger.Errorw("scheduled sync failed", "error", err)
	}
}

func (s *SyncScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

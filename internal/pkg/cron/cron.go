package cron

import (
	"log"
	"time"

	"github.com/qs3c/companion_go_server/internal/service"
)

// Service 定时任务：兜底批量重置过期的每日配额。
// 正常路径靠读取时的惰性重置，这里只是防止长期不活跃的用户积累脏数据。
type Service struct {
	userService *service.UserService
	stopChan    chan struct{}
}

func NewService(userService *service.UserService) *Service {
	return &Service{
		userService: userService,
		stopChan:    make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runDailyQuotaSweep()
	log.Println("Cron service started (quota sweep)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

// runDailyQuotaSweep 每天 UTC 零点扫一次过期窗口
func (s *Service) runDailyQuotaSweep() {
	now := time.Now().UTC()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	timer := time.NewTimer(nextMidnight.Sub(now))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.sweepQuotas()
			timer.Reset(24 * time.Hour)
		}
	}
}

func (s *Service) sweepQuotas() {
	affected, err := s.userService.ResetExpiredQuotas()
	if err != nil {
		log.Printf("Quota sweep failed: %v", err)
		return
	}
	if affected > 0 {
		log.Printf("Quota sweep reset %d users", affected)
	}
}

// RunNow 立即执行一次配额重置（用于测试或手动触发）
func (s *Service) RunNow() (int64, error) {
	log.Println("Manual quota sweep triggered...")
	return s.userService.ResetExpiredQuotas()
}

package job

import (
	"context"
	"errors"
	"log"
	"time"

	"hiring-portal/internal/shared/metrics"
	"hiring-portal/internal/shared/storage"
)

// ReconcileCounts 按实际申请数修正 applications_count，返回修正的职位数
//
// MongoDB 驱动下插入申请与递增计数是两次写入，此处负责收敛偏差。
// 写入以读取到的计数为前置条件，期间计数被并发修改的职位留给下一轮。
func (s *Service) ReconcileCounts(ctx context.Context) (int, error) {
	jobs, err := s.store.ListJobsByStatus(ctx, "")
	if err != nil {
		return 0, err
	}

	fixed := 0
	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return fixed, err
		}
		n, err := s.store.CountApplicationsByJob(ctx, j.ID)
		if err != nil {
			return fixed, err
		}
		if n == j.ApplicationsCount {
			continue
		}
		if err := s.store.SetApplicationsCount(ctx, j.ID, j.ApplicationsCount, n); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				log.Printf("[job.reconcile] job %s count changed concurrently, skipped", j.ID)
				continue
			}
			return fixed, err
		}
		log.Printf("[job.reconcile] job %s applications_count %d -> %d", j.ID, j.ApplicationsCount, n)
		fixed++
	}

	if fixed > 0 {
		metrics.CountCorrections.Add(float64(fixed))
	}
	return fixed, nil
}

// StartReconciler 周期性对账，ctx 取消后退出；interval <= 0 时不启动
func (s *Service) StartReconciler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		log.Printf("[job.reconcile] Started, interval=%s", interval)
		for {
			select {
			case <-ctx.Done():
				log.Printf("[job.reconcile] Stopped")
				return
			case <-ticker.C:
				if _, err := s.ReconcileCounts(ctx); err != nil && ctx.Err() == nil {
					log.Printf("[job.reconcile] failed: %v", err)
				}
			}
		}
	}()
}


// Package metrics 领域指标
//
// 指标在包初始化时注册到默认 Registry，由 /metrics 统一导出。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hiring_portal"

var (
	// JobsCreated 新建职位数
	JobsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_created_total",
		Help:      "Total jobs posted",
	})

	// JobStatusChanges 职位状态切换，按目标状态
	JobStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_status_changes_total",
		Help:      "Job status transitions by target status",
	}, []string{"to"})

	// ApplicationsSubmitted 申请提交结果：created / conflict / rejected / upstream_error
	ApplicationsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "applications_submitted_total",
		Help:      "Application submissions by outcome",
	}, []string{"outcome"})

	// ApplicationStatusChanges 申请状态流转
	ApplicationStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "application_status_changes_total",
		Help:      "Application status transitions",
	}, []string{"from", "to"})

	// VerificationEvents 手机/邮箱验证事件
	VerificationEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verification_events_total",
		Help:      "Phone and email verification events",
	}, []string{"channel", "event"})

	// UpstreamDuration 外部协作方调用耗时
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_call_duration_seconds",
		Help:      "Blob store and notification relay call duration",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"target", "result"})

	// CountCorrections 对账修正的职位数
	CountCorrections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "application_count_corrections_total",
		Help:      "Jobs whose applications_count was corrected by reconciliation",
	})
)

// ObserveUpstream 记录一次外部调用
func ObserveUpstream(target string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	UpstreamDuration.WithLabelValues(target, result).Observe(time.Since(start).Seconds())
}

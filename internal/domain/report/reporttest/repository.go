// Package reporttest 提供举报仓储的内存实现，供其他领域的测试使用
package reporttest

import (
	"context"
	"sort"
	"sync"
	"time"

	"anonboard/internal/domain/report/model"
	"anonboard/pkg/errs"

	"github.com/google/uuid"
)

// Repository 内存举报仓储，(reporter, type, target) 唯一
type Repository struct {
	mu      sync.Mutex
	reports map[string]*model.Report
	clock   time.Time
}

func NewRepository() *Repository {
	return &Repository{reports: make(map[string]*model.Report), clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (r *Repository) Create(ctx context.Context, report *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reports {
		if existing.ReporterID == report.ReporterID && existing.TargetType == report.TargetType && existing.TargetID == report.TargetID {
			return errs.AlreadyExists("you have already reported this content")
		}
	}
	report.ID = uuid.NewString()
	// 保证创建时间严格递增
	r.clock = r.clock.Add(time.Second)
	report.CreatedAt = r.clock
	cp := *report
	r.reports[report.ID] = &cp
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*model.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[id]
	if !ok {
		return nil, errs.NotFound("report not found")
	}
	cp := *report
	return &cp, nil
}

func (r *Repository) List(ctx context.Context, status model.Status, offset, limit int) ([]model.Report, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Report
	for _, report := range r.reports {
		if status == "" || report.Status == status {
			out = append(out, *report)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if offset >= len(out) {
		return []model.Report{}, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (r *Repository) CountByStatus(ctx context.Context, status model.Status) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, report := range r.reports {
		if report.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *Repository) Review(ctx context.Context, id string, status model.Status, reviewerID, notes string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[id]
	if !ok {
		return errs.NotFound("report not found")
	}
	review(report, status, reviewerID, notes, at)
	return nil
}

func (r *Repository) ResolvePending(ctx context.Context, targetType, targetID, reviewerID, notes string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, report := range r.reports {
		if report.TargetType == targetType && report.TargetID == targetID && report.Status == model.StatusPending {
			review(report, model.StatusResolved, reviewerID, notes, at)
			n++
		}
	}
	return n, nil
}

func review(report *model.Report, status model.Status, reviewerID, notes string, at time.Time) {
	report.Status = status
	report.ReviewerID = &reviewerID
	report.ReviewNotes = notes
	report.ReviewedAt = &at
}

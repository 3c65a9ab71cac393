package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"familybudget/internal/analysis"
	"familybudget/internal/cache"
	"familybudget/internal/core"
	"familybudget/internal/gateway"
	applog "familybudget/internal/log"
	"familybudget/internal/report"
)

// ReportService fetches an owner's ledger and builds reports from it. Built
// reports are cached per owner, kind, parameters and calendar day of the
// reference instant; identical concurrent requests share one build.
// Every Invalidate starts a new generation for the owner: builds begun in an
// older generation are neither cached nor joined by later requests.
type ReportService struct {
	reader     gateway.Reader
	cache      cache.Cache[*report.Report]
	group      singleflight.Group
	thresholds analysis.Thresholds
	logger     *applog.Logger

	mu          sync.Mutex
	generations map[string]uint64
}

// NewReportService wires a report service. cache may be nil to disable
// caching; logger may be nil.
func NewReportService(reader gateway.Reader, c cache.Cache[*report.Report], th analysis.Thresholds, logger *applog.Logger) *ReportService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &ReportService{
		reader:      reader,
		cache:       c,
		thresholds:  th,
		logger:      logger.WithComponent(applog.ComponentReport),
		generations: make(map[string]uint64),
	}
}

// Thresholds returns the heuristic constants reports are built with.
func (s *ReportService) Thresholds() analysis.Thresholds {
	return s.thresholds
}

// Dataset fetches the three collections for owner concurrently. Any store
// failure fails the whole fetch.
func (s *ReportService) Dataset(ctx context.Context, owner string) (report.Dataset, error) {
	var data report.Dataset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.reader.ListExpenses(gctx, owner)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		data.Expenses = list
		return nil
	})
	g.Go(func() error {
		list, err := s.reader.ListIncomes(gctx, owner)
		if err != nil {
			return fmt.Errorf("list incomes: %w", err)
		}
		data.Incomes = list
		return nil
	})
	g.Go(func() error {
		list, err := s.reader.ListGoals(gctx, owner)
		if err != nil {
			return fmt.Errorf("list goals: %w", err)
		}
		data.Goals = list
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Store fetch failed",
			applog.FieldOperation, applog.OpList,
			applog.FieldOwner, owner,
			applog.FieldError, err)
		return report.Dataset{}, err
	}
	return data, nil
}

// Monthly returns the monthly report for month; an empty month means the
// month containing now.
func (s *ReportService) Monthly(ctx context.Context, owner string, month core.MonthKey, now time.Time) (*report.Report, error) {
	if month == "" {
		month = core.MonthKeyOf(core.DateOf(now))
	}
	if err := month.Validate(); err != nil {
		return nil, err
	}
	key := cacheKey(owner, report.KindMonthly, month.String(), now)
	return s.cached(ctx, key, func(data report.Dataset) (*report.Report, error) {
		return report.BuildMonthlyReport(data, month, now, s.thresholds)
	}, owner, string(report.KindMonthly), month.String(), 0)
}

// Analysis returns the spending analysis over the trailing months window.
func (s *ReportService) Analysis(ctx context.Context, owner string, months int, now time.Time) (*report.Report, error) {
	if months == 0 {
		months = report.DefaultPeriodMonths
	}
	if months < 1 || months > report.MaxPeriodMonths {
		return nil, fmt.Errorf("%w: %d", report.ErrInvalidPeriod, months)
	}
	key := cacheKey(owner, report.KindAnalysis, strconv.Itoa(months), now)
	return s.cached(ctx, key, func(data report.Dataset) (*report.Report, error) {
		return report.BuildSpendingAnalysis(data, months, now, s.thresholds)
	}, owner, string(report.KindAnalysis), "", months)
}

// Ledger returns a report over every record of owner.
func (s *ReportService) Ledger(ctx context.Context, owner string, now time.Time) (*report.Report, error) {
	key := cacheKey(owner, report.KindLedger, "", now)
	return s.cached(ctx, key, func(data report.Dataset) (*report.Report, error) {
		return report.BuildLedgerReport(data, now, s.thresholds), nil
	}, owner, string(report.KindLedger), "", 0)
}

func (s *ReportService) cached(ctx context.Context, key string, build func(report.Dataset) (*report.Report, error), owner, kind, month string, months int) (*report.Report, error) {
	if s.cache != nil {
		if r, ok := s.cache.Get(key); ok {
			s.logger.DebugContext(ctx, "Report cache hit", "key", key)
			return r, nil
		}
	}

	gen := s.generation(owner)
	flightKey := key + "|" + strconv.FormatUint(gen, 10)
	v, err, shared := s.group.Do(flightKey, func() (any, error) {
		data, err := s.Dataset(ctx, owner)
		if err != nil {
			return nil, err
		}
		start := time.Now()
		r, err := build(data)
		if err != nil {
			return nil, err
		}
		if !s.store(owner, gen, key, r) {
			s.logger.DebugContext(ctx, "Report outdated by a write, not cached", "key", key)
		}
		s.logger.InfoContext(ctx, "Report built", applog.NewFields().
			WithOperation(applog.OpBuild).
			WithOwner(owner).
			WithReport(kind, month, months).
			ToSlice()...)
		s.logger.DebugContext(ctx, "Report build timing", "duration_ms", time.Since(start).Milliseconds())
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.DebugContext(ctx, "Report build shared", "key", key)
	}
	return v.(*report.Report), nil
}

// Invalidate drops every cached report of owner and returns how many went.
func (s *ReportService) Invalidate(owner string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[owner]++
	if s.cache == nil {
		return 0
	}
	return s.cache.DeletePrefix(ownerPrefix(owner))
}

func (s *ReportService) generation(owner string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[owner]
}

// store caches r unless owner was invalidated since generation gen began.
func (s *ReportService) store(owner string, gen uint64, key string, r *report.Report) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[owner] != gen {
		return false
	}
	if s.cache != nil {
		s.cache.Set(key, r)
	}
	return true
}

func ownerPrefix(owner string) string {
	return strconv.Quote(owner) + "|"
}

func cacheKey(owner string, kind report.Kind, params string, now time.Time) string {
	return ownerPrefix(owner) + string(kind) + "|" + params + "|" + now.Format(time.DateOnly)
}

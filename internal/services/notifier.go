package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"jard/internal/core"
	"jard/internal/remote"
)

// NotifierConfig tunes the trend check.
type NotifierConfig struct {
	// TrendDropThreshold is the relative drop in average daily sales, last
	// seven days against the seven before, that raises a warning.
	TrendDropThreshold decimal.Decimal
	CurrencyLabel      string
}

// Notifier raises trend warnings and periodic digests, each type at most
// once per schedule window.
type Notifier struct {
	store   remote.NotificationStore
	source  RangeSource
	reports *ReportService
	config  NotifierConfig
	now     func() time.Time
}

func NewNotifier(store remote.NotificationStore, source RangeSource, reports *ReportService, config NotifierConfig) *Notifier {
	if !config.TrendDropThreshold.IsPositive() {
		config.TrendDropThreshold = decimal.RequireFromString("0.2")
	}
	return &Notifier{store: store, source: source, reports: reports, config: config, now: time.Now}
}

type builder func(ctx context.Context, now time.Time) (*core.Notification, error)

// Evaluate runs every check and returns the notifications it created.
func (n *Notifier) Evaluate(ctx context.Context) ([]core.Notification, error) {
	now := n.now()
	checks := []struct {
		typ   string
		build builder
	}{
		{core.NotificationTrend, n.trend},
		{core.NotificationDigestWeekly, n.weeklyDigest},
		{core.NotificationDigestMonthly, n.monthlyDigest},
	}

	var created []core.Notification
	for _, c := range checks {
		nt, err := n.evaluate(ctx, now, c.typ, c.build)
		if err != nil {
			slog.WarnContext(ctx, "Notification check failed", "component", "notifier", "type", c.typ, "error", err)
			continue
		}
		if nt != nil {
			created = append(created, *nt)
		}
	}
	return created, nil
}

func (n *Notifier) evaluate(ctx context.Context, now time.Time, typ string, build builder) (*core.Notification, error) {
	strategy, err := GetWindowStrategy(typ)
	if err != nil {
		return nil, err
	}
	exists, err := n.store.HasNotificationSince(ctx, typ, strategy.WindowStart(now))
	if err != nil {
		return nil, fmt.Errorf("check existing %s: %w", typ, err)
	}
	if exists {
		return nil, nil
	}
	nt, err := build(ctx, now)
	if err != nil || nt == nil {
		return nil, err
	}
	nt.Type = typ
	nt.CreatedAt = now.UTC()
	if err := n.store.InsertNotification(ctx, *nt); err != nil {
		return nil, fmt.Errorf("insert %s: %w", typ, err)
	}
	slog.InfoContext(ctx, "Notification created", "component", "notifier", "type", typ, "title", nt.Title)
	return nt, nil
}

// trend compares average sales of [today-7, today] with [today-14, today-7).
func (n *Notifier) trend(ctx context.Context, now time.Time) (*core.Notification, error) {
	today := core.DateOf(now)
	records, err := n.source.Range(ctx, today.AddDays(-14), today)
	if err != nil {
		return nil, err
	}
	cut := today.AddDays(-7)
	var last, prev []decimal.Decimal
	for _, r := range records {
		if r.Date.Before(cut) {
			prev = append(prev, r.TotalSales)
		} else {
			last = append(last, r.TotalSales)
		}
	}
	a1, a2 := average(last), average(prev)
	if !a2.IsPositive() {
		return nil, nil
	}
	drop := a2.Sub(a1).Div(a2)
	if drop.LessThan(n.config.TrendDropThreshold) {
		return nil, nil
	}
	return &core.Notification{
		Severity: core.SeverityWarning,
		Title:    "Sales dropped over the last 7 days",
		Message: fmt.Sprintf("Average daily sales fell %s%% compared with the previous 7 days (%s → %s %s)",
			drop.Mul(decimal.NewFromInt(100)).Round(0).String(),
			core.FormatAmount(a2), core.FormatAmount(a1), n.config.CurrencyLabel),
	}, nil
}

func (n *Notifier) weeklyDigest(ctx context.Context, now time.Time) (*core.Notification, error) {
	today := core.DateOf(now)
	sum, err := n.reports.Period(ctx, today.AddDays(-6), today)
	if err != nil {
		return nil, err
	}
	return &core.Notification{
		Severity: core.SeverityInfo,
		Title:    "Last 7 days summary",
		Message:  n.digest(sum),
	}, nil
}

func (n *Notifier) monthlyDigest(ctx context.Context, now time.Time) (*core.Notification, error) {
	sum, err := n.reports.Monthly(ctx, now.Year(), int(now.Month()))
	if err != nil {
		return nil, err
	}
	return &core.Notification{
		Severity: core.SeverityInfo,
		Title:    "Current month summary",
		Message:  n.digest(sum),
	}, nil
}

func (n *Notifier) digest(sum core.PeriodSummary) string {
	c := n.config.CurrencyLabel
	return fmt.Sprintf("Sales: %s %s | Purchases: %s %s | Damage: %s %s | Salaries: %s %s | Net profit: %s %s",
		core.FormatAmount(sum.TotalSales), c,
		core.FormatAmount(sum.Purchases), c,
		core.FormatAmount(sum.Damage), c,
		core.FormatAmount(sum.Salaries), c,
		core.FormatAmount(sum.NetProfit), c)
}

// List returns recent notifications, newest first.
func (n *Notifier) List(ctx context.Context, limit int) ([]core.Notification, error) {
	return n.store.ListNotifications(ctx, limit)
}

// MarkAllRead marks every unread notification as read.
func (n *Notifier) MarkAllRead(ctx context.Context) (int, error) {
	return n.store.MarkAllRead(ctx)
}

// Run evaluates on every interval until ctx is done.
func (n *Notifier) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := n.Evaluate(ctx); err != nil {
			slog.WarnContext(ctx, "Notification evaluation failed", "component", "notifier", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func average(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total.Div(decimal.NewFromInt(int64(len(values))))
}

// Package remote describes the hosted relational backend the inventory
// core talks to.
package remote

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"jard/internal/core"
)

var (
	ErrNotFound = errors.New("remote record not found")
	// ErrUnavailable is returned when the backend cannot be reached.
	ErrUnavailable = errors.New("remote backend unavailable")
)

// SalesStats summarises total_sales over every stored day.
type SalesStats struct {
	Days   int
	Total  decimal.Decimal
	Latest core.Date
}

// Ports for outbound adapters.
type (
	// RecordStore holds one row per inventory_date; writes are upserts keyed
	// by date, last write wins.
	RecordStore interface {
		// Upsert writes p and returns the server timestamp of the row.
		Upsert(ctx context.Context, p core.RecordPayload) (time.Time, error)
		// Select returns ErrNotFound when no row exists for date.
		Select(ctx context.Context, date core.Date) (core.RecordPayload, error)
		// SelectRange returns rows with from <= date <= to, oldest first.
		SelectRange(ctx context.Context, from, to core.Date) ([]core.RecordPayload, error)
		// List returns the most recent rows, newest first.
		List(ctx context.Context, limit int) ([]core.RecordPayload, error)
		Delete(ctx context.Context, date core.Date) error
		SalesStats(ctx context.Context) (SalesStats, error)
		Ping(ctx context.Context) error
	}

	CategorySource interface {
		// FetchCategories returns the active category table.
		FetchCategories(ctx context.Context) ([]core.CategoryEntry, error)
	}

	NotificationStore interface {
		InsertNotification(ctx context.Context, n core.Notification) error
		// HasNotificationSince reports whether a notification of type typ was
		// created at or after since.
		HasNotificationSince(ctx context.Context, typ string, since time.Time) (bool, error)
		// ListNotifications returns the newest notifications first.
		ListNotifications(ctx context.Context, limit int) ([]core.Notification, error)
		MarkAllRead(ctx context.Context) (int, error)
	}

	// Backend bundles every port a single hosted service provides.
	Backend interface {
		RecordStore
		CategorySource
		NotificationStore
		Close() error
	}
)

// Package reclaim composes address validation, the token account scan and the
// price cache into a single wallet check.
package reclaim

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"rent-reclaim-bot/internal/domain"
	"rent-reclaim-bot/internal/observability"
	"rent-reclaim-bot/internal/storage"
	"rent-reclaim-bot/internal/wallet"
)

// PriceSource is the subset of price.Cache used by the service.
type PriceSource interface {
	Price(ctx context.Context) float64
}

// AccountCounter is the subset of wallet.Scanner used by the service.
type AccountCounter interface {
	CountEmptyAccounts(ctx context.Context, addr wallet.Address) (wallet.ScanResult, error)
}

// Result is the outcome of a successful check.
type Result struct {
	Address  wallet.Address
	Scan     wallet.ScanResult
	Estimate *wallet.Estimate // nil when no empty accounts were found
}

// Reclaimable reports whether any empty accounts were found.
func (r *Result) Reclaimable() bool {
	return r.Scan.EmptyAccounts > 0
}

// Options configures a Service.
type Options struct {
	ScanLog storage.ScanLogStore // optional
	Logger  logrus.FieldLogger
	Now     func() time.Time
}

// Service runs wallet checks.
type Service struct {
	scanner AccountCounter
	prices  PriceSource
	scanLog storage.ScanLogStore
	logger  logrus.FieldLogger
	now     func() time.Time
}

// NewService creates a Service.
func NewService(scanner AccountCounter, prices PriceSource, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		scanner: scanner,
		prices:  prices,
		scanLog: opts.ScanLog,
		logger:  logger.WithField("component", "reclaim"),
		now:     now,
	}
}

// Check validates raw, scans the wallet and, only if empty accounts exist, prices the estimate.
// Errors wrap wallet.ErrInvalidAddress or are a *wallet.ChainQueryError.
func (s *Service) Check(ctx context.Context, raw string) (*Result, error) {
	addr, err := wallet.ParseAddress(raw)
	if err != nil {
		observability.RecordScan(string(domain.ScanOutcomeInvalidAddress), 0)
		return nil, err
	}

	start := s.now()
	log := s.logger.WithFields(logrus.Fields{
		"address": addr.Short(),
		"kind":    addr.Kind(),
	})

	scan, err := s.scanner.CountEmptyAccounts(ctx, addr)
	if err != nil {
		elapsed := s.now().Sub(start)
		observability.RecordScan(string(domain.ScanOutcomeChainError), elapsed.Seconds())
		log.WithError(err).Error("wallet scan failed")
		s.record(ctx, &domain.ScanRecord{
			Outcome:     domain.ScanOutcomeChainError,
			AddressKind: addr.Kind(),
			DurationMs:  elapsed.Milliseconds(),
		}, start)
		return nil, err
	}

	result := &Result{Address: addr, Scan: scan}
	outcome := domain.ScanOutcomeClean
	rec := &domain.ScanRecord{
		AddressKind:   addr.Kind(),
		TotalAccounts: scan.TotalAccounts,
		EmptyAccounts: scan.EmptyAccounts,
	}

	if scan.EmptyAccounts > 0 {
		outcome = domain.ScanOutcomeReclaimable
		est := wallet.EstimateReclaim(scan.EmptyAccounts, s.prices.Price(ctx))
		result.Estimate = &est
		rec.NetSOL = est.NetSOL
		rec.PriceUSD = est.PriceUSD
		rec.NetUSD = est.NetUSD
	}

	elapsed := s.now().Sub(start)
	rec.Outcome = outcome
	rec.DurationMs = elapsed.Milliseconds()

	observability.RecordScan(string(outcome), elapsed.Seconds())
	observability.RecordEmptyAccounts(scan.EmptyAccounts)
	log.WithFields(logrus.Fields{
		"empty": scan.EmptyAccounts,
		"total": scan.TotalAccounts,
	}).Info("wallet scanned")

	s.record(ctx, rec, start)
	return result, nil
}

// record writes an anonymous scan log row. Failures are logged and counted only.
func (s *Service) record(ctx context.Context, rec *domain.ScanRecord, start time.Time) {
	if s.scanLog == nil {
		return
	}
	rec.ScanID = uuid.NewString()
	rec.ScannedAt = start.UnixMilli()
	if err := s.scanLog.Insert(ctx, rec); err != nil && !errors.Is(err, context.Canceled) {
		observability.RecordStorageError("scan_log")
		s.logger.WithError(err).Warn("failed to record scan")
	}
}

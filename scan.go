package stealth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// LedgerRef locates a candidate output on the ledger.
type LedgerRef struct {
	Signature string
	Slot      uint64
}

// Candidate is a ledger output that might belong to an identity. The keys are
// raw encodings as published; the scanner decodes them.
type Candidate struct {
	EphemeralPublic []byte
	OneTimePublic   []byte
	Amount          uint64
	Ref             LedgerRef
}

// Match is a candidate that belongs to the scanned identity. Index is the
// candidate's position in the slice given to Scan; ScanOne leaves it 0.
type Match struct {
	Index     int
	Candidate Candidate
	Recovery  *Recovery
}

// Scanner runs trial recovery of candidates against one identity. Unlinkable
// outputs cannot be indexed, so every candidate costs one scalar
// multiplication; Scan spreads that work over several goroutines.
type Scanner struct {
	id      *Identity
	workers int
	logger  *slog.Logger
	metrics *ScanMetrics
}

type ScanOption func(*Scanner)

// WithWorkers bounds the number of goroutines used by Scan. Values below 1
// are ignored.
func WithWorkers(n int) ScanOption {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithLogger(logger *slog.Logger) ScanOption {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *ScanMetrics) ScanOption {
	return func(s *Scanner) {
		s.metrics = m
	}
}

func NewScanner(id *Identity, opts ...ScanOption) *Scanner {
	s := &Scanner{
		id:      id,
		workers: runtime.GOMAXPROCS(0),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ScanOne checks a single candidate. It returns (nil, nil) when the candidate
// is not ours and an error wrapping ErrInvalidPoint when a key does not decode.
func (s *Scanner) ScanOne(c Candidate) (*Match, error) {
	s.metrics.candidate()

	curve := s.id.Curve
	ephemeral, err := curve.DecodeToPoint(c.EphemeralPublic)
	if err != nil {
		s.metrics.decodeError()
		return nil, fmt.Errorf("ephemeral key: %w", err)
	}

	oneTime, err := curve.DecodeToPoint(c.OneTimePublic)
	if err != nil {
		s.metrics.decodeError()
		return nil, fmt.Errorf("one-time key: %w", err)
	}

	rec, ok := Recover(s.id, oneTime, ephemeral)
	if !ok {
		return nil, nil
	}

	s.metrics.match()
	return &Match{
		Candidate: c,
		Recovery:  rec,
	}, nil
}

// Scan checks every candidate and returns the matches in input order.
// Candidates whose keys do not decode are logged and skipped. If ctx is
// cancelled, Scan wipes any recoveries found so far and returns ctx.Err().
func (s *Scanner) Scan(ctx context.Context, candidates []Candidate) ([]Match, error) {
	start := time.Now()
	defer s.metrics.observe(start)

	results := make([]*Match, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range candidates {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			m, err := s.ScanOne(candidates[i])
			if err != nil {
				s.logger.Debug("skipping candidate",
					"index", i,
					"signature", candidates[i].Ref.Signature,
					"slot", candidates[i].Ref.Slot,
					"error", err,
				)
				return nil
			}

			if m != nil {
				m.Index = i
			}
			results[i] = m
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, m := range results {
			if m != nil {
				m.Recovery.Wipe()
			}
		}
		return nil, err
	}

	matches := make([]Match, 0)
	for _, m := range results {
		if m != nil {
			matches = append(matches, *m)
		}
	}

	s.logger.Debug("scan finished", "candidates", len(candidates), "matches", len(matches))
	return matches, nil
}

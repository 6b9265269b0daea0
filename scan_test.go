package stealth

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestScanner_Scan(t *testing.T) {
	for _, curve := range testCurves() {
		t.Run(curve.Name(), func(t *testing.T) {
			id, err := NewIdentity(curve)
			require.NoError(t, err)
			other, err := NewIdentity(curve)
			require.NoError(t, err)

			var candidates []Candidate
			var want []string
			for i := 0; i < 40; i++ {
				ref := LedgerRef{Signature: fmt.Sprintf("sig-%d", i), Slot: uint64(i)}
				switch {
				case i%10 == 3:
					candidates = append(candidates, Candidate{
						EphemeralPublic: invalidPointEncoding(t, curve),
						OneTimePublic:   curve.BasePoint().Encode(),
						Ref:             ref,
					})
				case i%4 == 0:
					out, err := id.MetaAddress().Initiate()
					require.NoError(t, err)
					candidates = append(candidates, candidateFrom(out, uint64(i), ref))
					want = append(want, ref.Signature)
				default:
					out, err := other.MetaAddress().Initiate()
					require.NoError(t, err)
					candidates = append(candidates, candidateFrom(out, uint64(i), ref))
				}
			}

			reg := prometheus.NewRegistry()
			metrics := NewScanMetrics(reg)
			var logs bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

			scanner := NewScanner(id, WithWorkers(4), WithMetrics(metrics), WithLogger(logger))
			matches, err := scanner.Scan(context.Background(), candidates)
			require.NoError(t, err)

			var got []string
			for _, m := range matches {
				got = append(got, m.Candidate.Ref.Signature)
				require.Equal(t, candidates[m.Index].Ref, m.Candidate.Ref)
				require.True(t, curve.ScalarBaseMul(m.Recovery.SpendScalar).Equals(mustDecode(t, curve, m.Candidate.OneTimePublic)))
				m.Recovery.Wipe()
			}
			require.Equal(t, want, got)

			require.Equal(t, float64(len(candidates)), testutil.ToFloat64(metrics.candidates))
			require.Equal(t, float64(len(want)), testutil.ToFloat64(metrics.matches))
			require.Equal(t, float64(4), testutil.ToFloat64(metrics.decodeErrors))
			require.Contains(t, logs.String(), "skipping candidate")
		})
	}
}

func TestScanner_ScanMatchesSequential(t *testing.T) {
	curve := testCurves()[0]
	id, err := NewIdentity(curve)
	require.NoError(t, err)

	var candidates []Candidate
	for i := 0; i < 25; i++ {
		out, err := id.MetaAddress().Initiate()
		require.NoError(t, err)
		candidates = append(candidates, candidateFrom(out, 1, LedgerRef{Slot: uint64(i)}))
	}

	parallel, err := NewScanner(id, WithWorkers(8)).Scan(context.Background(), candidates)
	require.NoError(t, err)

	sequential := NewScanner(id)
	require.Len(t, parallel, len(candidates))
	for i, c := range candidates {
		m, err := sequential.ScanOne(c)
		require.NoError(t, err)
		require.NotNil(t, m)
		require.Equal(t, m.Candidate.Ref, parallel[i].Candidate.Ref)
		require.True(t, m.Recovery.SpendScalar.Eq(parallel[i].Recovery.SpendScalar))
	}
}

func TestScanner_ScanOne(t *testing.T) {
	curve := testCurves()[0]
	id, err := NewIdentity(curve)
	require.NoError(t, err)

	m, err := NewScanner(id).ScanOne(Candidate{
		EphemeralPublic: make([]byte, 31),
		OneTimePublic:   curve.BasePoint().Encode(),
	})
	require.ErrorIs(t, err, ErrInvalidPoint)
	require.Nil(t, m)

	m, err = NewScanner(id).ScanOne(Candidate{
		EphemeralPublic: curve.BasePoint().Encode(),
		OneTimePublic:   curve.BasePoint().Encode(),
	})
	require.NoError(t, err)
	require.Nil(t, m)
}

func TestScanner_ScanCancelled(t *testing.T) {
	curve := testCurves()[0]
	id, err := NewIdentity(curve)
	require.NoError(t, err)

	out, err := id.MetaAddress().Initiate()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	matches, err := NewScanner(id).Scan(ctx, []Candidate{candidateFrom(out, 1, LedgerRef{})})
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, matches)
}

func candidateFrom(out *InitiatorOutput, amount uint64, ref LedgerRef) Candidate {
	return Candidate{
		EphemeralPublic: out.EphemeralPublic.Encode(),
		OneTimePublic:   out.OneTimePublic.Encode(),
		Amount:          amount,
		Ref:             ref,
	}
}

func mustDecode(t *testing.T, curve Curve, b []byte) Point {
	p, err := curve.DecodeToPoint(b)
	require.NoError(t, err)
	return p
}

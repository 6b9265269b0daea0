package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mr-tron/base58"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	stealth "github.com/athanorlabs/go-stealth"
	"github.com/athanorlabs/go-stealth/memo"
)

// scanInput is one transaction read by scan, as extracted from the ledger by
// an external indexer.
type scanInput struct {
	Signature string `json:"signature"`
	Slot      uint64 `json:"slot"`
	Amount    uint64 `json:"amount"`
	Memo      string `json:"memo"`
}

type scanOutput struct {
	Signature string `json:"signature"`
	Slot      uint64 `json:"slot"`
	Amount    uint64 `json:"amount"`
	OneTime   string `json:"one_time"`
	Memo      string `json:"memo"`
}

func (c *cli) scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Find payments to this identity among JSON transactions on stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.loadIdentity()
			if err != nil {
				return err
			}
			defer id.Wipe()

			inputs, err := readScanInputs(cmd.InOrStdin())
			if err != nil {
				return err
			}

			candidates := make([]stealth.Candidate, 0, len(inputs))
			memos := make([]string, 0, len(inputs))
			for _, in := range inputs {
				ref := stealth.LedgerRef{Signature: in.Signature, Slot: in.Slot}
				cand, err := memo.Candidate(in.Memo, in.Amount, ref)
				if errors.Is(err, memo.ErrNotStealthMemo) {
					continue
				}
				if err != nil {
					c.logger.Warn("skipping transaction", "signature", in.Signature, "error", err)
					continue
				}
				candidates = append(candidates, cand)
				memos = append(memos, in.Memo)
			}

			reg := prometheus.NewRegistry()
			scanner := stealth.NewScanner(id,
				stealth.WithWorkers(c.cfg.Workers),
				stealth.WithLogger(c.logger),
				stealth.WithMetrics(stealth.NewScanMetrics(reg)),
			)

			matches, err := scanner.Scan(cmd.Context(), candidates)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, m := range matches {
				m.Recovery.Wipe()
				if err := enc.Encode(scanOutput{
					Signature: m.Candidate.Ref.Signature,
					Slot:      m.Candidate.Ref.Slot,
					Amount:    m.Candidate.Amount,
					OneTime:   base58.Encode(m.Candidate.OneTimePublic),
					Memo:      memos[m.Index],
				}); err != nil {
					return err
				}
			}

			c.logScanMetrics(reg)
			c.logger.Info("scan complete",
				"transactions", len(inputs),
				"candidates", len(candidates),
				"matches", len(matches),
			)
			return nil
		},
	}
}

func readScanInputs(r io.Reader) ([]scanInput, error) {
	var inputs []scanInput

	dec := json.NewDecoder(r)
	for {
		var in scanInput
		err := dec.Decode(&in)
		if errors.Is(err, io.EOF) {
			return inputs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read transactions: %w", err)
		}
		inputs = append(inputs, in)
	}
}

func (c *cli) logScanMetrics(reg *prometheus.Registry) {
	families, err := reg.Gather()
	if err != nil {
		c.logger.Debug("gather metrics", "error", err)
		return
	}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				c.logger.Debug("metric", "name", mf.GetName(), "value", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				c.logger.Debug("metric", "name", mf.GetName(), "sum", m.GetHistogram().GetSampleSum())
			}
		}
	}
}

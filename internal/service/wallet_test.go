package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
)

func TestRoundUpToUnit(t *testing.T) {
	cases := []struct {
		amount, unit, want int64
	}{
		{1334, 10000, 10000},
		{10000, 10000, 10000},
		{10001, 10000, 20000},
		{25000, 10000, 30000},
		{1, 10000, 10000},
		// Zero unit disables rounding.
		{1334, 0, 1334},
	}
	for _, c := range cases {
		if got := roundUpToUnit(c.amount, c.unit); got != c.want {
			t.Errorf("roundUpToUnit(%d, %d) = %d, want %d", c.amount, c.unit, got, c.want)
		}
	}
}

func TestCharge_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	s := NewWalletService(nil, nil, nil, nil, 10000, "KRW", slog.New(slog.NewTextHandler(io.Discard, nil)))

	if _, err := s.Charge(ctx, ChargeRequest{UserID: "u1", Kind: domain.WalletTxTopUp, Amount: 0}); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount: err = %v, want ErrInvalidAmount", err)
	}
	if _, err := s.Charge(ctx, ChargeRequest{UserID: "u1", Kind: domain.WalletTxTopUp, Amount: -500}); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative amount: err = %v, want ErrInvalidAmount", err)
	}
	if _, err := s.Charge(ctx, ChargeRequest{UserID: "u1", Kind: "bribe", Amount: 1000}); !errors.Is(err, ErrInvalidTxKind) {
		t.Errorf("unknown kind: err = %v, want ErrInvalidTxKind", err)
	}
}

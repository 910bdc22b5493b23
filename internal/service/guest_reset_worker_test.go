package service

import (
	"context"
	"testing"
	"time"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/repository/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const guestWorkspace = int32(1)

func TestGuestResetWorker_DefaultInterval(t *testing.T) {
	worker := NewGuestResetWorker(memory.NewSeededStore(guestWorkspace), guestWorkspace, zerolog.Nop(), 0)

	assert.Equal(t, DefaultGuestResetInterval, worker.interval)
	assert.False(t, worker.IsRunning())
}

func TestGuestResetWorker_StartStop(t *testing.T) {
	worker := NewGuestResetWorker(memory.NewSeededStore(guestWorkspace), guestWorkspace, zerolog.Nop(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)
	worker.Start(ctx)
	assert.True(t, worker.IsRunning())

	worker.Stop()
	assert.False(t, worker.IsRunning())
	worker.Stop()
}

func TestGuestResetWorker_ContextCancelStops(t *testing.T) {
	worker := NewGuestResetWorker(memory.NewSeededStore(guestWorkspace), guestWorkspace, zerolog.Nop(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)
	cancel()

	assert.Eventually(t, func() bool { return !worker.IsRunning() }, time.Second, 5*time.Millisecond)
}

func TestGuestResetWorker_TickRestoresDemoData(t *testing.T) {
	store := memory.NewSeededStore(guestWorkspace)
	accounts := store.Accounts()
	created, err := accounts.Create(&domain.Account{
		WorkspaceID: guestWorkspace,
		Name:        "Visitor Account",
		Type:        domain.AccountTypeCash,
		Balance:     decimal.NewFromInt(5),
		Currency:    "USD",
	})
	require.NoError(t, err)

	worker := NewGuestResetWorker(store, guestWorkspace, zerolog.Nop(), 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)
	defer worker.Stop()

	assert.Eventually(t, func() bool { return worker.Resets() > 0 }, time.Second, 5*time.Millisecond)
	_, err = accounts.GetByID(guestWorkspace, created.ID)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

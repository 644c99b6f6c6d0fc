package dashboard_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/mailflow/internal/domain"
	"github.com/ignite/mailflow/internal/service/dashboard"
)

type staticLog struct {
	entries []domain.CampaignLogEntry
	err     error
}

func (s staticLog) All(context.Context) ([]domain.CampaignLogEntry, error) {
	return s.entries, s.err
}

func entries(statuses ...domain.LogStatus) []domain.CampaignLogEntry {
	out := make([]domain.CampaignLogEntry, len(statuses))
	for i, st := range statuses {
		out[i] = domain.CampaignLogEntry{ID: fmt.Sprint(i), Status: st}
	}
	return out
}

func TestAggregate(t *testing.T) {
	got := dashboard.Aggregate(entries(
		domain.LogSent, domain.LogSent, domain.LogFailed,
		domain.LogOpened, domain.LogClicked, domain.LogSent,
	))
	assert.Equal(t, domain.DashboardStats{Sent: 3, Opened: 1, Clicked: 1, Failed: 1}, got)
	assert.Equal(t, 6, got.Sum())
}

func TestAggregateIgnoresUnknownStatus(t *testing.T) {
	in := entries(domain.LogSent, "bounced", "", domain.LogFailed)
	got := dashboard.Aggregate(in)
	assert.Equal(t, domain.DashboardStats{Sent: 1, Failed: 1}, got)
	assert.LessOrEqual(t, got.Sum(), len(in))
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	in := entries(domain.LogSent, domain.LogFailed, domain.LogSent, domain.LogOpened, "x", domain.LogClicked, domain.LogFailed)
	want := dashboard.Aggregate(in)

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		shuffled := append([]domain.CampaignLogEntry(nil), in...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, dashboard.Aggregate(shuffled))
	}
}

func TestAggregateEmpty(t *testing.T) {
	assert.Equal(t, domain.DashboardStats{}, dashboard.Aggregate(nil))
}

func TestDashboardRecentNewestFirst(t *testing.T) {
	log := make([]domain.LogStatus, 15)
	for i := range log {
		log[i] = domain.LogSent
	}
	svc := dashboard.NewService(staticLog{entries: entries(log...)})

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 15, d.Total)
	assert.Equal(t, 15, d.Stats.Sent)
	require.Len(t, d.Recent, 10)
	assert.Equal(t, "14", d.Recent[0].ID)
	assert.Equal(t, "5", d.Recent[9].ID)
}

func TestRecentShortLog(t *testing.T) {
	got := dashboard.Recent(entries(domain.LogSent, domain.LogFailed), 10)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.NotNil(t, dashboard.Recent(nil, 10))
}

func TestRecentNegativeLimit(t *testing.T) {
	got := dashboard.Recent(entries(domain.LogSent, domain.LogFailed), -3)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStatsPropagatesErrors(t *testing.T) {
	boom := errors.New("storage down")
	_, err := dashboard.NewService(staticLog{err: boom}).Stats(context.Background())
	assert.ErrorIs(t, err, boom)
}

package kvstore_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/mailflow/internal/domain"
	"github.com/ignite/mailflow/internal/repository/kvstore"
	"github.com/ignite/mailflow/internal/storage"
)

func TestLogRepoCap(t *testing.T) {
	ctx := context.Background()
	repo := kvstore.NewLogRepo(storage.NewMemory(), 1000)

	for i := 0; i < 1001; i++ {
		require.NoError(t, repo.Append(ctx, domain.CampaignLogEntry{
			ID:     fmt.Sprintf("log-%d", i),
			Status: domain.LogSent,
		}))
	}

	entries, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1000)
	assert.Equal(t, "log-1", entries[0].ID, "oldest entry must be evicted")
	assert.Equal(t, "log-1000", entries[999].ID, "newest entry must be present")
}

func TestLogRepoNeverExceedsCap(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()

	// A log written under a larger cap shrinks on the next append.
	big := kvstore.NewLogRepo(kv, 10)
	for i := 0; i < 10; i++ {
		require.NoError(t, big.Append(ctx, domain.CampaignLogEntry{ID: fmt.Sprint(i)}))
	}

	small := kvstore.NewLogRepo(kv, 3)
	require.NoError(t, small.Append(ctx, domain.CampaignLogEntry{ID: "new"}))

	entries, err := small.All(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"8", "9", "new"}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
}

func TestLogRepoEmpty(t *testing.T) {
	repo := kvstore.NewLogRepo(storage.NewMemory(), 0)
	entries, err := repo.All(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestDefaultReadsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()

	templates := kvstore.NewTemplateRepo(kv)
	first, err := templates.List(ctx)
	require.NoError(t, err)
	second, err := templates.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, domain.DefaultTemplateID, first[0].ID)
	assert.Equal(t, first, second)

	settings := kvstore.NewSettingsRepo(kv)
	a, err := settings.Get(ctx)
	require.NoError(t, err)
	b, err := settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSmtpConfig(), a)
	assert.Equal(t, a, b)

	contacts := kvstore.NewContactRepo(kv)
	c1, err := contacts.List(ctx)
	require.NoError(t, err)
	c2, err := contacts.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, c1)
	assert.Equal(t, c1, c2)

	// Reads must not write the defaults back.
	found, err := kv.Get(ctx, storage.KeyTemplates, &[]domain.EmailTemplate{})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTemplateRepoEmptyListIsNotReseeded(t *testing.T) {
	ctx := context.Background()
	repo := kvstore.NewTemplateRepo(storage.NewMemory())

	require.NoError(t, repo.Update(ctx, func([]domain.EmailTemplate) ([]domain.EmailTemplate, error) {
		return nil, nil
	}))

	templates, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, templates)
}

func TestContactRepoUpdateAbortsOnError(t *testing.T) {
	ctx := context.Background()
	repo := kvstore.NewContactRepo(storage.NewMemory())
	require.NoError(t, repo.Save(ctx, []domain.Contact{{ID: "1", Email: "a@b.co"}}))

	boom := errors.New("boom")
	err := repo.Update(ctx, func(c []domain.Contact) ([]domain.Contact, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	contacts, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, contacts, 1)
}

func TestSessionRepo(t *testing.T) {
	ctx := context.Background()
	repo := kvstore.NewSessionRepo(storage.NewMemory())

	set, err := repo.IsSet(ctx)
	require.NoError(t, err)
	assert.False(t, set)

	require.NoError(t, repo.Set(ctx, time.Now()))
	set, err = repo.IsSet(ctx)
	require.NoError(t, err)
	assert.True(t, set)

	require.NoError(t, repo.Clear(ctx))
	set, err = repo.IsSet(ctx)
	require.NoError(t, err)
	assert.False(t, set)
}

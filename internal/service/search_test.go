// Тесты поиска движка:
//   - выдача ранжируется по релевантности и кэшируется;
//   - пустой запрос даёт пустую выдачу без обращения к апстриму;
//   - пустая выдача активного провайдера добирается резервным;
//   - отказ обоих путей — ErrUnavailable;
//   - auth-отказ первичного при поиске тоже липкий;
//   - после failover заблокированный первичный не вызывается вовсе;
//   - пустой итог не кэшируется.
package service

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globalwire/newspulse/internal/models"
)

func TestSearch_RanksAndCaches(t *testing.T) {
	svc, primary, _ := newEngine(t)
	ctx := context.Background()

	raw := []models.Article{
		searchable("weak", "Morning digest", "Cyber briefly mentioned"),
		searchable("strong", "Cyber attack disrupts grid", "Cyber incident details"),
	}

	primary.EXPECT().
		Search(gomock.Any(), "cyber", models.CategoryTop).
		Return(raw, nil).
		Times(1)

	got, err := svc.Search(ctx, "  Cyber ", "all")
	require.NoError(t, err)
	require.Equal(t, []string{"strong", "weak"}, ids(got))

	// Повторный запрос обслуживается из кэша.
	cached, err := svc.Search(ctx, "cyber", models.CategoryTop)
	require.NoError(t, err)
	assert.Equal(t, ids(got), ids(cached))
}

func TestSearch_EmptyQueryReturnsEmpty(t *testing.T) {
	svc, _, _ := newEngine(t)
	ctx := context.Background()

	// Ни одного обращения к провайдерам: пустой запрос отсекается сразу.
	got, err := svc.Search(ctx, "   ", models.CategoryWorld)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearch_BackupOnEmpty(t *testing.T) {
	svc, primary, backup := newEngine(t)
	ctx := context.Background()

	primary.EXPECT().
		Search(gomock.Any(), "quantum", models.CategoryTop).
		Return(nil, nil).
		Times(1)
	backup.EXPECT().
		Search(gomock.Any(), "quantum", models.CategoryTop).
		Return([]models.Article{searchable("bk", "Quantum leap", "Research note")}, nil).
		Times(1)

	got, err := svc.Search(ctx, "quantum", models.CategoryTop)
	require.NoError(t, err)
	require.Equal(t, []string{"bk"}, ids(got))
	assert.Equal(t, primaryName, svc.ActiveProvider())
}

func TestSearch_Unavailable(t *testing.T) {
	svc, primary, backup := newEngine(t)
	ctx := context.Background()

	primary.EXPECT().
		Search(gomock.Any(), "quantum", models.CategoryTop).
		Return(nil, transportErr()).
		Times(1)
	backup.EXPECT().
		Search(gomock.Any(), "quantum", models.CategoryTop).
		Return(nil, transportErr()).
		Times(1)

	_, err := svc.Search(ctx, "quantum", models.CategoryTop)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestSearch_AuthFailoverSticky(t *testing.T) {
	svc, primary, backup := newEngine(t)
	ctx := context.Background()

	primary.EXPECT().
		Search(gomock.Any(), "markets", models.CategoryTop).
		Return(nil, authBlockedErr()).
		Times(1)
	backup.EXPECT().
		Search(gomock.Any(), "markets", models.CategoryTop).
		Return([]models.Article{searchable("bk", "Markets rally", "Stocks up")}, nil).
		Times(1)

	got, err := svc.Search(ctx, "markets", models.CategoryTop)
	require.NoError(t, err)
	require.Equal(t, []string{"bk"}, ids(got))
	assert.Equal(t, backupName, svc.ActiveProvider())
}

func TestSearch_BlockedPrimaryNotFallback(t *testing.T) {
	svc, primary, backup := newEngine(t)
	ctx := context.Background()

	primary.EXPECT().
		Search(gomock.Any(), "markets", models.CategoryTop).
		Return(nil, authBlockedErr()).
		Times(1)
	backup.EXPECT().
		Search(gomock.Any(), "markets", models.CategoryTop).
		Return([]models.Article{searchable("bk", "Markets rally", "Stocks up")}, nil).
		Times(1)

	_, err := svc.Search(ctx, "markets", models.CategoryTop)
	require.NoError(t, err)
	require.Equal(t, backupName, svc.ActiveProvider())

	// Пустая выдача резервного: заблокированный первичный не добирает
	// результат, выдача остаётся пустой.
	backup.EXPECT().
		Search(gomock.Any(), "quantum", models.CategoryTop).
		Return(nil, nil).
		Times(1)

	got, err := svc.Search(ctx, "quantum", models.CategoryTop)
	require.NoError(t, err)
	assert.Empty(t, got)

	// Отказ резервного при заблокированном первичном — сразу ErrUnavailable.
	backup.EXPECT().
		Search(gomock.Any(), "energy", models.CategoryTop).
		Return(nil, transportErr()).
		Times(1)

	_, err = svc.Search(ctx, "energy", models.CategoryTop)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestSearch_EmptyNotCached(t *testing.T) {
	svc, primary, backup := newEngine(t)
	ctx := context.Background()

	primary.EXPECT().
		Search(gomock.Any(), "nothing", models.CategoryTop).
		Return(nil, nil).
		Times(2)
	backup.EXPECT().
		Search(gomock.Any(), "nothing", models.CategoryTop).
		Return(nil, nil).
		Times(2)

	got, err := svc.Search(ctx, "nothing", models.CategoryTop)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = svc.Search(ctx, "nothing", models.CategoryTop)
	require.NoError(t, err)
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/health-records/internal/domain"
	apperrors "github.com/vladimiradmaev/health-records/internal/errors"
	"github.com/vladimiradmaev/health-records/internal/repository"
	"github.com/vladimiradmaev/health-records/internal/state"
)

func newTestDietService(store domain.Store, advisor domain.HealthAdvisor) *DietService {
	svc := NewDietService(store, advisor, state.NewManager(time.Minute), time.Second)
	svc.now = fixedNow
	return svc
}

func TestAddEntriesMultiTab(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newTestDietService(store, &fakeAdvisor{})
	breakfast := fixedNow().Add(-10 * time.Hour)

	saved, err := svc.AddEntries(ctx, "acc", domain.AddDietEntriesRequest{Drafts: []domain.DietEntryDraft{
		{Type: domain.DietFood, Name: " Eggs ", Timestamp: &breakfast, Notes: " fried ", Intensity: 5, AfterFoodDelay: domain.Onset1h},
		{Type: domain.DietMedicine, Name: "   "},
		{Type: domain.DietSymptom, Name: "Bloating", AfterFoodDelay: domain.Onset2h},
	}})
	require.NoError(t, err)
	require.Len(t, saved, 2)

	food := saved[0]
	assert.Equal(t, "Eggs", food.Name)
	assert.Equal(t, "fried", food.Notes)
	assert.Equal(t, breakfast, food.Timestamp)
	assert.Zero(t, food.Intensity, "intensity applies to symptoms only")
	assert.Empty(t, food.AfterFoodDelay)

	symptom := saved[1]
	assert.Equal(t, defaultIntensity, symptom.Intensity)
	assert.Equal(t, domain.Onset2h, symptom.AfterFoodDelay)
	assert.Equal(t, fixedNow(), symptom.Timestamp)

	list, err := svc.List(ctx, "acc")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bloating", list[0].Name, "newest first")
}

func TestAddEntriesNothingNamed(t *testing.T) {
	svc := newTestDietService(repository.NewMemoryStore(), &fakeAdvisor{})
	_, err := svc.AddEntries(context.Background(), "acc", domain.AddDietEntriesRequest{Drafts: []domain.DietEntryDraft{{Type: domain.DietFood}}})
	assert.ErrorIs(t, err, domain.ErrNothingToSave)
	assert.Equal(t, 400, apperrors.HTTPStatus(err))
}

func TestDeleteDietEntry(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newTestDietService(store, &fakeAdvisor{})
	saved, err := svc.AddEntries(ctx, "acc", domain.AddDietEntriesRequest{Drafts: []domain.DietEntryDraft{{Type: domain.DietFood, Name: "Tea"}}})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "acc", saved[0].ID))
	assert.Equal(t, 404, apperrors.HTTPStatus(svc.Delete(ctx, "acc", saved[0].ID)))
}

func TestSuggestPassesThroughAdvisor(t *testing.T) {
	want := domain.DietSuggestions{Food: []string{"Eggs"}, Symptoms: []string{}, Medicines: []string{"Vitamin D"}}
	svc := newTestDietService(repository.NewMemoryStore(), &fakeAdvisor{diet: want})
	assert.Equal(t, want, svc.Suggest(context.Background(), "acc"))
}

package requests

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/medshare/portal-dashboard/pkg/types"
)

func TestDebounceRunsAfterWindow(t *testing.T) {
	repo := &fakeRepository{}
	validator := NewValidator(repo, testLogger())
	debounced := NewDebouncedValidator(validator, 20*time.Millisecond, testLogger())

	var mu sync.Mutex
	var applied *types.Classification

	debounced.Schedule("P001", func(result *types.Classification) {
		mu.Lock()
		applied = result
		mu.Unlock()
	})

	assert.True(t, debounced.Checking())

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return applied != nil
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"P001"}, applied.Valid)
	mu.Unlock()
	assert.False(t, debounced.Checking())
}

func TestDebounceNewInputSupersedesScheduledCheck(t *testing.T) {
	repo := &fakeRepository{}
	validator := NewValidator(repo, testLogger())
	debounced := NewDebouncedValidator(validator, 20*time.Millisecond, testLogger())

	var mu sync.Mutex
	var results []*types.Classification
	record := func(result *types.Classification) {
		mu.Lock()
		results = append(results, result)
		mu.Unlock()
	}

	debounced.Schedule("PXX", record)
	debounced.Schedule("P001, P002", record)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(results) > 0
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, results, 1)
	assert.Equal(t, []string{"P001", "P002"}, results[0].Valid)
	assert.Empty(t, results[0].Malformed)
}

func TestDebounceLatestReflectsAppliedResult(t *testing.T) {
	repo := &fakeRepository{ids: map[string]bool{"P002": true}}
	validator := NewValidator(repo, testLogger())
	debounced := NewDebouncedValidator(validator, 10*time.Millisecond, testLogger())

	latest := debounced.Latest()
	assert.Empty(t, latest.Valid)
	assert.False(t, latest.Checking)

	debounced.Schedule("P001, P002", nil)
	assert.True(t, debounced.Latest().Checking)

	assert.Eventually(t, func() bool {
		return !debounced.Checking()
	}, time.Second, 5*time.Millisecond)

	latest = debounced.Latest()
	assert.Equal(t, []string{"P001"}, latest.Valid)
	assert.Equal(t, []string{"P002"}, latest.AlreadyRequested)
	assert.False(t, latest.Checking)
}

func TestDebounceCancelDropsPendingCheck(t *testing.T) {
	repo := &fakeRepository{}
	validator := NewValidator(repo, testLogger())
	debounced := NewDebouncedValidator(validator, 20*time.Millisecond, testLogger())

	applied := false
	debounced.Schedule("P001", func(*types.Classification) {
		applied = true
	})
	debounced.Cancel()

	assert.False(t, debounced.Checking())

	time.Sleep(60 * time.Millisecond)
	assert.False(t, applied)
	assert.Equal(t, 0, repo.refreshes)
}

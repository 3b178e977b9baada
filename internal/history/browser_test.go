package history

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/kamilpajak/humanorai/internal/backend"
	"github.com/kamilpajak/humanorai/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu       sync.Mutex
	items    []models.HistoryEntry
	loadErr  error
	clearErr error
	limits   []int
	clears   int
	gate     func(limit int)
}

func (f *fakeStore) History(_ context.Context, limit int) ([]models.HistoryEntry, error) {
	f.mu.Lock()
	f.limits = append(f.limits, limit)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		gate(limit)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	n := min(limit, len(f.items))
	return append([]models.HistoryEntry(nil), f.items[:n]...), nil
}

func (f *fakeStore) ClearHistory(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.items = nil
	return nil
}

func entries(n int) []models.HistoryEntry {
	out := make([]models.HistoryEntry, n)
	for i := range out {
		out[i] = models.HistoryEntry{ID: strconv.Itoa(n - i), FinalLabel: models.LabelAI}
	}
	return out
}

func TestLoadRejectsNonPositiveLimit(t *testing.T) {
	store := &fakeStore{}
	b := NewBrowser(store)

	_, err := b.Load(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidLimit)
	_, err = b.Load(context.Background(), -3)
	assert.ErrorIs(t, err, ErrInvalidLimit)
	assert.Empty(t, store.limits)
}

func TestLoadAppliesSnapshotInOrder(t *testing.T) {
	store := &fakeStore{items: entries(5)}
	b := NewBrowser(store)

	items, err := b.Load(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []int{3}, store.limits)

	v := b.View()
	assert.False(t, v.Loading)
	assert.Empty(t, v.Err)
	assert.Equal(t, []string{"5", "4", "3"}, []string{v.Items[0].ID, v.Items[1].ID, v.Items[2].ID})
	assert.False(t, v.Empty())
}

func TestLoadFailureSignalsNoData(t *testing.T) {
	store := &fakeStore{items: entries(2)}
	b := NewBrowser(store)
	_, err := b.Load(context.Background(), 50)
	require.NoError(t, err)

	store.loadErr = &backend.APIError{StatusCode: 503}
	_, err = b.Load(context.Background(), 50)
	require.Error(t, err)

	v := b.View()
	assert.Nil(t, v.Items)
	assert.Equal(t, "History alınamadı: API 503", v.Err)
	assert.True(t, v.Empty())
	assert.Len(t, b.snapshot, 2, "previous snapshot stays in the store")

	store.loadErr = nil
	_, err = b.Load(context.Background(), 50)
	require.NoError(t, err)
	v = b.View()
	assert.Len(t, v.Items, 2)
	assert.Empty(t, v.Err)
}

func TestViewEmptyRule(t *testing.T) {
	assert.True(t, View{}.Empty())
	assert.False(t, View{Loading: true}.Empty())
	assert.False(t, View{Items: entries(1)}.Empty())
	assert.True(t, View{Items: []models.HistoryEntry{}}.Empty())
}

func TestViewLoadingWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	store := &fakeStore{gate: func(int) { <-release }}
	b := NewBrowser(store)

	done := make(chan error, 1)
	go func() {
		_, err := b.Load(context.Background(), 50)
		done <- err
	}()

	require.Eventually(t, func() bool { return b.View().Loading }, time.Second, 5*time.Millisecond)
	assert.False(t, b.View().Empty())

	close(release)
	require.NoError(t, <-done)
	assert.True(t, b.View().Empty())
}

func TestSupersededLoadIsDiscarded(t *testing.T) {
	slow := make(chan struct{})
	started := make(chan struct{})
	store := &fakeStore{items: entries(10)}
	store.gate = func(limit int) {
		if limit == 1 {
			close(started)
			<-slow
		}
	}
	b := NewBrowser(store)

	done := make(chan error, 1)
	go func() {
		_, err := b.Load(context.Background(), 1)
		done <- err
	}()
	<-started

	items, err := b.Load(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, items, 4)

	close(slow)
	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.Len(t, b.View().Items, 4)
}

func TestClearReloadsWithLastLimit(t *testing.T) {
	store := &fakeStore{items: entries(3)}
	b := NewBrowser(store)
	_, err := b.Load(context.Background(), 20)
	require.NoError(t, err)

	items, err := b.Clear(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 1, store.clears)
	assert.Equal(t, []int{20, 20}, store.limits)
	assert.True(t, b.View().Empty())
}

func TestClearUsesDefaultLimitWhenNothingLoaded(t *testing.T) {
	store := &fakeStore{}
	b := NewBrowser(store)

	_, err := b.Clear(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{DefaultLimit}, store.limits)
}

func TestClearUsesConfiguredLimit(t *testing.T) {
	store := &fakeStore{items: entries(3)}
	b := NewBrowser(store, WithLimit(7))

	_, err := b.Clear(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{7}, store.limits)
}

func TestClearFailureDoesNotReload(t *testing.T) {
	store := &fakeStore{items: entries(2), clearErr: errors.New("connection refused")}
	b := NewBrowser(store)
	_, err := b.Load(context.Background(), 50)
	require.NoError(t, err)

	_, err = b.Clear(context.Background())
	require.Error(t, err)
	assert.Equal(t, []int{50}, store.limits)

	v := b.View()
	assert.Equal(t, "History temizlenemedi: connection refused", v.Err)
	assert.Len(t, v.Items, 2)
}

func TestClosedBrowserIgnoresLateResponse(t *testing.T) {
	release := make(chan struct{})
	store := &fakeStore{items: entries(2), gate: func(int) { <-release }}
	b := NewBrowser(store)

	done := make(chan error, 1)
	go func() {
		_, err := b.Load(context.Background(), 50)
		done <- err
	}()
	require.Eventually(t, func() bool { return b.View().Loading }, time.Second, 5*time.Millisecond)

	b.Close()
	assert.False(t, b.View().Loading)
	assert.True(t, b.View().Empty())

	close(release)
	assert.ErrorIs(t, <-done, ErrClosed)
	assert.Nil(t, b.View().Items)
	assert.False(t, b.View().Loading)

	_, err := b.Load(context.Background(), 50)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = b.Clear(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

// memoryBackend serves the history endpoints from a slice.
func memoryBackend(t *testing.T, items []map[string]any) *backend.Client {
	t.Helper()
	var mu sync.Mutex
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/history", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		n := min(limit, len(items))
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items[:n]})
	})
	mux.HandleFunc("DELETE /api/history", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		items = items[:0]
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return backend.NewClient(srv.URL)
}

func TestScenarioEmptyStore(t *testing.T) {
	b := NewBrowser(memoryBackend(t, nil))

	items, err := b.Load(context.Background(), 50)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.True(t, b.View().Empty())
}

func TestScenarioClearThenLoad(t *testing.T) {
	b := NewBrowser(memoryBackend(t, []map[string]any{
		{"id": 2, "created_at": "2025-03-01T10:00:00Z", "text_len": 40, "final_label": "ai",
			"text_preview": "second", "logreg_ai": 90.0, "svm_ai": 80.0, "nb_ai": 70.0},
		{"id": 1, "created_at": "2025-03-01T09:00:00Z", "text_len": 10, "final_label": "human",
			"text_preview": "first", "logreg_ai": 10.0, "svm_ai": 20.0, "nb_ai": 30.0},
	}))

	items, err := b.Load(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "2", items[0].ID)

	_, err = b.Clear(context.Background())
	require.NoError(t, err)

	items, err = b.Load(context.Background(), 50)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.True(t, b.View().Empty())
}

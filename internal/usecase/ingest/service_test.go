package ingest

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/LLkaia/news-laptops-ms/internal/domain"
)

// mockStore is an in-memory article store keyed by link.
type mockStore struct {
	byLink map[string]*domain.Article
	nextID int

	findErr    error
	insertErr  error
	addTagsErr error

	addTagsCalls int
	insertCalls  int
}

func newMockStore() *mockStore {
	return &mockStore{byLink: map[string]*domain.Article{}}
}

func (m *mockStore) FindByLink(_ context.Context, link string) (domain.Article, error) {
	if m.findErr != nil {
		return domain.Article{}, m.findErr
	}
	if a, ok := m.byLink[link]; ok {
		return *a, nil
	}
	return domain.Article{}, domain.ErrArticleNotFound
}

func (m *mockStore) Insert(_ context.Context, a domain.Article) (domain.Article, error) {
	m.insertCalls++
	if m.insertErr != nil {
		return domain.Article{}, m.insertErr
	}
	if _, ok := m.byLink[a.Link]; ok {
		return domain.Article{}, domain.ErrDuplicateLink
	}
	m.nextID++
	a.ID = string(rune('a' + m.nextID - 1))
	m.byLink[a.Link] = &a
	return a, nil
}

func (m *mockStore) AddTags(_ context.Context, id string, tags []string) error {
	m.addTagsCalls++
	if m.addTagsErr != nil {
		return m.addTagsErr
	}
	for _, a := range m.byLink {
		if a.ID == id {
			a.Tags = domain.UnionTags(a.Tags, tags)
			return nil
		}
	}
	return domain.ErrArticleNotFound
}

func TestMerge_InsertsNewArticle(t *testing.T) {
	store := newMockStore()
	svc := New(store, zap.NewNop())

	raw := []domain.RawArticle{{
		Link:  "https://example.com/l",
		Title: "T",
		Tags:  []string{"X", "y"},
	}}

	got, err := svc.Merge(context.Background(), raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 article, got %d", len(got))
	}
	if got[0].ID == "" {
		t.Error("expected assigned ID")
	}
	if !reflect.DeepEqual(got[0].Tags, []string{"x", "y"}) {
		t.Errorf("tags = %v, want normalized [x y]", got[0].Tags)
	}
	if got[0].HasContent() {
		t.Error("new article must have empty content")
	}
}

func TestMerge_UnionsTagsOnExistingLink(t *testing.T) {
	store := newMockStore()
	svc := New(store, zap.NewNop())
	ctx := context.Background()

	link := "https://example.com/l"
	if _, err := svc.Merge(ctx, []domain.RawArticle{{Link: link, Tags: []string{"x", "y"}}}); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Merge(ctx, []domain.RawArticle{{Link: link, Tags: []string{"y", "z"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"x", "y", "z"}
	if !reflect.DeepEqual(got[0].Tags, want) {
		t.Errorf("returned tags = %v, want %v", got[0].Tags, want)
	}
	if !reflect.DeepEqual(store.byLink[link].Tags, want) {
		t.Errorf("stored tags = %v, want %v", store.byLink[link].Tags, want)
	}
	if store.insertCalls != 1 {
		t.Errorf("insert calls = %d, want 1 (second merge must not insert)", store.insertCalls)
	}
}

func TestMerge_IdempotentForSameRawArticle(t *testing.T) {
	store := newMockStore()
	svc := New(store, zap.NewNop())
	ctx := context.Background()

	raw := []domain.RawArticle{{Link: "https://example.com/l", Tags: []string{"x", "y"}}}
	if _, err := svc.Merge(ctx, raw); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Merge(ctx, raw); err != nil {
		t.Fatal(err)
	}

	if len(store.byLink) != 1 {
		t.Fatalf("expected exactly one stored article, got %d", len(store.byLink))
	}
	if store.addTagsCalls != 0 {
		t.Errorf("identical tag set must skip the store-side union, got %d calls", store.addTagsCalls)
	}
}

func TestMerge_DoesNotTouchExistingFields(t *testing.T) {
	store := newMockStore()
	svc := New(store, zap.NewNop())
	ctx := context.Background()

	link := "https://example.com/l"
	if _, err := svc.Merge(ctx, []domain.RawArticle{{Link: link, Title: "Original", Tags: []string{"x"}}}); err != nil {
		t.Fatal(err)
	}
	store.byLink[link].Content = []domain.ContentBlock{{Kind: domain.BlockParagraph, Value: "hydrated"}}

	if _, err := svc.Merge(ctx, []domain.RawArticle{{Link: link, Title: "Changed", Tags: []string{"y"}}}); err != nil {
		t.Fatal(err)
	}

	if store.byLink[link].Title != "Original" {
		t.Errorf("title = %q, ingestion must not overwrite metadata", store.byLink[link].Title)
	}
	if !store.byLink[link].HasContent() {
		t.Error("ingestion must not drop hydrated content")
	}
}

func TestMerge_PartialFailureKeepsEarlierMerges(t *testing.T) {
	store := newMockStore()
	svc := New(store, zap.NewNop())
	ctx := context.Background()

	boom := errors.New("store down")
	raw := []domain.RawArticle{
		{Link: "https://example.com/1", Tags: []string{"a"}},
		{Link: "https://example.com/2", Tags: []string{"b"}},
	}

	// First article merges fine, then the store starts failing.
	merged, err := svc.Merge(ctx, raw[:1])
	if err != nil || len(merged) != 1 {
		t.Fatalf("setup merge failed: %v", err)
	}

	store.findErr = boom
	merged, err = svc.Merge(ctx, raw[1:])
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if len(merged) != 0 {
		t.Errorf("expected no merged articles from failing batch, got %d", len(merged))
	}
	if _, ok := store.byLink["https://example.com/1"]; !ok {
		t.Error("earlier merged article must survive a later failure")
	}
}

func TestMerge_InsertRaceFallsBackToTagUnion(t *testing.T) {
	store := newMockStore()
	ctx := context.Background()

	link := "https://example.com/l"

	// Simulate a concurrent winner: the link appears between our
	// FindByLink miss and the Insert.
	raced := false
	racingStore := &racingInsertStore{mockStore: store, onMiss: func() {
		if !raced {
			raced = true
			winner := domain.Article{ID: "w", Link: link, Tags: []string{"x"}}
			store.byLink[link] = &winner
		}
	}}

	got, err := New(racingStore, zap.NewNop()).Merge(ctx, []domain.RawArticle{{Link: link, Tags: []string{"y"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"x", "y"}; !reflect.DeepEqual(got[0].Tags, want) {
		t.Errorf("tags after race = %v, want %v", got[0].Tags, want)
	}
}

// racingInsertStore makes FindByLink miss once, then lets another
// writer sneak in before Insert.
type racingInsertStore struct {
	*mockStore
	onMiss func()
	missed bool
}

func (r *racingInsertStore) FindByLink(ctx context.Context, link string) (domain.Article, error) {
	if !r.missed {
		r.missed = true
		defer r.onMiss()
		return domain.Article{}, domain.ErrArticleNotFound
	}
	return r.mockStore.FindByLink(ctx, link)
}

package diskcache

import (
	"context"
	"testing"

	"github.com/bethropolis/shade/internal/classify"
)

func failingClassifier(t *testing.T) classify.Classifier {
	t.Helper()
	return classify.Func(func(ctx context.Context, text string, offset, length int) ([]classify.Span, error) {
		t.Errorf("classifier invoked for %q, expected a warm cache hit", text[offset:offset+length])
		return nil, nil
	})
}

func TestSaveLoadRoundtrip(t *testing.T) {
	store, err := OpenAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}

	spans := []classify.Span{{Offset: 0, Length: 3, Category: classify.CategoryKeyword}}
	warm := classify.NewMemo(classify.Func(func(ctx context.Context, text string, offset, length int) ([]classify.Span, error) {
		return spans, nil
	}))
	if _, err := warm.Spans(context.Background(), "int x = 1;", 0, 10); err != nil {
		t.Fatalf("Spans: %v", err)
	}

	if err := store.Save("treesitter", warm); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cold := classify.NewMemo(failingClassifier(t))
	ok, err := store.Load("treesitter", cold)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("Load found no snapshot")
	}

	// The restored memo must answer from cache, even at a different offset.
	got, err := cold.Spans(context.Background(), "xx int x = 1;", 3, 10)
	if err != nil {
		t.Fatalf("Spans after load: %v", err)
	}
	if len(got) != 1 || got[0].Offset != 3 || got[0].Category != classify.CategoryKeyword {
		t.Errorf("restored spans = %+v, want rebased keyword at offset 3", got)
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	store, err := OpenAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}
	ok, err := store.Load("chroma", classify.NewMemo(failingClassifier(t)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Error("Load reported a snapshot in an empty store")
	}
}

func TestSnapshotsAreBackendScoped(t *testing.T) {
	store, err := OpenAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}

	warm := classify.NewMemo(classify.Func(func(ctx context.Context, text string, offset, length int) ([]classify.Span, error) {
		return nil, nil
	}))
	if _, err := warm.Spans(context.Background(), "abc", 0, 3); err != nil {
		t.Fatalf("Spans: %v", err)
	}
	if err := store.Save("treesitter", warm); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cold := classify.NewMemo(failingClassifier(t))
	if ok, _ := store.Load("chroma", cold); ok {
		t.Error("chroma load returned a treesitter snapshot")
	}
	if cold.Len() != 0 {
		t.Errorf("memo gained %d entries from a mismatched backend", cold.Len())
	}
}

func TestDrop(t *testing.T) {
	store, err := OpenAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}
	warm := classify.NewMemo(classify.Func(func(ctx context.Context, text string, offset, length int) ([]classify.Span, error) {
		return nil, nil
	}))
	if _, err := warm.Spans(context.Background(), "abc", 0, 3); err != nil {
		t.Fatalf("Spans: %v", err)
	}
	if err := store.Save("treesitter", warm); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Drop("treesitter"); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if ok, _ := store.Load("treesitter", classify.NewMemo(failingClassifier(t))); ok {
		t.Error("snapshot survived Drop")
	}
	// Dropping twice is fine.
	if err := store.Drop("treesitter"); err != nil {
		t.Errorf("second Drop: %v", err)
	}
}

package content

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newContentServer(t *testing.T, files map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestLoader_FetchImpCategories(t *testing.T) {
	server := newContentServer(t, map[string]string{
		"/impostor-categories.json": `{
			"version": 1,
			"categories": [
				{"id": "animals", "label": " Animales ", "words": [" perro ", "gato", "  "]},
				{"id": "", "label": "Broken", "words": ["x"]},
				{"id": "empty", "label": "Empty", "words": ["", "  "]}
			]
		}`,
	})

	loader := NewLoader(server.URL)
	categories, err := loader.FetchImpCategories(context.Background())
	if err != nil {
		t.Fatalf("FetchImpCategories failed: %v", err)
	}

	if len(categories) != 1 {
		t.Fatalf("expected the invalid entries filtered, got %d categories", len(categories))
	}
	got := categories[0]
	if got.ID != "animals" || got.Label != "Animales" {
		t.Errorf("fields must be trimmed: %+v", got)
	}
	if len(got.Words) != 2 || got.Words[0] != "perro" || got.Words[1] != "gato" {
		t.Errorf("words must be trimmed and blank ones dropped: %v", got.Words)
	}
}

func TestLoader_FetchImpCategoriesAllInvalid(t *testing.T) {
	server := newContentServer(t, map[string]string{
		"/impostor-categories.json": `{"version": 1, "categories": [{"id": "", "label": "", "words": []}]}`,
	})

	loader := NewLoader(server.URL)
	if _, err := loader.FetchImpCategories(context.Background()); !errors.Is(err, ErrNoCategories) {
		t.Errorf("expected ErrNoCategories, got %v", err)
	}
}

func TestLoader_FetchSpotPrompts(t *testing.T) {
	server := newContentServer(t, map[string]string{
		"/spot-prompts.json": `{
			"version": 1,
			"prompts": [
				{"id": "p1", "text": " Quien llegaria tarde a su propia boda ", "category": "social"},
				{"id": "", "text": "broken"},
				{"id": "p2", "text": "   "}
			]
		}`,
	})

	loader := NewLoader(server.URL)
	prompts, err := loader.FetchSpotPrompts(context.Background())
	if err != nil {
		t.Fatalf("FetchSpotPrompts failed: %v", err)
	}

	if len(prompts) != 1 {
		t.Fatalf("expected the invalid cards filtered, got %d prompts", len(prompts))
	}
	if prompts[0].ID != "p1" || prompts[0].Text != "Quien llegaria tarde a su propia boda" {
		t.Errorf("fields must be trimmed: %+v", prompts[0])
	}
}

func TestLoader_FetchSpotPromptsMissingFile(t *testing.T) {
	server := newContentServer(t, nil)

	loader := NewLoader(server.URL)
	if _, err := loader.FetchSpotPrompts(context.Background()); err == nil {
		t.Error("expected an error for a missing deck")
	}
}

// content/content.go
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sapogames/roomkit/games/imp"
	"github.com/sapogames/roomkit/games/spot"
)

// Static game content served next to the app: the impostor category deck
// and the spot prompt deck. Files are fetched fresh on every room entry
// so content updates land without a client release.

var (
	ErrNoCategories = errors.New("category file has no valid entries")
	ErrNoPrompts    = errors.New("prompt file has no valid cards")
)

const fetchTimeout = 15 * time.Second

type categoriesFile struct {
	Categories []imp.Category `json:"categories"`
	Version    int            `json:"version"`
}

type promptsFile struct {
	Prompts []spot.Prompt `json:"prompts"`
	Version int           `json:"version"`
}

type Loader struct {
	baseURL string
	http    *http.Client
}

// NewLoader builds a loader rooted at the game-content base URL.
func NewLoader(baseURL string) *Loader {
	return &Loader{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: fetchTimeout},
	}
}

func (l *Loader) fetch(ctx context.Context, name string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/"+name, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := l.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %d", name, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// FetchImpCategories loads the impostor deck, dropping entries with a
// blank id or label or no usable words.
func (l *Loader) FetchImpCategories(ctx context.Context) ([]imp.Category, error) {
	var file categoriesFile
	if err := l.fetch(ctx, "impostor-categories.json", &file); err != nil {
		return nil, err
	}

	var categories []imp.Category
	for _, c := range file.Categories {
		id := strings.TrimSpace(c.ID)
		label := strings.TrimSpace(c.Label)
		var words []string
		for _, w := range c.Words {
			if t := strings.TrimSpace(w); t != "" {
				words = append(words, t)
			}
		}
		if id == "" || label == "" || len(words) == 0 {
			continue
		}
		categories = append(categories, imp.Category{ID: id, Label: label, Words: words})
	}
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}
	return categories, nil
}

// FetchSpotPrompts loads the spot deck, dropping cards with a blank id
// or text.
func (l *Loader) FetchSpotPrompts(ctx context.Context) ([]spot.Prompt, error) {
	var file promptsFile
	if err := l.fetch(ctx, "spot-prompts.json", &file); err != nil {
		return nil, err
	}

	var prompts []spot.Prompt
	for _, p := range file.Prompts {
		id := strings.TrimSpace(p.ID)
		text := strings.TrimSpace(p.Text)
		if id == "" || text == "" {
			continue
		}
		prompts = append(prompts, spot.Prompt{Category: p.Category, ID: id, Text: text})
	}
	if len(prompts) == 0 {
		return nil, ErrNoPrompts
	}
	return prompts, nil
}

// Package supabase is a minimal PostgREST client for a Supabase vector
// table. Similarity search is performed server-side by a named match
// function (an SQL RPC over the pgvector column).
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ragchat/internal/domain"
)

// Store talks to one table and one match function.
type Store struct {
	url       string
	apiKey    string
	table     string
	queryName string
	client    *http.Client
}

type Config struct {
	URL       string
	APIKey    string
	Table     string
	QueryName string
	Timeout   time.Duration
}

func NewStore(cfg Config) (*Store, error) {
	if cfg.URL == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: supabase URL and key are required", domain.ErrConfiguration)
	}
	if cfg.Table == "" {
		cfg.Table = "documents"
	}
	if cfg.QueryName == "" {
		cfg.QueryName = "match_documents"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Store{
		url:       cfg.URL,
		apiKey:    cfg.APIKey,
		table:     cfg.Table,
		queryName: cfg.QueryName,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

type row struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	Embedding []float32      `json:"embedding"`
}

// Upsert bulk-inserts entries into the table. PostgREST applies the
// whole batch in one statement, so entries are either all visible to
// Search afterwards or none are.
func (s *Store) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]row, len(entries))
	for i, e := range entries {
		rows[i] = row{ID: e.ID, Content: e.Text, Metadata: e.Metadata, Embedding: e.Vector}
	}
	url := fmt.Sprintf("%s/rest/v1/%s", s.url, s.table)
	return s.postJSON(ctx, url, rows, nil, "resolution=merge-duplicates,return=minimal")
}

// Search calls the match function with the query vector and returns its
// rows in the order the function emits them (descending similarity).
func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]domain.Fragment, error) {
	if k <= 0 {
		k = 4
	}
	body := map[string]any{
		"query_embedding": vector,
		"match_count":     k,
	}
	var matches []struct {
		ID         any     `json:"id"`
		Content    string  `json:"content"`
		Similarity float64 `json:"similarity"`
	}
	url := fmt.Sprintf("%s/rest/v1/rpc/%s", s.url, s.queryName)
	if err := s.postJSON(ctx, url, body, &matches, ""); err != nil {
		return nil, err
	}
	out := make([]domain.Fragment, 0, len(matches))
	for _, m := range matches {
		out = append(out, domain.Fragment{EntryID: fmt.Sprint(m.ID), Text: m.Content, Score: m.Similarity})
	}
	return out, nil
}

func (s *Store) postJSON(ctx context.Context, url string, body, out any, prefer string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrIndexUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrIndexUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: POST %s: %s", domain.ErrIndexUnavailable, url, resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decoding response: %s", domain.ErrIndexUnavailable, err)
		}
	}
	return nil
}

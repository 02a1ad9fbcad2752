package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"collapse-mapper/internal/raster"
	"collapse-mapper/internal/sample"
)

// HTTPPredictor talks to a model server exposing predict/train/models
// endpoints. Tiles travel as flat row-major float arrays; the server is
// expected to reshape them against the advertised size and band count.
type HTTPPredictor struct {
	baseURL string
	client  *http.Client
}

// NewHTTPPredictor creates a client for the model server at baseURL.
func NewHTTPPredictor(baseURL string) *HTTPPredictor {
	return &HTTPPredictor{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

type tileBatch struct {
	Count int         `json:"count"`
	Size  int         `json:"size"`
	Bands int         `json:"bands"`
	Tiles [][]float64 `json:"tiles"`
}

type predictResponse struct {
	Maps [][]float64 `json:"maps"`
}

// Predict sends a batch of tiles and returns one single-band probability
// map per tile, in the same order.
func (p *HTTPPredictor) Predict(ctx context.Context, tiles []*raster.Raster) ([]*raster.Raster, error) {
	if len(tiles) == 0 {
		return nil, fmt.Errorf("empty tile batch")
	}
	size, bands := tiles[0].Width, tiles[0].Bands
	batch := tileBatch{Count: len(tiles), Size: size, Bands: bands, Tiles: make([][]float64, len(tiles))}
	for i, t := range tiles {
		if t.Width != size || t.Height != size || t.Bands != bands {
			return nil, fmt.Errorf("tile %d is %dx%dx%d, batch is %dx%dx%d",
				i, t.Width, t.Height, t.Bands, size, size, bands)
		}
		batch.Tiles[i] = t.Pix
	}

	var resp predictResponse
	if err := p.post(ctx, "/predict", batch, &resp); err != nil {
		return nil, err
	}
	if len(resp.Maps) != len(tiles) {
		return nil, fmt.Errorf("server returned %d maps for %d tiles", len(resp.Maps), len(tiles))
	}

	out := make([]*raster.Raster, len(resp.Maps))
	for i, m := range resp.Maps {
		if len(m) != size*size {
			return nil, fmt.Errorf("map %d has %d samples, want %d", i, len(m), size*size)
		}
		r := raster.New(size, size, 1)
		copy(r.Pix, m)
		out[i] = r
	}
	return out, nil
}

type trainRequest struct {
	Size   int         `json:"size"`
	Bands  int         `json:"bands"`
	Images [][]float64 `json:"images"`
	Labels [][]float64 `json:"labels"`
	Epochs int         `json:"epochs"`
}

type trainResponse struct {
	History []EpochMetric `json:"history"`
}

// Train submits assembled samples to the server's train endpoint and
// returns the per-epoch training history.
func (p *HTTPPredictor) Train(ctx context.Context, samples []sample.Sample, epochs int) ([]EpochMetric, error) {
	if len(samples) == 0 {
		return nil, sample.ErrNoSamples
	}
	first := samples[0].Image
	req := trainRequest{
		Size:   first.Width,
		Bands:  first.Bands,
		Images: make([][]float64, len(samples)),
		Labels: make([][]float64, len(samples)),
		Epochs: epochs,
	}
	for i, s := range samples {
		req.Images[i] = s.Image.Pix
		req.Labels[i] = s.Label.Pix
	}

	var resp trainResponse
	if err := p.post(ctx, "/train", req, &resp); err != nil {
		return nil, err
	}
	return resp.History, nil
}

// ModelInfo describes one model the server can serve.
type ModelInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Models lists the models available on the server.
func (p *HTTPPredictor) Models(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get models: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	var models []ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		return nil, fmt.Errorf("decode models: %w", err)
	}
	return models, nil
}

func (p *HTTPPredictor) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

package ngx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ngx_pipeline/internal/feature/maintenance/domain/entity"
	"ngx_pipeline/internal/feature/maintenance/usecase"
	"ngx_pipeline/internal/platform/externalapi/ngx/dto"
	platformhttp "ngx_pipeline/internal/platform/http"
)

// ErrInvalidFeed means the body was neither an array nor a {data: [...]} object.
var ErrInvalidFeed = errors.New("invalid NGX equities response")

// SectorFeed fetches the equities list through a PageFetcher, so the request
// gets the scraper User-Agent, timeout and retry policy.
type SectorFeed struct {
	cfg     Config
	fetcher platformhttp.PageFetcher
}

var _ usecase.SectorFeed = (*SectorFeed)(nil)

// NewSectorFeed returns a feed client.
func NewSectorFeed(cfg Config, fetcher platformhttp.PageFetcher) *SectorFeed {
	return &SectorFeed{cfg: cfg, fetcher: fetcher}
}

// FetchSectors downloads and decodes the feed.
func (f *SectorFeed) FetchSectors(ctx context.Context) ([]entity.SectorEntry, error) {
	body, err := f.fetcher.Fetch(ctx, f.cfg.FeedURL)
	if err != nil {
		return nil, fmt.Errorf("ngx feed: %w", err)
	}
	equities, err := Decode(body)
	if err != nil {
		return nil, err
	}
	out := make([]entity.SectorEntry, 0, len(equities))
	for _, e := range equities {
		out = append(out, entity.SectorEntry{Symbol: e.Symbol, Sector: e.Sector})
	}
	return out, nil
}

// Decode accepts either a bare array of equities or an object with a data array.
func Decode(body []byte) ([]dto.Equity, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrInvalidFeed
	}

	switch trimmed[0] {
	case '[':
		var list []dto.Equity
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFeed, err)
		}
		return list, nil
	case '{':
		var env dto.EquitiesEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFeed, err)
		}
		if env.Data == nil {
			return nil, fmt.Errorf("%w: missing data array", ErrInvalidFeed)
		}
		return *env.Data, nil
	default:
		return nil, ErrInvalidFeed
	}
}

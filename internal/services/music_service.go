package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/orientanurag/upnext-mvp/internal/config"
)

// Track is a song search result from the external catalog.
type Track struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Duration int    `json:"duration"`
	Preview  string `json:"preview"`
	Cover    string `json:"cover"`
}

// MusicService proxies track search to the Deezer API with a short-lived
// Redis cache. The catalog is a convenience, not a dependency: any upstream
// failure degrades to an empty result and never propagates to a bid.
type MusicService struct {
	client   *http.Client
	redis    *redis.Client
	baseURL  string
	cacheTTL time.Duration
}

func NewMusicService(rdb *redis.Client, cfg *config.MusicConfig) *MusicService {
	return &MusicService{
		client:   &http.Client{Timeout: 10 * time.Second},
		redis:    rdb,
		baseURL:  cfg.BaseURL,
		cacheTTL: cfg.CacheTTL,
	}
}

type deezerSearchResponse struct {
	Data []struct {
		ID       json.Number `json:"id"`
		Title    string      `json:"title"`
		Duration int         `json:"duration"`
		Preview  string      `json:"preview"`
		Artist   struct {
			Name string `json:"name"`
		} `json:"artist"`
		Album struct {
			Title       string `json:"title"`
			CoverMedium string `json:"cover_medium"`
		} `json:"album"`
	} `json:"data"`
}

// SearchTracks looks up songs matching the query. Errors are logged and
// swallowed; callers always get a usable (possibly empty) list.
func (s *MusicService) SearchTracks(ctx context.Context, query string, limit int) []Track {
	if query == "" {
		return []Track{}
	}
	if limit <= 0 || limit > 50 {
		limit = 25
	}

	cacheKey := fmt.Sprintf("music:search:%s:%d", query, limit)
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var tracks []Track
			if json.Unmarshal(cached, &tracks) == nil {
				return tracks
			}
		}
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&limit=%d", s.baseURL, url.QueryEscape(query), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Printf("[MUSIC] Building search request failed: %v", err)
		return []Track{}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[MUSIC] Search request failed, returning empty results: %v", err)
		return []Track{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[MUSIC] Search returned status %d, returning empty results", resp.StatusCode)
		return []Track{}
	}

	var payload deezerSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Printf("[MUSIC] Decoding search response failed: %v", err)
		return []Track{}
	}

	tracks := make([]Track, 0, len(payload.Data))
	for _, item := range payload.Data {
		tracks = append(tracks, Track{
			ID:       item.ID.String(),
			Title:    item.Title,
			Artist:   item.Artist.Name,
			Album:    item.Album.Title,
			Duration: item.Duration,
			Preview:  item.Preview,
			Cover:    item.Album.CoverMedium,
		})
	}

	if s.redis != nil {
		if data, err := json.Marshal(tracks); err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, s.cacheTTL).Err(); err != nil {
				log.Printf("[MUSIC] Caching search results failed: %v", err)
			}
		}
	}
	return tracks
}

package youtube

import (
	"context"
	"fmt"
	"time"

	"github.com/kapu/yt-analytics-go/internal/constants"
	"github.com/kapu/yt-analytics-go/internal/domain"
	"github.com/kapu/yt-analytics-go/internal/util"
	"go.uber.org/zap"
)

// FetchMeta looks up display metadata for ids, batched per videos.list call.
// Ids the upstream does not know are simply absent from the map. Any failed
// batch discards everything and returns an empty map with the error, so the
// caller can treat metadata as unavailable.
func (c *Client) FetchMeta(ctx context.Context, credential string, ids []string) (map[string]*domain.EntityMeta, error) {
	ids = util.UniqueStrings(ids)
	result := make(map[string]*domain.EntityMeta, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	svc, err := c.dataService(ctx, credential)
	if err != nil {
		return map[string]*domain.EntityMeta{}, err
	}

	batchSize := constants.VideoListConfig.MetadataBatch
	for i := 0; i < len(ids); i += batchSize {
		end := min(i+batchSize, len(ids))
		batch := ids[i:end]

		start := time.Now()
		resp, err := svc.Videos.List([]string{"snippet"}).Id(batch...).Context(ctx).Do()
		c.observe("videos.list", start, err)
		if err != nil {
			c.logger.Warn("Video metadata lookup failed",
				zap.Int("batch_size", len(batch)),
				zap.Error(err))
			return map[string]*domain.EntityMeta{}, fmt.Errorf("video metadata lookup: %w", err)
		}

		for _, item := range resp.Items {
			if item == nil || item.Id == "" {
				continue
			}
			meta := &domain.EntityMeta{ID: item.Id, Title: item.Id}
			if item.Snippet != nil {
				if item.Snippet.Title != "" {
					meta.Title = item.Snippet.Title
				}
				meta.PublishedAt = item.Snippet.PublishedAt
				meta.ThumbnailURL = extractThumbnail(item.Snippet.Thumbnails)
			}
			result[item.Id] = meta
		}
	}

	c.logger.Debug("Video metadata fetched",
		zap.Int("requested", len(ids)),
		zap.Int("resolved", len(result)))

	return result, nil
}

package youtube

import (
	"context"
	"time"

	"github.com/kapu/yt-analytics-go/internal/constants"
	"github.com/kapu/yt-analytics-go/internal/domain"
	"github.com/kapu/yt-analytics-go/internal/util"
	"github.com/kapu/yt-analytics-go/pkg/errors"
	"go.uber.org/zap"
)

// ListVideos returns one page of the caller's own uploads, newest first.
func (c *Client) ListVideos(ctx context.Context, credential string, pageSize int64, pageToken string) (*domain.VideoPage, error) {
	svc, err := c.dataService(ctx, credential)
	if err != nil {
		return nil, err
	}

	if pageSize <= 0 {
		pageSize = constants.VideoListConfig.DefaultPageSize
	}
	pageSize = util.Clamp64(pageSize, 1, constants.VideoListConfig.MaxPageSize)

	call := svc.Search.List([]string{"snippet"}).
		ForMine(true).
		Type("video").
		Order("date").
		MaxResults(pageSize)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	start := time.Now()
	resp, err := call.Context(ctx).Do()
	c.observe("search.list", start, err)
	if err != nil {
		status, body := upstreamStatus(err)
		c.logger.Error("Failed to list own videos",
			zap.Int("status", status),
			zap.Error(err))
		return nil, errors.NewAPIError("YouTube videos list failed", status, map[string]any{
			"body": body,
		}).WithCause(err)
	}

	page := &domain.VideoPage{
		Items:         make([]domain.EntityMeta, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}
	for _, item := range resp.Items {
		if item == nil || item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		title := item.Snippet.Title
		if title == "" {
			title = "(no title)"
		}
		page.Items = append(page.Items, domain.EntityMeta{
			ID:           item.Id.VideoId,
			Title:        title,
			PublishedAt:  item.Snippet.PublishedAt,
			ThumbnailURL: extractThumbnail(item.Snippet.Thumbnails),
		})
	}

	c.logger.Debug("Own videos listed",
		zap.Int("count", len(page.Items)),
		zap.Bool("has_next", page.NextPageToken != ""))

	return page, nil
}

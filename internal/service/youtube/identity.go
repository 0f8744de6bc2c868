package youtube

import (
	"context"
	"time"

	"github.com/kapu/yt-analytics-go/internal/domain"
	"github.com/kapu/yt-analytics-go/pkg/errors"
	"go.uber.org/zap"
	ytdata "google.golang.org/api/youtube/v3"
)

var channelParts = []string{"id", "snippet", "statistics"}

// Resolve finds the caller's own channel: "mine" first, then the configured fallback id.
func (c *Client) Resolve(ctx context.Context, credential string) (*domain.ChannelIdentity, error) {
	if credential == "" {
		return nil, errors.NewUnauthenticatedError()
	}

	svc, err := c.dataService(ctx, credential)
	if err != nil {
		return nil, err
	}

	channel, mine := c.lookupChannel(ctx, svc.Channels.List(channelParts).Mine(true), "mine", "")
	if channel != nil {
		return newIdentity(channel, domain.IdentitySourceMine), nil
	}

	if c.cfg.FallbackChannelID == "" {
		c.logger.Warn("Channel lookup returned no owned channel",
			zap.Int("mine_status", mine.Status))
		return nil, errors.NewIdentityNotFoundError(mine, nil)
	}

	c.logger.Info("Owned channel not found, retrying with fallback id",
		zap.Int("mine_status", mine.Status),
		zap.String("fallback_channel_id", c.cfg.FallbackChannelID))

	channel, byID := c.lookupChannel(ctx,
		svc.Channels.List(channelParts).Id(c.cfg.FallbackChannelID),
		"fallback_id", c.cfg.FallbackChannelID)
	if channel != nil {
		return newIdentity(channel, domain.IdentitySourceFallback), nil
	}

	c.logger.Warn("Channel identity exhausted all strategies",
		zap.Int("mine_status", mine.Status),
		zap.Int("fallback_status", byID.Status))
	return nil, errors.NewIdentityNotFoundError(mine, &byID)
}

// lookupChannel runs one channels.list call. It never fails: an empty result
// or an upstream error is reported through the diagnostics instead.
func (c *Client) lookupChannel(ctx context.Context, call *ytdata.ChannelsListCall, strategy, channelID string) (*ytdata.Channel, errors.LookupDiagnostics) {
	diag := errors.LookupDiagnostics{Strategy: strategy, ChannelID: channelID}

	start := time.Now()
	resp, err := call.Context(ctx).Do()
	c.observe("channels.list", start, err)
	if err != nil {
		diag.Status, diag.Body = upstreamStatus(err)
		c.logger.Debug("Channel lookup failed",
			zap.String("strategy", strategy),
			zap.Int("status", diag.Status),
			zap.Error(err))
		return nil, diag
	}

	diag.Status = resp.HTTPStatusCode
	diag.Body = rawBody(resp)
	if len(resp.Items) == 0 || resp.Items[0] == nil || resp.Items[0].Id == "" {
		return nil, diag
	}
	return resp.Items[0], diag
}

func newIdentity(ch *ytdata.Channel, source domain.IdentitySource) *domain.ChannelIdentity {
	profile := &domain.ChannelProfile{ChannelID: ch.Id}
	if ch.Snippet != nil {
		profile.Title = ch.Snippet.Title
		profile.Thumbnail = extractThumbnail(ch.Snippet.Thumbnails)
	}
	if ch.Statistics != nil {
		profile.SubscriberCount = ch.Statistics.SubscriberCount
		profile.ViewCount = ch.Statistics.ViewCount
		profile.VideoCount = ch.Statistics.VideoCount
	}

	return &domain.ChannelIdentity{
		ChannelID: ch.Id,
		Source:    source,
		Profile:   profile,
	}
}

package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kapu/yt-analytics-go/internal/constants"
	"github.com/kapu/yt-analytics-go/internal/domain"
	"github.com/kapu/yt-analytics-go/internal/service/report"
	"github.com/kapu/yt-analytics-go/internal/util"
	"go.uber.org/zap"
)

type ReportAssembler interface {
	Assemble(ctx context.Context, req report.Request) (*domain.ComparisonResult, error)
}

// ChannelDirectory serves the non-report channel lookups.
type ChannelDirectory interface {
	Resolve(ctx context.Context, credential string) (*domain.ChannelIdentity, error)
	ListVideos(ctx context.Context, credential string, pageSize int64, pageToken string) (*domain.VideoPage, error)
}

type Handler struct {
	reports  ReportAssembler
	channels ChannelDirectory
	logger   *zap.Logger
}

func NewHandler(reports ReportAssembler, channels ChannelDirectory, logger *zap.Logger) *Handler {
	return &Handler{
		reports:  reports,
		channels: channels,
		logger:   util.OrNop(logger),
	}
}

// Report handles /report?mode=aggregate|compare-batched|compare-fanout.
func (h *Handler) Report(c *gin.Context) {
	mode := domain.Mode(c.DefaultQuery("mode", string(domain.ModeAggregate)))
	h.assemble(c, reportRequest(c, mode))
}

func (h *Handler) Analytics(c *gin.Context) {
	h.assemble(c, reportRequest(c, domain.ModeAggregate))
}

// VideoAnalytics is the aggregate report broken down per video unless dimensions are given.
func (h *Handler) VideoAnalytics(c *gin.Context) {
	req := reportRequest(c, domain.ModeAggregate)
	if _, ok := c.GetQuery("dimensions"); !ok {
		req.Dimensions = []string{constants.DimensionVideo}
	}
	h.assemble(c, req)
}

func (h *Handler) VideoCompare(c *gin.Context) {
	req := reportRequest(c, domain.ModeCompareBatched)
	req.Dimensions = []string{constants.DimensionVideo}
	h.assemble(c, req)
}

func (h *Handler) VideoStats(c *gin.Context) {
	h.assemble(c, reportRequest(c, domain.ModeCompareFanout))
}

// AnalyticsSummary is a daily channel series over the last N days with totals.
func (h *Handler) AnalyticsSummary(c *gin.Context) {
	days, err := summaryDays(c)
	if err != nil {
		h.renderError(c, err)
		return
	}

	req := reportRequest(c, domain.ModeAggregate)
	req.StartDate, req.EndDate = "", ""
	req.Days = days
	req.VideoIDs = nil
	req.Dimensions = []string{constants.DimensionDay}
	req.Sort = constants.DimensionDay
	h.assemble(c, req)
}

func (h *Handler) assemble(c *gin.Context, req report.Request) {
	result, err := h.reports.Assemble(c.Request.Context(), req)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(result.Status, result)
}

// Me returns the resolved channel and its public counters.
func (h *Handler) Me(c *gin.Context) {
	identity, err := h.channels.Resolve(c.Request.Context(), credential(c))
	if err != nil {
		h.renderError(c, err)
		return
	}

	resp := gin.H{
		"ok":        true,
		"channelId": identity.ChannelID,
		"source":    identity.Source,
	}
	if p := identity.Profile; p != nil {
		resp["title"] = p.Title
		resp["thumbnail"] = p.Thumbnail
		resp["subscriberCount"] = p.SubscriberCount
		resp["viewCount"] = p.ViewCount
		resp["videoCount"] = p.VideoCount
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Videos(c *gin.Context) {
	page, err := h.channels.ListVideos(c.Request.Context(), credential(c), pageSize(c), c.Query("pageToken"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"nextPageToken": page.NextPageToken,
		"items":         page.Items,
	})
}

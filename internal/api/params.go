package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kapu/yt-analytics-go/internal/constants"
	"github.com/kapu/yt-analytics-go/internal/domain"
	"github.com/kapu/yt-analytics-go/internal/service/report"
	"github.com/kapu/yt-analytics-go/internal/util"
	"github.com/kapu/yt-analytics-go/pkg/errors"
)

// reportRequest reads the query parameters shared by every report route.
// An explicit but empty metrics parameter is kept as an empty list so it is rejected downstream.
func reportRequest(c *gin.Context, mode domain.Mode) report.Request {
	req := report.Request{
		Credential: credential(c),
		Mode:       mode,
		StartDate:  c.Query("startDate"),
		EndDate:    c.Query("endDate"),
		VideoIDs:   util.SplitCSV(c.Query("videoIds")),
		Dimensions: util.SplitCSV(c.Query("dimensions")),
		Sort:       c.Query("sort"),
	}
	if raw, ok := c.GetQuery("metrics"); ok {
		req.Metrics = util.SplitCSV(raw)
	}
	return req
}

func summaryDays(c *gin.Context) (int, error) {
	raw, ok := c.GetQuery("days")
	if !ok || raw == "" {
		return constants.ReportConfig.DefaultLookbackDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewInvalidRequestError("days must be an integer", "days", raw)
	}
	return util.Clamp(days, 1, constants.ReportConfig.MaxSummaryDays), nil
}

func pageSize(c *gin.Context) int64 {
	size, err := strconv.ParseInt(c.Query("maxResults"), 10, 64)
	if err != nil || size <= 0 {
		return constants.VideoListConfig.DefaultPageSize
	}
	return util.Clamp64(size, 1, constants.VideoListConfig.MaxPageSize)
}

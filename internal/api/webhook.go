package api

import (
	"bytes"
	"crypto/subtle"
	"encoding/xml"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kapu/yt-analytics-go/internal/util"
	"go.uber.org/zap"
)

const maxNotificationBytes = 1 << 20

// atomFeed is the subset of a PubSubHubbub upload notification we read.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	VideoID   string `xml:"http://www.youtube.com/xml/schemas/2015 videoId"`
	ChannelID string `xml:"http://www.youtube.com/xml/schemas/2015 channelId"`
	Title     string `xml:"title"`
	Published string `xml:"published"`
}

// WebhookHandler answers the hub's subscription handshake and logs upload notifications.
type WebhookHandler struct {
	verifyToken string
	logger      *zap.Logger
}

func NewWebhookHandler(verifyToken string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifyToken: verifyToken,
		logger:      util.OrNop(logger),
	}
}

// Verify echoes hub.challenge when hub.verify_token matches the configured secret.
func (w *WebhookHandler) Verify(c *gin.Context) {
	token := c.Query("hub.verify_token")
	w.logger.Info("Webhook verification request",
		zap.String("mode", c.Query("hub.mode")),
		zap.String("topic", c.Query("hub.topic")),
		zap.Bool("has_challenge", c.Query("hub.challenge") != ""))

	if w.verifyToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(w.verifyToken)) != 1 {
		c.String(http.StatusForbidden, "forbidden")
		return
	}

	challenge, ok := c.GetQuery("hub.challenge")
	if !ok {
		challenge = "missing challenge"
	}
	c.String(http.StatusOK, challenge)
}

// Notify acknowledges every delivery. Unparseable bodies are logged, not rejected.
func (w *WebhookHandler) Notify(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxNotificationBytes))
	if err != nil {
		w.logger.Warn("Failed to read webhook body", zap.Error(err))
		c.String(http.StatusOK, "ok")
		return
	}

	entries, err := parseNotification(body)
	if err != nil {
		w.logger.Warn("Unparseable webhook notification",
			zap.Int("length", len(body)),
			zap.Error(err))
		c.String(http.StatusOK, "ok")
		return
	}

	for _, e := range entries {
		w.logger.Info("Upload notification received",
			zap.String("video_id", e.VideoID),
			zap.String("channel_id", e.ChannelID),
			zap.String("title", e.Title),
			zap.String("published", e.Published))
	}
	if len(entries) == 0 {
		w.logger.Info("Notification without entries", zap.Int("length", len(body)))
	}

	c.String(http.StatusOK, "ok")
}

func parseNotification(body []byte) ([]atomEntry, error) {
	var feed atomFeed
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&feed); err != nil {
		return nil, err
	}

	entries := feed.Entries[:0]
	for _, e := range feed.Entries {
		if e.VideoID != "" {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

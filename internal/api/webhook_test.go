package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uploadNotification = `<?xml version='1.0' encoding='UTF-8'?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns="http://www.w3.org/2005/Atom">
  <link rel="hub" href="https://pubsubhubbub.appspot.com"/>
  <title>YouTube video feed</title>
  <entry>
    <id>yt:video:VIDEO123</id>
    <yt:videoId>VIDEO123</yt:videoId>
    <yt:channelId>UC1</yt:channelId>
    <title>New upload</title>
    <published>2024-01-01T00:00:00+00:00</published>
  </entry>
</feed>`

func TestWebhookVerify(t *testing.T) {
	router := setupRouter(&fakeAssembler{}, &fakeDirectory{})

	w := doGet(router, "/api/webhook/youtube?hub.mode=subscribe&hub.challenge=xyz&hub.verify_token=secret", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "xyz", w.Body.String())

	w = doGet(router, "/api/webhook/youtube?hub.challenge=xyz&hub.verify_token=wrong", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", w.Body.String())

	w = doGet(router, "/api/webhook/youtube?hub.verify_token=secret", "")
	assert.Equal(t, "missing challenge", w.Body.String())
}

func TestWebhookVerifyRejectsWhenUnconfigured(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := ginTestContext(w, httptest.NewRequest(http.MethodGet, "/api/webhook/youtube?hub.verify_token=&hub.challenge=x", nil))
	NewWebhookHandler("", nil).Verify(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWebhookNotify(t *testing.T) {
	router := setupRouter(&fakeAssembler{}, &fakeDirectory{})

	for _, body := range []string{uploadNotification, "<not-xml", ""} {
		req := httptest.NewRequest(http.MethodPost, "/api/webhook/youtube", strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())
	}
}

func TestParseNotification(t *testing.T) {
	entries, err := parseNotification([]byte(uploadNotification))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "VIDEO123", entries[0].VideoID)
	assert.Equal(t, "UC1", entries[0].ChannelID)
	assert.Equal(t, "New upload", entries[0].Title)

	_, err = parseNotification([]byte("<feed"))
	assert.Error(t, err)
}

func ginTestContext(w http.ResponseWriter, r *http.Request) (*gin.Context, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	c, engine := gin.CreateTestContext(w)
	c.Request = r
	return c, engine
}

package youtube

import ytdata "google.golang.org/api/youtube/v3"

// extractThumbnail picks medium, then high, default, maxres. Dashboard cards render at medium size.
func extractThumbnail(thumbnails *ytdata.ThumbnailDetails) string {
	if thumbnails == nil {
		return ""
	}

	for _, t := range []*ytdata.Thumbnail{thumbnails.Medium, thumbnails.High, thumbnails.Default, thumbnails.Maxres} {
		if t != nil && t.Url != "" {
			return t.Url
		}
	}
	return ""
}

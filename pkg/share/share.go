package share

import (
	"net/url"
	"strings"
)

// Link is a single outbound share target.
type Link struct {
	Network string
	Label   string
	URL     string
}

// encodeURIComponent mirrors the browser function closely enough for share
// URLs: spaces become %20 rather than '+'.
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func WhatsApp(text, link string) string {
	return "https://wa.me/?text=" + encodeURIComponent(text) + "%20" + encodeURIComponent(link)
}

func Facebook(link string) string {
	return "https://www.facebook.com/sharer/sharer.php?u=" + encodeURIComponent(link)
}

func Instagram(link string) string {
	return "https://www.instagram.com/?url=" + encodeURIComponent(link)
}

// SiteLinks are the share buttons of the home page.
func SiteLinks(text, siteURL string) []Link {
	return []Link{
		{Network: "whatsapp", Label: "Compartir en WhatsApp", URL: WhatsApp(text, siteURL)},
		{Network: "facebook", Label: "Compartir en Facebook", URL: Facebook(siteURL)},
	}
}

// PhotoLinks are the share buttons under a gallery photo.
func PhotoLinks(description, photoURL string) []Link {
	return []Link{
		{Network: "whatsapp", Label: "WhatsApp", URL: WhatsApp("Mira esta foto del torneo: "+description, photoURL)},
		{Network: "facebook", Label: "Facebook", URL: Facebook(photoURL)},
		{Network: "instagram", Label: "Instagram", URL: Instagram(photoURL)},
	}
}

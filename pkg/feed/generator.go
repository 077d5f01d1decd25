// Package feed renders published news as an RSS 2.0 feed.
package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/umputun/newsdesk/pkg/domain"
)

// Generator creates RSS feeds from news items
type Generator struct {
	baseURL string
	title   string
	now     func() time.Time
}

// NewGenerator creates a new feed generator, title is the channel title
func NewGenerator(baseURL, title string) *Generator {
	if title == "" {
		title = "Newsdesk"
	}
	return &Generator{baseURL: strings.TrimRight(baseURL, "/"), title: title, now: time.Now}
}

// GenerateRSS creates an RSS 2.0 feed from published items, unpublished ones are skipped.
// Assets and the source become item categories.
func (g *Generator) GenerateRSS(items []domain.NewsItem, filter domain.NewsFilter) (string, error) {
	title := g.title + " - Published News"
	if filter.Asset != "" {
		title = fmt.Sprintf("%s - %s", g.title, filter.Asset)
	}

	selfLink := g.baseURL + "/rss"
	if q := filter.Query().Encode(); q != "" {
		selfLink += "?" + q
	}

	rssItems := make([]*RSSItem, 0, len(items))
	for _, item := range items {
		if !item.Published {
			continue
		}
		rssItems = append(rssItems, g.convertToRSSItem(item))
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         title,
			Link:          g.baseURL + "/",
			Description:   "News published to the terminal",
			AtomLink:      &AtomLink{Href: selfLink, Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: g.now().Format(time.RFC1123Z),
			Items:         rssItems,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}

	return xml.Header + string(output), nil
}

func (g *Generator) convertToRSSItem(item domain.NewsItem) *RSSItem {
	categories := make([]string, 0, len(item.Assets)+1)
	categories = append(categories, item.Assets...)
	categories = append(categories, string(item.ItemSource()))

	return &RSSItem{
		Title:       item.DisplayTitle(),
		Link:        fmt.Sprintf("%s/#news-%s", g.baseURL, item.ID),
		GUID:        RSSGUID{Value: "news-" + string(item.ID)},
		Description: item.Description,
		Categories:  categories,
	}
}

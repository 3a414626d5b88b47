package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

const (
	// NewsCacheTTL is how long a fetched feed is served without refetching
	NewsCacheTTL = 4 * time.Hour
	// NewsFetchTimeout bounds each upstream feed request
	NewsFetchTimeout = 8 * time.Second

	// DefaultRSSBase is the Google News search feed endpoint
	DefaultRSSBase = "https://news.google.com/rss/search"

	maxNewsItems    = 6
	itemsPerFeed    = 4
	maxSummaryRunes = 300

	analyseSuffix = "Analyse the legal implications of this development. What are the key legal principles involved and how does this impact Indian jurisprudence?"
)

// News sources reported in NewsResponse.Source
const (
	NewsSourceCache      = "cache"
	NewsSourceLive       = "live"
	NewsSourceBackend    = "backend"
	NewsSourceStaleCache = "stale-cache"
	NewsSourceStatic     = "static"
)

// NewsQueries are the feed searches scraped when no news endpoint answers
var NewsQueries = []string{
	"India+Supreme+Court+judgment",
	"India+High+Court+ruling",
	"India+legal+news+law",
}

var newsImages = []string{
	"https://images.unsplash.com/photo-1589578527966-fdac0f44566c?w=400&h=500&fit=crop",
	"https://images.unsplash.com/photo-1524995997946-a1c2e315a42f?w=400&h=500&fit=crop",
	"https://images.unsplash.com/photo-1450101499163-c8848c66ca85?w=400&h=500&fit=crop",
	"https://images.unsplash.com/photo-1540747913346-19e32dc3e97e?w=400&h=500&fit=crop",
	"https://images.unsplash.com/photo-1505664194779-8beaceb93744?w=400&h=500&fit=crop",
	"https://images.unsplash.com/photo-1507679799987-c73779587ccf?w=400&h=500&fit=crop",
}

// NewsItem is one legal news headline
type NewsItem struct {
	ID            string `json:"id" yaml:"id"`
	Title         string `json:"title" yaml:"title"`
	Summary       string `json:"summary" yaml:"summary"`
	Date          string `json:"date" yaml:"date"`
	Link          string `json:"link" yaml:"link"`
	Image         string `json:"image,omitempty" yaml:"image,omitempty"`
	AnalysePrompt string `json:"analysePrompt" yaml:"analyse_prompt"`
}

// NewsResponse is the feed plus where it came from
type NewsResponse struct {
	News        []NewsItem `json:"news"`
	Source      string     `json:"source"`
	LastUpdated time.Time  `json:"lastUpdated"`
	NextUpdate  time.Time  `json:"nextUpdate"`
}

// AnalysePrompt builds the research prompt for a headline
func AnalysePrompt(title, summary string) string {
	return title + "\n\n" + summary + "\n\n" + analyseSuffix
}

// NewsFeed fetches, caches and falls back for the legal news feed
type NewsFeed struct {
	http    *resty.Client
	newsURL string
	rssBase string
	cache   *CacheManager
	now     func() time.Time
	policy  *bluemonday.Policy
	dedup   *Deduplicator

	// in-memory copy of the last good feed
	items     []NewsItem
	fetchedAt time.Time
}

// NewsOption configures a NewsFeed
type NewsOption func(*NewsFeed)

// WithRSSBase overrides the RSS search endpoint
func WithRSSBase(base string) NewsOption {
	return func(f *NewsFeed) { f.rssBase = base }
}

// WithNewsClock overrides the time source
func WithNewsClock(now func() time.Time) NewsOption {
	return func(f *NewsFeed) { f.now = now }
}

// WithNewsCache persists the feed through cache
func WithNewsCache(cache *CacheManager) NewsOption {
	return func(f *NewsFeed) { f.cache = cache }
}

// NewNewsFeed creates a feed. newsURL is the backend news endpoint; empty
// skips straight to scraping.
func NewNewsFeed(newsURL string, opts ...NewsOption) *NewsFeed {
	f := &NewsFeed{
		http: resty.New().
			SetTimeout(NewsFetchTimeout).
			SetHeader("User-Agent", "research-session/1.0"),
		newsURL: newsURL,
		rssBase: DefaultRSSBase,
		cache:   NewCacheManager(""),
		now:     time.Now,
		policy:  bluemonday.StrictPolicy(),
		dedup:   NewDeduplicator(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the feed. A fresh cache is served unless refresh is set;
// on upstream failure the stale cache and then the static list are used.
func (f *NewsFeed) Fetch(ctx context.Context, refresh bool) (*NewsResponse, error) {
	now := f.now()
	f.restore()

	if !refresh && len(f.items) > 0 && now.Sub(f.fetchedAt) < NewsCacheTTL {
		return f.response(f.items, NewsSourceCache, f.fetchedAt, f.fetchedAt.Add(NewsCacheTTL)), nil
	}

	if items, err := f.fetchBackend(ctx); err == nil && len(items) > 0 {
		f.store(items, NewsSourceBackend, now)
		return f.response(items, NewsSourceBackend, now, now.Add(NewsCacheTTL)), nil
	} else if err != nil {
		LogDebug("News endpoint unavailable: %v", err)
	}

	if items := f.scrape(ctx, now); len(items) > 0 {
		f.store(items, NewsSourceLive, now)
		return f.response(items, NewsSourceLive, now, now.Add(NewsCacheTTL)), nil
	}

	if len(f.items) > 0 {
		LogWarn("News refresh failed; serving cache from %s", f.fetchedAt.Format(time.RFC3339))
		return f.response(f.items, NewsSourceStaleCache, f.fetchedAt, now), nil
	}

	return f.response(StaticNews(), NewsSourceStatic, now, now.Add(NewsCacheTTL)), nil
}

func (f *NewsFeed) response(items []NewsItem, source string, updated, next time.Time) *NewsResponse {
	return &NewsResponse{
		News:        append([]NewsItem(nil), items...),
		Source:      source,
		LastUpdated: updated,
		NextUpdate:  next,
	}
}

// restore loads the persisted cache once when nothing is held in memory
func (f *NewsFeed) restore() {
	if len(f.items) > 0 || !f.cache.Enabled() {
		return
	}
	cached, err := f.cache.LoadNews()
	if err != nil {
		return
	}
	if cached.Metadata.CacheVersion != NewsCacheVersion {
		LogDebug("Ignoring news cache version %q", cached.Metadata.CacheVersion)
		return
	}
	f.items = cached.News
	f.fetchedAt = cached.Metadata.FetchedAt
}

func (f *NewsFeed) store(items []NewsItem, source string, now time.Time) {
	f.items = items
	f.fetchedAt = now
	if err := f.cache.SaveNews(items, source, now); err != nil {
		LogWarn("Failed to write news cache: %v", err)
	}
}

func (f *NewsFeed) fetchBackend(ctx context.Context) ([]NewsItem, error) {
	if f.newsURL == "" {
		return nil, nil
	}
	resp, err := f.http.R().SetContext(ctx).SetHeader("Accept", "application/json").Get(f.newsURL)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}

	var body struct {
		News []NewsItem `json:"news"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &ParseError{Source: "news", Key: f.newsURL, Err: err}
	}

	items := body.News[:0]
	for _, item := range body.News {
		if strings.TrimSpace(item.Title) == "" {
			continue
		}
		if item.AnalysePrompt == "" {
			item.AnalysePrompt = AnalysePrompt(item.Title, item.Summary)
		}
		items = append(items, item)
	}
	return items, nil
}

// scrape reads every search feed, skipping any that fail
func (f *NewsFeed) scrape(ctx context.Context, now time.Time) []NewsItem {
	var all []NewsItem
	for _, q := range NewsQueries {
		items, err := f.fetchFeed(ctx, q)
		if err != nil {
			LogDebug("Feed %s failed: %v", q, err)
			continue
		}
		all = append(all, items...)
	}

	all = f.dedup.Deduplicate(all)
	if len(all) > maxNewsItems {
		all = all[:maxNewsItems]
	}
	for i := range all {
		all[i].ID = fmt.Sprintf("news-%d-%d", now.UnixMilli(), i)
		all[i].Image = newsImages[i%len(newsImages)]
	}
	return all
}

func (f *NewsFeed) fetchFeed(ctx context.Context, query string) ([]NewsItem, error) {
	// query is already in feed syntax (plus-separated)
	feedURL := fmt.Sprintf("%s?q=%s&hl=en-IN&gl=IN&ceid=IN:en", f.rssBase, query)
	resp, err := f.http.R().SetContext(ctx).Get(feedURL)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}

	feed, err := gofeed.NewParser().ParseString(string(resp.Body()))
	if err != nil {
		return nil, &ParseError{Source: "rss", Key: query, Err: err}
	}

	var items []NewsItem
	for i, raw := range feed.Items {
		if i >= itemsPerFeed {
			break
		}
		title := f.stripHTML(raw.Title)
		if title == "" {
			continue
		}
		summary := truncateSummary(f.stripHTML(raw.Description))
		if summary == "" {
			summary = title
		}
		items = append(items, NewsItem{
			Title:         title,
			Summary:       summary,
			Date:          newsDate(raw),
			Link:          strings.TrimSpace(raw.Link),
			AnalysePrompt: AnalysePrompt(title, summary),
		})
	}
	return items, nil
}

func (f *NewsFeed) stripHTML(s string) string {
	// StrictPolicy re-escapes entities; unescape to plain text
	return strings.TrimSpace(html.UnescapeString(f.policy.Sanitize(s)))
}

func truncateSummary(s string) string {
	runes := []rune(s)
	if len(runes) <= maxSummaryRunes {
		return s
	}
	return string(runes[:maxSummaryRunes-3]) + "..."
}

// newsDate formats the publish date, keeping the raw text when unparseable
func newsDate(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.Format("January 2, 2006")
	}
	return strings.TrimSpace(item.Published)
}

// StaticNews is served when neither the network nor the cache has a feed
func StaticNews() []NewsItem {
	items := []NewsItem{
		{
			ID:      "static-1",
			Title:   "Madras High Court directs MS Dhoni to deposit ₹10 lakh in defamation case",
			Summary: "In a defamation suit filed by MS Dhoni over IPL fixing allegations, the Madras High Court directed him to deposit ₹10 lakh. The amount is not a penalty, but intended to cover transcription and translation of audio-video evidence required for trial.",
			Date:    "February 20, 2026",
			AnalysePrompt: "In a defamation suit filed by MS Dhoni over IPL fixing allegations, the Madras High Court directed him to deposit ₹10 lakh.\n" +
				"Who should bear the cost of processing evidence in such cases: the plaintiff, defendant, or the court?",
		},
		{
			ID:      "static-2",
			Title:   "Supreme Court clarifies guidelines on bail for economic offences",
			Summary: "The Supreme Court of India laid down fresh guidelines distinguishing between economic offences and regular criminal cases for the purpose of bail, emphasizing that blanket denial of bail in economic offences violates fundamental rights under Article 21.",
			Date:    "February 18, 2026",
			AnalysePrompt: "The Supreme Court of India laid down fresh guidelines for bail in economic offences.\n" +
				"Analyse the legal precedents on bail in economic offences. How does Article 21 interact with denial of bail?",
		},
		{
			ID:      "static-3",
			Title:   "Delhi HC issues landmark ruling on tenants' rights during redevelopment",
			Summary: "The Delhi High Court ruled that tenants cannot be evicted during building redevelopment without providing adequate alternative accommodation or compensation, strengthening tenant protections under the Delhi Rent Control Act.",
			Date:    "February 15, 2026",
			AnalysePrompt: "The Delhi High Court ruled that tenants cannot be evicted during building redevelopment without providing adequate alternative accommodation.\n" +
				"What are the current tenant protection mechanisms under the Delhi Rent Control Act?",
		},
		{
			ID:      "static-4",
			Title:   "NCLAT upholds CCI penalty on tech giant for anti-competitive practices",
			Summary: "The National Company Law Appellate Tribunal upheld a ₹1,337 crore penalty imposed by the Competition Commission of India on a major tech company for abusing its dominant position in the smartphone ecosystem market.",
			Date:    "February 12, 2026",
			AnalysePrompt: "NCLAT upheld a ₹1,337 crore penalty imposed by CCI on a major tech company for abusing its dominant position.\n" +
				"What constitutes 'abuse of dominant position' under the Competition Act, 2002?",
		},
	}
	for i := range items {
		items[i].Link = "#"
		items[i].Image = newsImages[i%len(newsImages)]
	}
	return items
}

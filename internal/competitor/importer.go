// Package competitor imports a competitor's copy from a public URL so it
// can be adapted with the invisible-structure agent. Feeds (RSS, Atom,
// JSON Feed) yield their newest item; any other page goes through
// go-readability.
package competitor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"syscall"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
)

const (
	defaultTimeout = 20 * time.Second
	domainDelay    = 1 * time.Second
	maxBodyBytes   = 5 << 20

	// MaxWords caps the imported text. Longer sales pages are cut at this
	// many words.
	MaxWords = 1500
)

// Source kinds reported in Result.Kind.
const (
	KindFeed = "feed"
	KindPage = "page"
)

var (
	// ErrInvalidURL is returned for anything other than an absolute
	// http(s) URL.
	ErrInvalidURL = errors.New("competitor: invalid url")

	// ErrNoContent is returned when the fetched document has no readable
	// text.
	ErrNoContent = errors.New("competitor: no readable content")

	// ErrBlockedAddress is returned when the URL's host resolves to an
	// address inside the server's own network: loopback, private,
	// link-local or unspecified.
	ErrBlockedAddress = errors.New("competitor: address not allowed")
)

// Result is the text imported from a competitor URL.
type Result struct {
	URL            string `json:"url"`
	Kind           string `json:"kind"`
	Title          string `json:"title"`
	Text           string `json:"text"`
	Words          int    `json:"words"`
	ReadingMinutes int    `json:"reading_minutes"`
	Truncated      bool   `json:"truncated"`
}

// Importer fetches competitor pages with a per-domain politeness delay.
type Importer struct {
	client   *http.Client
	maxWords int
	delay    time.Duration

	allowPrivate bool

	mu      sync.Mutex
	lastReq map[string]time.Time // per-domain last request time
}

// Option configures an Importer.
type Option func(*Importer)

// WithPrivateNetworks lets the importer reach loopback and private
// addresses, such as httptest servers in tests.
func WithPrivateNetworks() Option {
	return func(i *Importer) { i.allowPrivate = true }
}

// NewImporter creates an Importer whose HTTP client gives up after timeout.
// A zero timeout uses 20 seconds. Connections to internal addresses are
// refused unless WithPrivateNetworks is given.
func NewImporter(timeout time.Duration, opts ...Option) *Importer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	i := &Importer{
		maxWords: MaxWords,
		delay:    domainDelay,
		lastReq:  make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.client = &http.Client{
		Timeout:   timeout,
		Transport: &browserTransport{base: newTransport(i.allowPrivate)},
	}
	return i
}

// newTransport clones the default transport without proxy support. The
// address check runs in the dialer against the resolved IP, so redirects
// and DNS answers pointing inside the network are refused as well.
func newTransport(allowPrivate bool) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	if !allowPrivate {
		dialer.Control = rejectInternal
	}
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.Proxy = nil
	t.DialContext = dialer.DialContext
	return t
}

func rejectInternal(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	ip := net.ParseIP(host)
	if ip == nil || isInternalIP(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	return nil
}

func isInternalIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified()
}

// browserTransport sets browser-like request headers so sales pages that
// check Accept or User-Agent don't reject the request.
type browserTransport struct {
	base http.RoundTripper
}

func (t *browserTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/rss+xml,application/atom+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.8")
	return t.base.RoundTrip(req)
}

// Import fetches rawURL and returns its copy text. A feed yields the
// content of its newest item, any other document its readable main text.
func (i *Importer) Import(ctx context.Context, rawURL string) (*Result, error) {
	u, err := parseURL(rawURL)
	if err != nil {
		return nil, err
	}

	if err := i.waitForDomain(ctx, u.Hostname()); err != nil {
		return nil, err
	}

	body, contentType, err := i.fetch(ctx, u)
	if err != nil {
		return nil, err
	}

	var title, text, kind string
	if isFeed(contentType, body) {
		kind = KindFeed
		title, text, err = newestFeedItem(body)
	} else {
		kind = KindPage
		title, text, err = readablePage(body, u)
	}
	if err != nil {
		return nil, fmt.Errorf("importing %q: %w", u.String(), err)
	}

	text = cleanText(text)
	if text == "" {
		return nil, ErrNoContent
	}

	truncated, cut := truncateWords(text, i.maxWords)
	res := &Result{
		URL:            u.String(),
		Kind:           kind,
		Title:          strings.TrimSpace(title),
		Text:           truncated,
		Words:          countWords(truncated),
		ReadingMinutes: ReadingMinutes(truncated),
		Truncated:      cut,
	}

	slog.Info("imported competitor copy",
		"host", u.Hostname(),
		"kind", kind,
		"words", res.Words,
		"truncated", cut,
	)
	return res, nil
}

func parseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return u, nil
}

func (i *Importer) fetch(ctx context.Context, u *url.URL) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request for %q: %w", u.String(), err)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %q: %w", u.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetching %q: HTTP %d", u.String(), resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", fmt.Errorf("reading body from %q: %w", u.String(), err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// waitForDomain enforces a minimum delay between requests to the same
// domain. It blocks until the delay has elapsed or ctx is done. Domains
// whose last request is older than the delay are dropped from the map.
func (i *Importer) waitForDomain(ctx context.Context, domain string) error {
	i.mu.Lock()
	for d, last := range i.lastReq {
		if d != domain && time.Since(last) >= i.delay {
			delete(i.lastReq, d)
		}
	}
	var wait time.Duration
	if last, ok := i.lastReq[domain]; ok {
		if elapsed := time.Since(last); elapsed < i.delay {
			wait = i.delay - elapsed
		}
	}
	i.lastReq[domain] = time.Now().Add(wait)
	i.mu.Unlock()

	if wait == 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isFeed reports whether the document is a feed. HTML content types are
// never treated as feeds; everything else is sniffed.
func isFeed(contentType string, body []byte) bool {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt == "text/html" {
		return false
	}
	return gofeed.DetectFeedType(bytes.NewReader(body)) != gofeed.FeedTypeUnknown
}

func readablePage(body []byte, u *url.URL) (string, string, error) {
	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return "", "", fmt.Errorf("readability extraction: %w", err)
	}
	return article.Title, article.TextContent, nil
}

package linkmeta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

// DefaultTimeout is the hard cap on one metadata fetch; the request is
// aborted and treated as a failure once it elapses.
const DefaultTimeout = 10 * time.Second

// Metadata is the page metadata a fetch yields for a link item.
type Metadata struct {
	Title       string
	Description string
	Image       string
}

// Fetcher retrieves metadata for an absolute http(s) URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Metadata, error)
}

// Client calls a microlink-style metadata API:
// GET <endpoint>?url=<url>&screenshot=true returning {status, data:{title,
// description, image:{url,width,height}, screenshot:{url}, logo:{url}}}.
type Client struct {
	endpoint string
	timeout  time.Duration
	http     *http.Client
}

// NewClient creates a metadata client for the given API endpoint. A
// non-positive timeout falls back to DefaultTimeout.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		timeout:  timeout,
		http:     &http.Client{},
	}
}

type apiImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type apiResponse struct {
	Status string `json:"status"`
	Data   struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Image       apiImage `json:"image"`
		Screenshot  apiImage `json:"screenshot"`
		Logo        apiImage `json:"logo"`
	} `json:"data"`
}

// blockedTitleRe spots CDN error pages handed back as page titles.
var blockedTitleRe = regexp.MustCompile(`(?i)error:\s*the request could not be satisfied|403\s*error`)

// cloudfrontSignals are matched against title+description; two or more hits
// mean the "page" is a CDN challenge, not content worth persisting.
var cloudfrontSignals = []*regexp.Regexp{
	regexp.MustCompile(`(?i)generated by cloudfront`),
	regexp.MustCompile(`(?i)request could not be satisfied`),
	regexp.MustCompile(`(?i)cloudfront attempted to establish a connection`),
	regexp.MustCompile(`(?i)request blocked`),
}

// Fetch retrieves metadata for rawURL, bounded by the client timeout.
func (c *Client) Fetch(ctx context.Context, rawURL string) (Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	apiURL := fmt.Sprintf("%s?url=%s&screenshot=true", c.endpoint, url.QueryEscape(rawURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return Metadata{}, fmt.Errorf("linkmeta: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Metadata{}, fmt.Errorf("linkmeta: fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Metadata{}, fmt.Errorf("linkmeta: api returned %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Metadata{}, fmt.Errorf("linkmeta: decode response: %w", err)
	}
	if body.Status != "success" {
		return Metadata{}, fmt.Errorf("linkmeta: api status %q", body.Status)
	}

	return reduce(body), nil
}

// reduce picks the best cover image and strips CDN-challenge responses.
func reduce(body apiResponse) Metadata {
	img := body.Data.Image
	finalImage := img.URL

	// Small or square-ish images are usually logos; prefer the screenshot.
	isLogo := img.Width < 400 || img.Height < 200 || (img.Width == img.Height && img.Width < 500)
	if finalImage == "" || isLogo {
		switch {
		case body.Data.Screenshot.URL != "":
			finalImage = body.Data.Screenshot.URL
		case finalImage != "":
			// Keep the logo when there is no screenshot.
		case body.Data.Logo.URL != "":
			finalImage = body.Data.Logo.URL
		}
	}

	title := body.Data.Title
	description := body.Data.Description
	pageText := title + "\n" + description

	signals := 0
	for _, re := range cloudfrontSignals {
		if re.MatchString(pageText) {
			signals++
		}
	}
	if blockedTitleRe.MatchString(title) || signals >= 2 {
		// Some sites hand the CDN error page back as metadata and
		// screenshot; persisting it as cover or title is worse than
		// nothing.
		return Metadata{}
	}

	return Metadata{Title: title, Description: description, Image: finalImage}
}

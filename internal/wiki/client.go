// Package wiki resolves article names to Wikipedia page content.
package wiki

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"trivai/internal/models"
	httpclient "trivai/pkg/http"

	"golang.org/x/net/html"
)

// Client talks to one Wikipedia language edition.
type Client struct {
	baseURL string
	http    *httpclient.Client
}

// New creates a Client for baseURL (e.g. https://en.wikipedia.org).
// The http client is expected to carry the user agent Wikipedia requires.
func New(baseURL string, hc *httpclient.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Resolve returns the named article, or a random one when name is empty.
func (c *Client) Resolve(ctx context.Context, name string) (*models.Article, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		title, err := c.RandomTitle(ctx)
		if err != nil {
			return nil, err
		}
		name = title
	}
	return c.Page(ctx, name)
}

// RandomTitle follows Special:Random and reads the display title of the landing page.
func (c *Client) RandomTitle(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/wiki/Special:Random", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch random article: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &httpclient.StatusError{StatusCode: resp.StatusCode}
	}

	title, err := firstHeading(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse random article: %w", err)
	}
	if title == "" {
		return "", fmt.Errorf("random article has no heading: %w", models.ErrNotFound)
	}
	return title, nil
}

type queryResponse struct {
	Query struct {
		Pages []struct {
			Title   string `json:"title"`
			Missing bool   `json:"missing"`
			Invalid bool   `json:"invalid"`
			Extract string `json:"extract"`
			FullURL string `json:"fullurl"`
		} `json:"pages"`
	} `json:"query"`
}

// Page fetches the plain-text extract of title, following redirects.
func (c *Client) Page(ctx context.Context, title string) (*models.Article, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("format", "json")
	q.Set("formatversion", "2")
	q.Set("prop", "extracts|info")
	q.Set("explaintext", "1")
	q.Set("exsectionformat", "wiki")
	q.Set("inprop", "url")
	q.Set("redirects", "1")
	q.Set("titles", title)

	var out queryResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/w/api.php?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("query %q: %w", title, err)
	}
	if len(out.Query.Pages) == 0 {
		return nil, fmt.Errorf("%q: %w", title, models.ErrNotFound)
	}
	page := out.Query.Pages[0]
	if page.Missing || page.Invalid || page.Title == "" {
		return nil, fmt.Errorf("%q: %w", title, models.ErrNotFound)
	}
	if strings.TrimSpace(page.Extract) == "" {
		return nil, fmt.Errorf("%q: %w", page.Title, models.ErrInsufficient)
	}

	summary, sections := parseExtract(page.Extract)
	pageURL := page.FullURL
	if pageURL == "" {
		pageURL = c.baseURL + "/wiki/" + url.PathEscape(strings.ReplaceAll(page.Title, " ", "_"))
	}
	return &models.Article{
		Title:    page.Title,
		Text:     stripHeadings(page.Extract),
		Summary:  summary,
		URL:      pageURL,
		Sections: sections,
	}, nil
}

// firstHeading returns the text of <h1 id="firstHeading">.
func firstHeading(body io.Reader) (string, error) {
	z := html.NewTokenizer(body)
	var sb strings.Builder
	depth := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return strings.TrimSpace(sb.String()), nil
			}
			return "", z.Err()
		case html.StartTagToken:
			tn, hasAttr := z.TagName()
			if depth > 0 {
				depth++
				continue
			}
			if string(tn) != "h1" || !hasAttr {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "id" && string(val) == "firstHeading" {
					depth = 1
					break
				}
				if !more {
					break
				}
			}
		case html.EndTagToken:
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return strings.Join(strings.Fields(sb.String()), " "), nil
			}
		case html.TextToken:
			if depth > 0 {
				sb.Write(z.Text())
			}
		}
	}
}

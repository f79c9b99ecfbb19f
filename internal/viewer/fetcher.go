package viewer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPFetcher fetches image payloads over HTTP. Image ids that are already
// absolute URLs are fetched directly; bare ids are resolved against BaseURL.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, imageID string) (Image, error) {
	url := imageID
	if !strings.HasPrefix(imageID, "http://") && !strings.HasPrefix(imageID, "https://") {
		if f.BaseURL == "" {
			return Image{}, fmt.Errorf("no base url for image id %q", imageID)
		}
		url = f.BaseURL + "/" + strings.TrimPrefix(imageID, "wado:")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Image{}, err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Image{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Image{}, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Image{}, err
	}
	return Image{
		ID:          imageID,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

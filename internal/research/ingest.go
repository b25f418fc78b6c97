package research

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

// Ingestor pulls documents into the search index. HTML sources go through
// readability extraction first so the index only holds article text, not
// navigation chrome.
type Ingestor struct {
	index      *DocumentIndex
	httpClient *http.Client
	logger     *log.Logger
}

func NewIngestor(index *DocumentIndex) *Ingestor {
	return &Ingestor{
		index:      index,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log.New(log.Writer(), "[INGEST] ", log.LstdFlags),
	}
}

// IngestURL fetches a page, extracts its readable text and indexes it under
// the given collection and ticker.
func (g *Ingestor) IngestURL(ctx context.Context, rawURL, collection, ticker string) (Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Document{}, fmt.Errorf("parse url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Document{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Document{}, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, u)
	if err != nil {
		return Document{}, fmt.Errorf("extract %s: %w", rawURL, err)
	}
	doc := Document{
		Collection: collection,
		Ticker:     ticker,
		Title:      article.Title,
		Source:     u.Host,
		Content:    strings.TrimSpace(article.TextContent),
	}
	if doc.Content == "" {
		return Document{}, fmt.Errorf("extract %s: no readable text", rawURL)
	}
	if err := g.index.Index(doc); err != nil {
		return Document{}, err
	}
	g.logger.Printf("indexed %q (%s/%s) from %s", doc.Title, collection, ticker, u.Host)
	return doc, nil
}

// IngestFile indexes a local plain-text file.
func (g *Ingestor) IngestFile(path, collection, ticker string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	doc := Document{
		Collection: collection,
		Ticker:     ticker,
		Title:      strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Source:     "file",
		Content:    strings.TrimSpace(string(data)),
	}
	if doc.Content == "" {
		return Document{}, fmt.Errorf("read %s: empty file", path)
	}
	if err := g.index.Index(doc); err != nil {
		return Document{}, err
	}
	g.logger.Printf("indexed %q (%s/%s) from %s", doc.Title, collection, ticker, path)
	return doc, nil
}

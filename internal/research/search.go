package research

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/blevesearch/bleve"
	"github.com/google/uuid"

	"github.com/mohammad-safakhou/bullbear/internal/debate"
)

// Collection names for unstructured research documents.
const (
	CollectionAnalystReports      = "analyst_reports"
	CollectionEarningsTranscripts = "earnings_transcripts"
	CollectionFilings             = "filings"
)

// Document is one ingested research document as indexed.
type Document struct {
	ID         string `json:"id"`
	Collection string `json:"collection"`
	Ticker     string `json:"ticker"`
	Title      string `json:"title"`
	Source     string `json:"source"`
	Content    string `json:"content"`
}

// DocumentIndex is a bleve full-text index over research documents, queried
// per collection with an optional ticker filter.
type DocumentIndex struct {
	idx    bleve.Index
	log    *queryLog
	logger *log.Logger
}

// OpenIndex opens the index at path, creating it on first use.
func OpenIndex(path string) (*DocumentIndex, error) {
	var idx bleve.Index
	var err error
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		idx, err = bleve.New(path, bleve.NewIndexMapping())
	} else {
		idx, err = bleve.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("open document index: %w", err)
	}
	return newDocumentIndex(idx), nil
}

// NewMemoryIndex builds an in-memory index, used by tests and ad-hoc runs.
func NewMemoryIndex() (*DocumentIndex, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("memory index: %w", err)
	}
	return newDocumentIndex(idx), nil
}

func newDocumentIndex(idx bleve.Index) *DocumentIndex {
	return &DocumentIndex{
		idx:    idx,
		log:    &queryLog{},
		logger: log.New(log.Writer(), "[INDEX] ", log.LstdFlags),
	}
}

func (d *DocumentIndex) Close() error { return d.idx.Close() }

// Index adds one document. A missing ID gets generated.
func (d *DocumentIndex) Index(doc Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.Ticker = strings.ToUpper(doc.Ticker)
	if err := d.idx.Index(doc.ID, doc); err != nil {
		return fmt.Errorf("index document %s: %w", doc.ID, err)
	}
	return nil
}

// Count reports how many documents the index holds.
func (d *DocumentIndex) Count() (uint64, error) { return d.idx.DocCount() }

// Search runs a ranked full-text query, restricted to a collection and,
// when ticker is non-empty, to that ticker.
func (d *DocumentIndex) Search(collection, query, ticker string, limit int) ([]debate.DocumentExcerpt, error) {
	if limit <= 0 {
		limit = 5
	}
	d.log.add("search", query, map[string]interface{}{"collection": collection, "ticker": ticker, "limit": limit})

	conj := bleve.NewConjunctionQuery(bleve.NewQueryStringQuery(query))
	if collection != "" {
		tq := bleve.NewTermQuery(strings.ToLower(collection))
		tq.SetField("collection")
		conj.AddQuery(tq)
	}
	if ticker != "" {
		// terms are matched post-analysis, so lowercase to meet the analyzer
		tq := bleve.NewTermQuery(strings.ToLower(ticker))
		tq.SetField("ticker")
		conj.AddQuery(tq)
	}

	searchReq := bleve.NewSearchRequestOptions(conj, limit, 0, false)
	searchReq.Fields = []string{"*"}
	res, err := d.idx.Search(searchReq)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}

	out := make([]debate.DocumentExcerpt, 0, len(res.Hits))
	for _, hit := range res.Hits {
		out = append(out, debate.DocumentExcerpt{
			Collection: field(hit.Fields, "collection"),
			Ticker:     field(hit.Fields, "ticker"),
			Title:      field(hit.Fields, "title"),
			Source:     field(hit.Fields, "source"),
			Content:    field(hit.Fields, "content"),
			Score:      hit.Score,
			Metadata:   map[string]interface{}{"doc_id": hit.ID},
		})
	}
	return out, nil
}

func field(fields map[string]interface{}, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

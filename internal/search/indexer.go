// internal/search/indexer.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/QuadKenya/growth-engine/internal/common/logger"
	"github.com/QuadKenya/growth-engine/internal/models"
)

// Indexer keeps an operator-facing search index of candidates current.
// Indexing is best-effort: the store is the source of truth and a
// failed index write never fails the workflow operation.
type Indexer interface {
	Index(ctx context.Context, rec *models.CandidateRecord) error
}

// candidateDoc is the flattened search document.
type candidateDoc struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	County            string    `json:"county"`
	Stage             string    `json:"stage"`
	FitScore          float64   `json:"fitScore"`
	FitClassification string    `json:"fitClassification"`
	PriorityRank      int       `json:"priorityRank"`
	RejectionType     string    `json:"rejectionType"`
	AppliedAt         time.Time `json:"appliedAt"`
}

// ESIndexer writes candidate documents to Elasticsearch.
type ESIndexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewESIndexer(client *elasticsearch.Client, index string, log logger.Logger) *ESIndexer {
	return &ESIndexer{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "search-indexer"}),
	}
}

func (i *ESIndexer) Index(ctx context.Context, rec *models.CandidateRecord) error {
	doc := candidateDoc{
		ID:                rec.ID,
		Name:              rec.FullName(),
		Email:             rec.Email,
		Phone:             rec.Phone,
		County:            rec.LocationCountyInput,
		Stage:             string(rec.Stage),
		FitScore:          rec.FitScore,
		FitClassification: rec.FitClassification,
		PriorityRank:      rec.PriorityRank,
		RejectionType:     string(rec.RejectionType),
		AppliedAt:         rec.Timestamp,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal candidate doc: %w", err)
	}

	res, err := i.client.Index(
		i.index,
		bytes.NewReader(body),
		i.client.Index.WithDocumentID(rec.ID),
		i.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index candidate %s: %w", rec.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index candidate %s: %s", rec.ID, res.Status())
	}
	return nil
}

// NopIndexer is used when search is disabled.
type NopIndexer struct{}

func (NopIndexer) Index(context.Context, *models.CandidateRecord) error { return nil }

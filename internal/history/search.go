// internal/history/search.go
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	apperrors "paperforge/internal/common/errors"
	"paperforge/internal/common/logger"
)

// SearchIndex provides full-text search over a user's past papers. Indexing
// is best-effort and decoupled from SavePaper: a failed index never loses the
// paper itself.
type SearchIndex struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewSearchIndex(client *elasticsearch.Client, index string, log logger.Logger) *SearchIndex {
	if log == nil {
		log = logger.Nop()
	}
	return &SearchIndex{
		client: client,
		index:  index,
		logger: log.With(map[string]interface{}{"component": "history-search"}),
	}
}

// IndexPaper adds or replaces a paper document in the search index.
func (s *SearchIndex) IndexPaper(ctx context.Context, p *Paper) error {
	body, err := json.Marshal(p)
	if err != nil {
		return apperrors.NewSearchQueryFailedError(err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithDocumentID(p.ID),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		return apperrors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewSearchQueryFailedError(fmt.Errorf("index response: %s", res.Status()))
	}
	return nil
}

// SearchPapers runs a match query over title, prompt and content, filtered to
// one user.
func (s *SearchIndex) SearchPapers(ctx context.Context, userID, query string, size int) ([]Paper, error) {
	if size <= 0 {
		size = 10
	}

	esQuery := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  query,
						"fields": []string{"title^2", "prompt", "content"},
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"userId": userID},
				},
			},
		},
	}

	body, err := json.Marshal(esQuery)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError(fmt.Errorf("search response: %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source Paper `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewSearchQueryFailedError(err)
	}

	papers := make([]Paper, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		papers = append(papers, hit.Source)
	}
	return papers, nil
}

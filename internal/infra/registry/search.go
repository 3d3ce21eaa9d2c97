package registry

import (
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"toolgate/internal/domain"
	"toolgate/internal/infra/namespace"
)

const nameBoost = 3.0

type searchDoc struct {
	Name        string `json:"name"`
	Terms       string `json:"terms"`
	Description string `json:"description"`
	Parameters  string `json:"parameters"`
	Service     string `json:"service"`
}

// buildSearchIndex creates an in-memory index over one snapshot's tools.
func buildSearchIndex(tools []domain.ToolDescriptor) (bleve.Index, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}
	batch := idx.NewBatch()
	for _, tool := range tools {
		if err := batch.Index(tool.Name, newSearchDoc(tool)); err != nil {
			_ = idx.Close()
			return nil, err
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return nil, err
	}
	return idx, nil
}

func newSearchDoc(tool domain.ToolDescriptor) searchDoc {
	params := make([]string, 0, len(tool.Parameters))
	for _, p := range tool.Parameters {
		params = append(params, p.Name)
		if p.Description != "" {
			params = append(params, p.Description)
		}
	}
	serviceID, _, _ := namespace.Provenance(tool)
	return searchDoc{
		Name:        tool.Name,
		Terms:       splitTerms(tool.Name),
		Description: tool.Description,
		Parameters:  strings.Join(params, " "),
		Service:     serviceID,
	}
}

// splitTerms breaks identifiers like "weather.get_forecast" into words.
func splitTerms(name string) string {
	return strings.Join(strings.FieldsFunc(name, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '/' || r == ':'
	}), " ")
}

func (s *snapshot) search(text string, limit int) ([]domain.ToolDescriptor, error) {
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return firstN(s.sorted, limit), nil
	}
	if s.index == nil {
		return s.scan(text, limit), nil
	}

	req := bleve.NewSearchRequestOptions(searchQuery(text), limit, 0, false)
	req.SortBy([]string{"-_score", "_id"})
	res, err := s.index.Search(req)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ToolDescriptor, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if tool, ok := s.tools[hit.ID]; ok {
			out = append(out, tool)
		}
	}
	return out, nil
}

func searchQuery(text string) query.Query {
	terms := bleve.NewMatchQuery(splitTerms(text))
	terms.SetField("terms")
	terms.SetBoost(nameBoost)

	all := bleve.NewMatchQuery(text)

	prefix := bleve.NewPrefixQuery(strings.ToLower(text))
	prefix.SetField("terms")

	return bleve.NewDisjunctionQuery(terms, all, prefix)
}

// scan is the fallback when the snapshot has no index.
func (s *snapshot) scan(text string, limit int) []domain.ToolDescriptor {
	needle := strings.ToLower(text)
	var out []domain.ToolDescriptor
	for _, tool := range s.sorted {
		if strings.Contains(strings.ToLower(tool.Name), needle) ||
			strings.Contains(strings.ToLower(tool.Description), needle) {
			out = append(out, tool)
			if len(out) == limit {
				break
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.Contains(strings.ToLower(out[i].Name), needle) && !strings.Contains(strings.ToLower(out[j].Name), needle)
	})
	return out
}

func firstN(tools []domain.ToolDescriptor, n int) []domain.ToolDescriptor {
	if n > len(tools) {
		n = len(tools)
	}
	return append([]domain.ToolDescriptor(nil), tools[:n]...)
}

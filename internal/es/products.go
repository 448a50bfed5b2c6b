package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/search"
)

// ProductIndex mirrors the product collection into an Elasticsearch index
// and answers search queries from it.
type ProductIndex struct {
	Client *elasticsearch.Client
	Index  string
	// BatchSize caps the documents per bulk request in Reindex. Zero means 500.
	BatchSize int
}

// ProductLister is the source Reindex copies from.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}

var sortFields = map[search.Field]string{
	search.FieldID:        "id",
	search.FieldFeatured:  "featured",
	search.FieldPrice:     "price",
	search.FieldRating:    "rating",
	search.FieldCreatedAt: "createdAt",
}

var productMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id": map[string]any{"type": "keyword"},
			"name": map[string]any{
				"type":   "text",
				"fields": map[string]any{"keyword": map[string]any{"type": "keyword"}},
			},
			"slug":         map[string]any{"type": "keyword"},
			"category":     map[string]any{"type": "keyword"},
			"brand":        map[string]any{"type": "keyword"},
			"price":        map[string]any{"type": "double"},
			"rating":       map[string]any{"type": "double"},
			"featured":     map[string]any{"type": "boolean"},
			"countInStock": map[string]any{"type": "integer"},
			"createdAt":    map[string]any{"type": "date"},
		},
	},
}

func (p *ProductIndex) EnsureIndex(ctx context.Context) error {
	res, err := p.Client.Indices.Exists([]string{p.Index}, p.Client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, err := encode(productMapping)
	if err != nil {
		return err
	}
	res, err = p.Client.Indices.Create(p.Index,
		p.Client.Indices.Create.WithContext(ctx),
		p.Client.Indices.Create.WithBody(body),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res.Status(), res.Body)
	}
	return nil
}

// Reindex drops the index and rebuilds it from src, so it holds exactly the
// stored products. It returns the number of documents written.
func (p *ProductIndex) Reindex(ctx context.Context, src ProductLister) (int, error) {
	prods, err := src.ListProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("list products: %w", err)
	}

	if err := p.dropIndex(ctx); err != nil {
		return 0, err
	}
	if err := p.EnsureIndex(ctx); err != nil {
		return 0, err
	}

	batch := p.BatchSize
	if batch <= 0 {
		batch = 500
	}
	for start := 0; start < len(prods); start += batch {
		end := min(start+batch, len(prods))
		if err := p.bulkIndex(ctx, prods[start:end]); err != nil {
			return start, err
		}
	}
	return len(prods), nil
}

func (p *ProductIndex) dropIndex(ctx context.Context) error {
	res, err := p.Client.Indices.Delete([]string{p.Index}, p.Client.Indices.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete index", res.Status(), res.Body)
	}
	return nil
}

func (p *ProductIndex) bulkIndex(ctx context.Context, prods []models.Product) error {
	body, err := buildBulkBody(prods)
	if err != nil {
		return err
	}

	res, err := p.Client.Bulk(body,
		p.Client.Bulk.WithContext(ctx),
		p.Client.Bulk.WithIndex(p.Index),
		p.Client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("bulk index", res.Status(), res.Body)
	}

	var r struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  struct {
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if !r.Errors {
		return nil
	}
	for _, item := range r.Items {
		for _, op := range item {
			if op.Status >= 300 {
				return fmt.Errorf("bulk index %s: status %d: %s", op.ID, op.Status, op.Error.Reason)
			}
		}
	}
	return fmt.Errorf("bulk index: elasticsearch reported errors")
}

// buildBulkBody writes one index action and one document per product, as
// newline-delimited JSON.
func buildBulkBody(prods []models.Product) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range prods {
		doc, err := toDocument(&prods[i])
		if err != nil {
			return nil, err
		}
		action := map[string]any{"index": map[string]any{"_id": prods[i].ID}}
		if err := enc.Encode(action); err != nil {
			return nil, fmt.Errorf("encode bulk action: %w", err)
		}
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode bulk document: %w", err)
		}
	}
	return &buf, nil
}

func (p *ProductIndex) IndexProduct(ctx context.Context, prod *models.Product) error {
	doc, err := toDocument(prod)
	if err != nil {
		return err
	}
	body, err := encode(doc)
	if err != nil {
		return err
	}

	res, err := p.Client.Index(p.Index, body,
		p.Client.Index.WithContext(ctx),
		p.Client.Index.WithDocumentID(prod.ID),
		p.Client.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("index product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index product", res.Status(), res.Body)
	}
	return nil
}

func (p *ProductIndex) DeleteProduct(ctx context.Context, id string) error {
	res, err := p.Client.Delete(p.Index, id,
		p.Client.Delete.WithContext(ctx),
		p.Client.Delete.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete product", res.Status(), res.Body)
	}
	return nil
}

func (p *ProductIndex) SearchProducts(ctx context.Context, q search.Query) (int64, []models.Product, error) {
	body, err := encode(buildSearchBody(q))
	if err != nil {
		return 0, nil, err
	}

	res, err := p.Client.Search(
		p.Client.Search.WithContext(ctx),
		p.Client.Search.WithIndex(p.Index),
		p.Client.Search.WithBody(body),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res.Status(), res.Body)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string         `json:"_id"`
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
		prods[i].ID = hit.ID
	}
	return r.Hits.Total.Value, prods, nil
}

func buildSearchBody(q search.Query) map[string]any {
	filters := []any{}
	if q.Text != nil {
		filters = append(filters, map[string]any{
			"wildcard": map[string]any{
				"name.keyword": map[string]any{
					"value":            "*" + escapeWildcard(*q.Text) + "*",
					"case_insensitive": true,
				},
			},
		})
	}
	if q.Category != nil {
		filters = append(filters, map[string]any{"term": map[string]any{"category": *q.Category}})
	}
	if q.Price != nil {
		filters = append(filters, map[string]any{
			"range": map[string]any{"price": map[string]any{"gte": q.Price.Low, "lte": q.Price.High}},
		})
	}
	if q.MinRating != nil {
		filters = append(filters, map[string]any{
			"range": map[string]any{"rating": map[string]any{"gte": *q.MinRating}},
		})
	}

	orders := q.Orders()
	sorts := make([]any, 0, len(orders))
	for _, o := range orders {
		dir := "asc"
		if o.Desc {
			dir = "desc"
		}
		sorts = append(sorts, map[string]any{sortFields[o.Field]: map[string]any{"order": dir}})
	}

	return map[string]any{
		"query":            map[string]any{"bool": map[string]any{"filter": filters}},
		"sort":             sorts,
		"from":             q.Offset(),
		"size":             q.Limit(),
		"track_total_hits": true,
	}
}

// toDocument drops the _id key, which is metadata in Elasticsearch, and
// stores the id as a sortable keyword.
func toDocument(prod *models.Product) (map[string]any, error) {
	raw, err := json.Marshal(prod)
	if err != nil {
		return nil, fmt.Errorf("marshal product: %w", err)
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}
	delete(doc, "_id")
	doc["id"] = prod.ID
	return doc, nil
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}

func encode(v any) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return &buf, nil
}

func responseError(op, status string, body io.Reader) error {
	b, _ := io.ReadAll(body)
	return fmt.Errorf("%s: elasticsearch %s: %s", op, status, b)
}

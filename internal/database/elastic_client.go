package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/olivere/elastic/v7"

	"github.com/locvowork/exposure_sheet_service/internal/domain"
)

const exposureIndex = "exposure_entries"

// ExposureDoc is one detail entry flattened with its position in the
// category tree, the shape stored in Elasticsearch.
type ExposureDoc struct {
	Sheet          string   `json:"sheet"`
	Category       string   `json:"category"`
	Group          string   `json:"group"`
	Subgroup       string   `json:"subgroup,omitempty"`
	Term           string   `json:"term"`
	LGD            string   `json:"lgd"`
	PercentRRUsed  *float64 `json:"percent_rr_used,omitempty"`
	PercentAGGUsed *float64 `json:"percent_agg_used,omitempty"`
	Used           *float64 `json:"used,omitempty"`
	Available      *float64 `json:"available,omitempty"`
	TotalExposure  *float64 `json:"total_exposure,omitempty"`
	PercentTERR    *float64 `json:"percent_te_rr,omitempty"`
	PercentTEAGG   *float64 `json:"percent_te_agg,omitempty"`
}

// ElasticSearchClient wraps olivere/elastic client.
type ElasticSearchClient struct {
	client *elastic.Client
}

// NewElasticSearchClient creates a new client for Elasticsearch 7.x.
func NewElasticSearchClient(url string) (*ElasticSearchClient, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(false), // Essential when using Docker or cloud
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	return &ElasticSearchClient{client: client}, nil
}

// IndexSheetResult flattens a parsed sheet into ExposureDocs and bulk
// indexes them. Existing docs for the same position are overwritten.
func (es *ElasticSearchClient) IndexSheetResult(ctx context.Context, res domain.SheetResult) error {
	if res.Tree == nil {
		return nil
	}

	docs := FlattenResult(res)
	bulkRequest := es.client.Bulk()

	for _, doc := range docs {
		req := elastic.NewBulkIndexRequest().
			Index(exposureIndex).
			Id(docID(doc)).
			Doc(doc)
		bulkRequest = bulkRequest.Add(req)
	}

	if bulkRequest.NumberOfActions() == 0 {
		return nil
	}

	bulkResponse, err := bulkRequest.Refresh("true").Do(ctx)
	if err != nil {
		return fmt.Errorf("bulk index failed: %w", err)
	}

	if bulkResponse.Errors {
		for _, item := range bulkResponse.Items {
			for _, op := range item {
				if op.Error != nil {
					return fmt.Errorf("bulk item failed: %s", op.Error.Reason)
				}
			}
		}
	}

	return nil
}

// SearchByObligor performs a full-text match on group and term fields.
func (es *ElasticSearchClient) SearchByObligor(ctx context.Context, name string) ([]ExposureDoc, error) {
	query := elastic.NewMultiMatchQuery(name, "group", "term")

	searchResult, err := es.client.Search().
		Index(exposureIndex).
		Query(query).
		Size(100).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var docs []ExposureDoc
	for _, item := range searchResult.Hits.Hits {
		var doc ExposureDoc
		if err := json.Unmarshal(item.Source, &doc); err != nil {
			continue
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// DeleteSheet removes every indexed entry belonging to one sheet.
func (es *ElasticSearchClient) DeleteSheet(ctx context.Context, sheetName string) error {
	_, err := es.client.DeleteByQuery(exposureIndex).
		Query(elastic.NewTermQuery("sheet.keyword", sheetName)).
		Refresh("true").
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete sheet %q: %w", sheetName, err)
	}
	return nil
}

// FlattenResult walks the category tree depth first and emits one doc
// per detail entry.
func FlattenResult(res domain.SheetResult) []ExposureDoc {
	var docs []ExposureDoc
	cat := res.Tree

	emit := func(group, subgroup string, e domain.DetailEntry) {
		docs = append(docs, ExposureDoc{
			Sheet:          res.SheetName,
			Category:       cat.Label,
			Group:          group,
			Subgroup:       subgroup,
			Term:           e.Term,
			LGD:            e.LGD,
			PercentRRUsed:  e.Metrics.PercentRRUsed,
			PercentAGGUsed: e.Metrics.PercentAGGUsed,
			Used:           e.Metrics.Used,
			Available:      e.Metrics.Available,
			TotalExposure:  e.Metrics.TotalExposure,
			PercentTERR:    e.Metrics.PercentTERR,
			PercentTEAGG:   e.Metrics.PercentTEAGG,
		})
	}

	for _, g := range cat.Groups {
		for _, e := range g.Entries {
			emit(g.Name, "", e)
		}
		for _, sg := range g.Subgroups {
			for _, e := range sg.Entries {
				emit(g.Name, sg.Label, e)
			}
		}
	}
	return docs
}

func docID(doc ExposureDoc) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", doc.Sheet, doc.Group, doc.Subgroup, doc.Term, doc.LGD)
}

package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for tag documents.
//
// title_key holds domain.SearchKey(title) as a single term so a regexp
// can match anywhere inside it and sorting follows the folded title,
// the same way the stores order results.
func buildIndexMapping() (mapping.IndexMapping, error) {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = keyword.Name
	titleFieldMapping.Index = false
	titleFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	titleKeyFieldMapping := bleve.NewTextFieldMapping()
	titleKeyFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("title_key", titleKeyFieldMapping)

	// Color is stored for debugging but never searched.
	colorFieldMapping := bleve.NewTextFieldMapping()
	colorFieldMapping.Analyzer = keyword.Name
	colorFieldMapping.Index = false
	colorFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("color", colorFieldMapping)

	sortIDFieldMapping := bleve.NewTextFieldMapping()
	sortIDFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("sort_id", sortIDFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping, nil
}

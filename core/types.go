package core

import (
	"sort"
	"strings"
)

// ToolDescriptor describes a single named operation exposed by a provider.
// Providers may expose zero or more tools; zero tools is valid and simply
// never matches during tool selection.
type ToolDescriptor struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// ProviderRecord describes a capability provider in the catalog.
// Records are owned by the catalog backend and treated as read-only by
// the routing engine.
type ProviderRecord struct {
	ID          string           `json:"id" yaml:"id"`
	DisplayName string           `json:"display_name" yaml:"display_name"`
	Description string           `json:"description" yaml:"description"`
	Category    string           `json:"category" yaml:"category"`
	Tags        []string         `json:"tags" yaml:"tags"`
	Tools       []ToolDescriptor `json:"tools" yaml:"tools"`
	Verified    bool             `json:"verified" yaml:"verified"`
	UsageCount  int64            `json:"usage_count" yaml:"usage_count"`
	Author      string           `json:"author" yaml:"author"`

	// Endpoint is the base URL used by the HTTP invoker. Optional for
	// providers that are only ever invoked through the mock invoker.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// Clone returns a deep copy so callers can hand records out without
// exposing catalog internals to mutation.
func (p *ProviderRecord) Clone() *ProviderRecord {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Tags = append([]string(nil), p.Tags...)
	cp.Tools = append([]ToolDescriptor(nil), p.Tools...)
	return &cp
}

// CatalogFilter narrows a catalog query. Term matching is
// case-insensitive substring matching over provider name, description,
// category, tags and tool text.
type CatalogFilter struct {
	Category        string
	CapabilityTerms []string
	QueryTerms      []string
	RequireVerified bool
}

// InvokeResult is the outcome of invoking a provider tool.
type InvokeResult struct {
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// MatchesFilter reports whether a provider record satisfies a catalog
// filter. With no category and no terms the filter matches everything
// (subject to verification), so an empty filter lists the catalog.
func MatchesFilter(p *ProviderRecord, f CatalogFilter) bool {
	if f.RequireVerified && !p.Verified {
		return false
	}

	if f.Category == "" && len(f.CapabilityTerms) == 0 && len(f.QueryTerms) == 0 {
		return true
	}

	text := providerSearchText(p)

	if f.Category != "" {
		cat := strings.ToLower(f.Category)
		pcat := strings.ToLower(p.Category)
		if pcat == cat || strings.Contains(pcat, cat) || (pcat != "" && strings.Contains(cat, pcat)) {
			return true
		}
	}

	for _, term := range f.CapabilityTerms {
		if term != "" && strings.Contains(text, strings.ToLower(term)) {
			return true
		}
	}
	for _, term := range f.QueryTerms {
		if term != "" && strings.Contains(text, strings.ToLower(term)) {
			return true
		}
	}

	return false
}

// providerSearchText flattens the searchable fields of a record into a
// single lowercased haystack.
func providerSearchText(p *ProviderRecord) string {
	var b strings.Builder
	b.WriteString(p.DisplayName)
	b.WriteByte(' ')
	b.WriteString(p.Description)
	b.WriteByte(' ')
	b.WriteString(p.Category)
	for _, tag := range p.Tags {
		b.WriteByte(' ')
		b.WriteString(tag)
	}
	for _, tool := range p.Tools {
		b.WriteByte(' ')
		b.WriteString(tool.Name)
		b.WriteByte(' ')
		b.WriteString(tool.Description)
	}
	return strings.ToLower(b.String())
}

// SortProviders orders records ascending by ID. Catalog implementations
// apply it before returning so downstream tie-breaks never depend on
// map iteration or insertion order.
func SortProviders(records []*ProviderRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})
}

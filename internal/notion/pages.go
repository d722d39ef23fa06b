package notion

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Properties maps a page's raw property names to their values.
// Iteration follows the order the properties appeared in the source JSON.
type Properties = orderedmap.OrderedMap[string, PropertyValue]

// NewProperties returns an empty Properties map.
func NewProperties() *Properties {
	return orderedmap.New[string, PropertyValue]()
}

// Page represents a Notion page as returned by a database query.
// See: https://developers.notion.com/reference/page
type Page struct {
	Object         string      `json:"object"`
	ID             string      `json:"id"`
	CreatedTime    string      `json:"created_time,omitempty"`
	LastEditedTime string      `json:"last_edited_time,omitempty"`
	Archived       bool        `json:"archived,omitempty"`
	InTrash        bool        `json:"in_trash,omitempty"`
	URL            string      `json:"url,omitempty"`
	Properties     *Properties `json:"properties"`
}

// PropertyCount returns the number of properties on the page.
func (p *Page) PropertyCount() int {
	if p == nil || p.Properties == nil {
		return 0
	}
	return p.Properties.Len()
}

// QueryResponse is one page of results from a database query.
// See: https://developers.notion.com/reference/post-database-query
type QueryResponse struct {
	Object     string  `json:"object"`
	Results    []Page  `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

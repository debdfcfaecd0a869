package sellerlegend

import "encoding/json"

// Page is the provider's standard list envelope. Row shapes vary per
// endpoint and evolve server-side, so Data is kept raw; decode it into your
// own row type with DecodeData.
type Page struct {
	Data  json.RawMessage `json:"data"`
	Links PageLinks       `json:"links"`
	Meta  PageMeta        `json:"meta"`
}

// PageLinks carries the navigation URLs. Fields are empty on endpoints that
// return a bare collection.
type PageLinks struct {
	First string `json:"first"`
	Last  string `json:"last"`
	Prev  string `json:"prev"`
	Next  string `json:"next"`
}

// PageMeta describes the window this page covers.
type PageMeta struct {
	CurrentPage int    `json:"current_page"`
	From        int    `json:"from"`
	LastPage    int    `json:"last_page"`
	Path        string `json:"path"`
	PerPage     int    `json:"per_page"`
	To          int    `json:"to"`
	Total       int    `json:"total"`
}

// DecodeData unmarshals the raw rows into v, typically a pointer to a slice.
func (p *Page) DecodeData(v any) error {
	if len(p.Data) == 0 {
		return nil
	}
	return json.Unmarshal(p.Data, v)
}

// HasMore reports whether pages follow this one.
func (p *Page) HasMore() bool {
	return p.Links.Next != "" || p.Meta.CurrentPage < p.Meta.LastPage
}

package quercle

// Wire types for the Quercle v1 API. Optional fields carry omitempty so that
// parameters the caller never set are absent from the request body rather
// than serialized as null or empty values.

// SearchRequest is the body for POST /v1/search.
type SearchRequest struct {
	Query          string   `json:"query"`
	AllowedDomains []string `json:"allowed_domains,omitempty"`
	BlockedDomains []string `json:"blocked_domains,omitempty"`
}

// FetchRequest is the body for POST /v1/fetch.
type FetchRequest struct {
	URL    string `json:"url"`
	Prompt string `json:"prompt"`
}

// RawSearchRequest is the body for POST /v1/raw_search.
type RawSearchRequest struct {
	Query        string `json:"query"`
	Format       string `json:"format,omitempty"`
	UseSafeguard *bool  `json:"use_safeguard,omitempty"`
}

// RawFetchRequest is the body for POST /v1/raw_fetch.
type RawFetchRequest struct {
	URL          string `json:"url"`
	Format       string `json:"format,omitempty"`
	UseSafeguard *bool  `json:"use_safeguard,omitempty"`
}

// ExtractRequest is the body for POST /v1/extract.
type ExtractRequest struct {
	URL          string `json:"url"`
	Query        string `json:"query"`
	Format       string `json:"format,omitempty"`
	UseSafeguard *bool  `json:"use_safeguard,omitempty"`
}

// apiResponse is the success envelope: a single opaque result string.
type apiResponse struct {
	Result *string `json:"result"`
}

// apiError is the error envelope returned with non-2xx statuses.
type apiError struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

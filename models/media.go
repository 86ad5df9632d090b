package models

// Image is a resolved image reference. URL is always concrete: consumers
// never see an absent image, only the placeholder.
type Image struct {
	URL         string `json:"url"`
	ContentType string `json:"contentType,omitempty"`
	// Source tags which provider satisfied the resolution ("plex", "ddg",
	// "anilist", "wikipedia", "placeholder").
	Source string `json:"source,omitempty"`
}

// Role is a credited cast role as reported by the catalog server.
type Role struct {
	Name string `json:"name"`
	// Thumb is a server-relative thumbnail path, empty when the catalog
	// has no image for this person.
	Thumb string `json:"thumb,omitempty"`
}

// MediaItem is one selectable item from the catalog. Built per request,
// never persisted.
type MediaItem struct {
	ID      string `json:"id"`
	Key     string `json:"key"`
	Title   string `json:"title"`
	Year    int    `json:"year,omitempty"`
	Summary string `json:"summary"`
	// Kind is "movie", "series" or "other".
	Kind   string   `json:"kind"`
	Thumb  string   `json:"thumb,omitempty"`
	Roles  []Role   `json:"roles,omitempty"`
	Extras []string `json:"extras,omitempty"`
}

// CastMember is a credited role with its resolved image.
type CastMember struct {
	Name  string `json:"name"`
	Image Image  `json:"image"`
}

// EnrichedItem is the immutable result of running the enrichment pipeline
// over a sampled MediaItem. Every field is populated: failed resolutions
// degrade to placeholders, never to absent values.
type EnrichedItem struct {
	MediaItem

	Poster Image        `json:"poster"`
	Cast   []CastMember `json:"cast"`

	// TrailerURL is always a clickable external link: either a direct
	// video page or a search-results URL.
	TrailerURL string `json:"trailerUrl"`
	// InternalTrailerURL points at the catalog's own extras when the
	// server exposes one. Best effort, may be empty.
	InternalTrailerURL string `json:"internalTrailerUrl,omitempty"`

	WatchURL string `json:"watchUrl"`
}

// Section is one library section of the catalog server.
type Section struct {
	Title string `json:"title"`
	// Kind is the section type as reported by the server ("movie",
	// "show", "artist", ...).
	Kind string `json:"kind"`
}

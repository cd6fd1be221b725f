package requests

// ParseListingRequest asks for one listing to be parsed.
type ParseListingRequest struct {
	Text    string       `json:"text" binding:"required"`
	Options ParseOptions `json:"options,omitempty"`
}

// ParseOptions are the per-request engine options.
type ParseOptions struct {
	BlockStyle        string `json:"block_style,omitempty"`        // "title" (default) or "letter"
	SocietyDictionary string `json:"society_dictionary,omitempty"` // overrides the active dictionary
	AliasTable        string `json:"alias_table,omitempty"`        // YAML or JSON; overrides the active table
	FuzzySocieties    *bool  `json:"fuzzy_societies,omitempty"`    // nil keeps the configured default
	UseCache          bool   `json:"use_cache,omitempty"`
}

// BatchParseRequest submits up to 20k listings as one job.
type BatchParseRequest struct {
	Texts   []string     `json:"texts" binding:"required,min=1,max=20000"`
	Options ParseOptions `json:"options,omitempty"`
}

// UpdateDictionaryRequest replaces the active society dictionary and/or alias table.
type UpdateDictionaryRequest struct {
	SocietyDictionary string `json:"society_dictionary,omitempty"`
	AliasTable        string `json:"alias_table,omitempty"`
	SyncDirectory     bool   `json:"sync_directory,omitempty"`
}

// InvalidateCacheRequest drops cached parses. Empty version clears everything.
type InvalidateCacheRequest struct {
	KeepVersion string `json:"keep_version,omitempty"`
}

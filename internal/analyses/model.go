package analyses

// Result is a completed document analysis. Nothing about it is
// persisted; it exists only in the response to the caller.
type Result struct {
	Filename        string `json:"filename"`
	Instructions    string `json:"instructions"`
	Analysis        string `json:"analysis"`
	Model           string `json:"model"`
	ChunksProcessed int    `json:"chunks_processed"`
}

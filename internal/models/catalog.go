package models

// Info describes a selectable inference model.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

var available = map[string]Info{
	"mistral:latest": {
		Name:        "Mistral 7B",
		Description: "Best for general analysis, summarization, and business documents",
		Type:        "general",
	},
	"llama3.2:latest": {
		Name:        "Llama 3.2",
		Description: "Balanced model good for most tasks",
		Type:        "general",
	},
	"deepseek-coder:6.7b": {
		Name:        "DeepSeek Coder",
		Description: "Specialized for code review and technical analysis",
		Type:        "code",
	},
}

// Available returns the selectable model catalog.
func Available() map[string]Info {
	out := make(map[string]Info, len(available))
	for id, info := range available {
		out[id] = info
	}
	return out
}

// IsAvailable reports whether id names a model in the catalog.
func IsAvailable(id string) bool {
	_, ok := available[id]
	return ok
}

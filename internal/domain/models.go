package domain

// ModelOption describes one downloadable whisper.cpp model preset.
type ModelOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	FileName    string `json:"fileName"`
	SizeLabel   string `json:"sizeLabel,omitempty"`
	Description string `json:"description,omitempty"`
	Downloaded  bool   `json:"downloaded"`
	LocalPath   string `json:"localPath,omitempty"`
}

// ModelDescriptor resolves a model id against the local cache.
type ModelDescriptor struct {
	ModelID   string `json:"modelId"`
	LocalPath string `json:"localPath"`
	Present   bool   `json:"present"`
}

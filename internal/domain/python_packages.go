package domain

// PythonPackageOption describes one Python package relevant to rendering.
type PythonPackageOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PipName     string `json:"pipName"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
	Installed   bool   `json:"installed"`
	Version     string `json:"version,omitempty"`
}

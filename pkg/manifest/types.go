package manifest

// Manifest is the ordered list of plugins published by a plugin repository.
// Order follows the source document and is only used for reporting.
type Manifest []Plugin

// Plugin describes one package entry in a repository manifest
type Plugin struct {
	GUID        string          `json:"guid" yaml:"guid"`               // Canonical UUID text
	Name        string          `json:"name" yaml:"name"`               // Display name, used for attribution
	Description string          `json:"description" yaml:"description"` // Long description
	Overview    string          `json:"overview" yaml:"overview"`       // Short description
	Owner       string          `json:"owner" yaml:"owner"`             // Maintainer
	Category    string          `json:"category" yaml:"category"`       // Catalog category
	Versions    []PluginVersion `json:"versions" yaml:"versions"`       // Released builds
}

// PluginVersion describes one released build of a plugin
type PluginVersion struct {
	Version   string `json:"version" yaml:"version"`     // Four-part release version
	Changelog string `json:"changelog" yaml:"changelog"` // Release notes
	TargetABI string `json:"targetAbi" yaml:"targetAbi"` // Three-part host ABI version
	SourceURL string `json:"sourceUrl" yaml:"sourceUrl"` // Download location
	Checksum  string `json:"checksum" yaml:"checksum"`   // MD5 of the package, hex encoded
	Timestamp string `json:"timestamp" yaml:"timestamp"` // RFC 3339 release time
	Filename  string `json:"filename" yaml:"filename"`   // Package file name
	Name      string `json:"name" yaml:"name"`           // Version label
}

// VersionCount returns the number of plugin versions across the whole manifest
func (m Manifest) VersionCount() int {
	count := 0
	for i := range m {
		count += len(m[i].Versions)
	}
	return count
}

package addon

import (
	"encoding/json"
	"strings"
)

// Addon is one installed addon as returned by addonCollectionGet.
type Addon struct {
	TransportURL  string   `json:"transportUrl"`
	TransportName string   `json:"transportName,omitempty"`
	Manifest      Manifest `json:"manifest"`
	Flags         Flags    `json:"flags,omitempty"`
}

// Flags carries the collection-level markers Stremio attaches to
// bundled addons.
type Flags struct {
	Official  bool `json:"official,omitempty"`
	Protected bool `json:"protected,omitempty"`
}

// Manifest describes what an addon serves.
type Manifest struct {
	ID          string     `json:"id"`
	Version     string     `json:"version,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Resources   []Resource `json:"resources"`
	Types       []string   `json:"types"`
	IDPrefixes  []string   `json:"idPrefixes,omitempty"`
	Catalogs    []Catalog  `json:"catalogs,omitempty"`
}

// Resource is one entry of a manifest's resources list. Manifests
// publish either a bare name ("catalog") or an object carrying its own
// type and id-prefix constraints; both decode into this struct, with
// the bare form leaving Types and IDPrefixes nil so the manifest-level
// constraints apply.
type Resource struct {
	Name       string   `json:"name"`
	Types      []string `json:"types,omitempty"`
	IDPrefixes []string `json:"idPrefixes,omitempty"`
}

func (r *Resource) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*r = Resource{Name: name}
		return nil
	}
	// Alias drops UnmarshalJSON so the object form decodes plainly.
	type resource Resource
	var obj resource
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*r = Resource(obj)
	return nil
}

// Catalog is one catalog a manifest advertises.
type Catalog struct {
	Type           string   `json:"type"`
	ID             string   `json:"id"`
	Name           string   `json:"name,omitempty"`
	Extra          []Extra  `json:"extra,omitempty"`
	ExtraSupported []string `json:"extraSupported,omitempty"`
	ExtraRequired  []string `json:"extraRequired,omitempty"`
}

// Extra is one optional catalog parameter, such as search or genre.
type Extra struct {
	Name       string   `json:"name"`
	IsRequired bool     `json:"isRequired,omitempty"`
	Options    []string `json:"options,omitempty"`
}

// BaseURL returns the addon's resource root: the transport url without
// its manifest.json suffix.
func (a *Addon) BaseURL() string {
	return strings.TrimSuffix(a.TransportURL, "/manifest.json")
}

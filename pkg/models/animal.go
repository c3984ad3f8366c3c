package models

// AnimalRecord is one entry of the static animal catalog, keyed by the
// lowercase classifier tag it describes.
type AnimalRecord struct {
	Name       string   `json:"name" yaml:"name"`
	Habitat    string   `json:"habitat" yaml:"habitat"`
	Diet       string   `json:"diet" yaml:"diet"`
	Endangered string   `json:"endangered" yaml:"endangered"` // conservation status, free text
	Summary    string   `json:"summary,omitempty" yaml:"summary"`
	FunFacts   []string `json:"funFacts,omitempty" yaml:"funFacts"`
	Image      string   `json:"image" yaml:"image"`
}

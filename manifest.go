package iconic

import (
	"errors"
	"fmt"
)

// Artifact is a named file of the icon pack.
type Artifact struct {
	Name string
	Data []byte
}

// Manifest is the ordered list of the files of an icon pack.
// Names are unique. Once sealed, the README is the last entry and no
// further file can be added.
type Manifest struct {
	artifacts []Artifact
	index     map[string]int
	sealed    bool
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{index: make(map[string]int)}
}

// Add appends an artifact to the manifest.
func (m *Manifest) Add(a Artifact) error {
	if m.sealed {
		return errors.New("manifest is sealed")
	}
	if len(a.Name) == 0 {
		return errors.New("artifact without a name")
	}
	if _, ok := m.index[a.Name]; ok {
		return fmt.Errorf("duplicate artifact name %q", a.Name)
	}
	m.index[a.Name] = len(m.artifacts)
	m.artifacts = append(m.artifacts, a)
	return nil
}

// Get returns the artifact stored under the name.
func (m *Manifest) Get(name string) (Artifact, bool) {
	i, ok := m.index[name]
	if !ok {
		return Artifact{}, false
	}
	return m.artifacts[i], true
}

// Names returns the artifact names in insertion order.
func (m *Manifest) Names() []string {
	names := make([]string, len(m.artifacts))
	for i, a := range m.artifacts {
		names[i] = a.Name
	}
	return names
}

// Has reports whether an artifact with the name was added.
func (m *Manifest) Has(name string) bool {
	_, ok := m.index[name]
	return ok
}

// Sealed reports whether the README was added.
func (m *Manifest) Sealed() bool { return m.sealed }

// RequiredNames lists the files every icon pack must contain.
func RequiredNames() []string {
	names := make([]string, 0, len(Sizes)+2)
	for _, s := range Sizes {
		names = append(names, SizeName(s))
	}
	return append(names, FaviconName, AppleTouchName)
}

// Validate checks that all the required files are present.
func (m *Manifest) Validate() error {
	var missing []string
	for _, name := range RequiredNames() {
		if !m.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("incomplete icon pack, missing %v", missing)
	}
	return nil
}

// Seal validates the manifest, then appends the generated README.
func (m *Manifest) Seal() error {
	if m.sealed {
		return nil
	}
	if err := m.Validate(); err != nil {
		return err
	}
	readme, err := Readme(m.Names())
	if err != nil {
		return fmt.Errorf("could not generate the readme: %w", err)
	}
	if err := m.Add(Artifact{Name: ReadmeName, Data: readme}); err != nil {
		return err
	}
	m.sealed = true
	return nil
}

type readmeData struct {
	FaviconSize    int
	AppleTouchSize int
	First, Last    string
	HasSVG         bool
	Files          []string
}

// Readme renders the usage instructions listing the files of the pack.
func Readme(files []string) ([]byte, error) {
	listed := append(append([]string(nil), files...), ReadmeName)
	hasSVG := false
	for _, f := range files {
		if f == SVGName {
			hasSVG = true
		}
	}
	return execTemplate("README.txt.tmpl", readmeData{
		FaviconSize:    FaviconSize,
		AppleTouchSize: AppleTouchSize,
		First:          SizeName(Sizes[0]),
		Last:           SizeName(Sizes[len(Sizes)-1]),
		HasSVG:         hasSVG,
		Files:          listed,
	})
}

package pch2csd

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReadPatch unmarshals a patch from .json or .yml data.
func ReadPatch(data []byte) (*Patch, error) {
	var patch Patch
	if errJSON := json.Unmarshal(data, &patch); errJSON != nil {
		patch = Patch{}
		if errYaml := yaml.Unmarshal(data, &patch); errYaml != nil {
			return nil, fmt.Errorf("patch could not be unmarshaled as a .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	return &patch, nil
}

// Summary returns a human readable listing of the modules and cables of the
// patch.
func (p *Patch) Summary() string {
	var b strings.Builder
	name := p.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(&b, "Patch %v: %d modules, %d cables\n", name, len(p.Modules), len(p.Cables))
	for _, m := range p.Modules {
		fmt.Fprintf(&b, "  module %v, %d parameters\n", m, len(p.ModuleParams(m.Ref()).Values))
	}
	for _, c := range p.Cables {
		rate := "?"
		if r, err := c.Color.Rate(); err == nil {
			rate = r.String()
		}
		fmt.Fprintf(&b, "  cable %v:%d -> %v:%d (%v, %v)\n", c.From(), c.JackFrom, c.To(), c.JackTo, c.Color, rate)
	}
	return b.String()
}

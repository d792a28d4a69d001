package pch2csd

import (
	"fmt"
	"sort"
)

type (
	// Patch is a parsed modular synthesizer patch: the modules, the cables
	// connecting them and the raw parameter values of every module.
	Patch struct {
		Name       string             `yaml:",omitempty" json:",omitempty"`
		Modules    []Module           `yaml:",omitempty"`
		Cables     []Cable            `yaml:",omitempty"`
		Parameters []ModuleParameters `yaml:",omitempty"`
	}

	// Module is a single module of the patch. Type selects the opcode
	// template, TypeName is used as the opcode name in the generated code.
	Module struct {
		ID       int
		Type     int
		TypeName string
		Location Location
	}

	// ModuleRef identifies a module. Module IDs are unique only within one
	// location, so both are needed.
	ModuleRef struct {
		Location Location
		ID       int
	}

	// Cable connects the outlet JackFrom of ModuleFrom to the inlet JackTo
	// of ModuleTo. Both modules live in Location. Color tells the rate of
	// the signal carried by the cable.
	Cable struct {
		Location   Location
		Color      CableColor
		ModuleFrom int
		JackFrom   int
		ModuleTo   int
		JackTo     int
	}

	// ModuleParameters is the list of raw parameter values of a module, in
	// the order the module type defines its parameters. The values are
	// usually in range 0..127 and get mapped to real values through value
	// tables when generating code.
	ModuleParameters struct {
		Location Location
		ModuleID int
		Values   []int `yaml:",flow"`
	}
)

// Ref returns the reference identifying the module.
func (m Module) Ref() ModuleRef {
	return ModuleRef{Location: m.Location, ID: m.ID}
}

func (m Module) String() string {
	return fmt.Sprintf("%v(%d, type %d, %v)", m.TypeName, m.ID, m.Type, m.Location)
}

func (r ModuleRef) String() string {
	return fmt.Sprintf("%v:%d", r.Location, r.ID)
}

// From returns the reference of the module the cable starts from.
func (c Cable) From() ModuleRef {
	return ModuleRef{Location: c.Location, ID: c.ModuleFrom}
}

// To returns the reference of the module the cable ends to.
func (c Cable) To() ModuleRef {
	return ModuleRef{Location: c.Location, ID: c.ModuleTo}
}

// Module finds the module with the given reference.
func (p *Patch) Module(ref ModuleRef) (Module, bool) {
	for _, m := range p.Modules {
		if m.Location == ref.Location && m.ID == ref.ID {
			return m, true
		}
	}
	return Module{}, false
}

// IncomingCables returns all the cables ending to the module, in patch order.
func (p *Patch) IncomingCables(ref ModuleRef) []Cable {
	var ret []Cable
	for _, c := range p.Cables {
		if c.To() == ref {
			ret = append(ret, c)
		}
	}
	return ret
}

// IncomingCablesByInlet returns the same cables as IncomingCables, but
// ordered by the inlet they are connected to. Cables to the same inlet keep
// their patch order.
func (p *Patch) IncomingCablesByInlet(ref ModuleRef) []Cable {
	ret := p.IncomingCables(ref)
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].JackTo < ret[j].JackTo })
	return ret
}

// ModuleParams returns the raw parameter values of a module. A module without
// parameter record has no parameters.
func (p *Patch) ModuleParams(ref ModuleRef) ModuleParameters {
	for _, mp := range p.Parameters {
		if mp.Location == ref.Location && mp.ModuleID == ref.ID {
			return mp
		}
	}
	return ModuleParameters{Location: ref.Location, ModuleID: ref.ID}
}

// Validate checks that module references are unique and that every cable
// connects existing modules.
func (p *Patch) Validate() error {
	seen := map[ModuleRef]bool{}
	for _, m := range p.Modules {
		if seen[m.Ref()] {
			return fmt.Errorf("duplicate module %v", m.Ref())
		}
		seen[m.Ref()] = true
	}
	for i, c := range p.Cables {
		if !seen[c.From()] {
			return fmt.Errorf("cable %d starts from a non-existing module %v", i, c.From())
		}
		if !seen[c.To()] {
			return fmt.Errorf("cable %d ends to a non-existing module %v", i, c.To())
		}
		if c.JackFrom < 0 || c.JackTo < 0 {
			return fmt.Errorf("cable %d has a negative jack index", i)
		}
	}
	return nil
}

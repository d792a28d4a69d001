package csdgen

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/zappfinger/pch2csd"
)

// firstFreeBus is the first zak location after ZeroBus and TrashBus
const firstFreeBus = 2

type (
	// ZakSpace allocates zak locations for the signals of a patch. Audio and
	// control rate signals live in separate spaces, both numbered from
	// firstFreeBus onwards. Every outlet gets at most one location, which is
	// shared by all the cables starting from it.
	ZakSpace struct {
		// ALoc and KLoc are the next free audio and control rate locations,
		// i.e. the sizes of the spaces after Connect.
		ALoc int
		KLoc int
		zaka map[PortKey]int
		zakk map[PortKey]int
	}

	// PortKey identifies an outlet of a module.
	PortKey struct {
		Module pch2csd.ModuleRef
		Port   int
	}
)

func NewZakSpace() *ZakSpace {
	z := &ZakSpace{}
	z.Reset()
	return z
}

// Reset forgets all allocated locations.
func (z *ZakSpace) Reset() {
	z.ALoc, z.KLoc = firstFreeBus, firstFreeBus
	z.zaka = map[PortKey]int{}
	z.zakk = map[PortKey]int{}
}

// GetOrAllocate returns the location of an outlet in the space of the given
// rate, allocating the next free location if the outlet has none yet.
func (z *ZakSpace) GetOrAllocate(rate pch2csd.Rate, key PortKey) (int, error) {
	var zak map[PortKey]int
	var next *int
	switch rate {
	case pch2csd.AudioRate:
		zak, next = z.zaka, &z.ALoc
	case pch2csd.ControlRate:
		zak, next = z.zakk, &z.KLoc
	default:
		return 0, errors.Wrapf(ErrUnknownRate, "%q", rate)
	}
	if loc, ok := zak[key]; ok {
		return loc, nil
	}
	loc := *next
	*next++
	zak[key] = loc
	return loc, nil
}

// Connect resets the space and then connects every cable of the patch by
// writing the same zak location to the outlet of the source opcode and to
// the inlet of the destination opcode. Inlets and outlets without cables keep
// ZeroBus and TrashBus.
func (z *ZakSpace) Connect(patch *pch2csd.Patch, opcodes []*Opcode) error {
	z.Reset()
	byRef := make(map[pch2csd.ModuleRef]*Opcode, len(opcodes))
	for _, op := range opcodes {
		byRef[op.Module.Ref()] = op
	}
	for i, c := range patch.Cables {
		from, ok := byRef[c.From()]
		if !ok {
			return fmt.Errorf("cable %d starts from module %v, which has no opcode", i, c.From())
		}
		to, ok := byRef[c.To()]
		if !ok {
			return fmt.Errorf("cable %d ends to module %v, which has no opcode", i, c.To())
		}
		if c.JackFrom < 0 || c.JackFrom >= len(from.OutTypes) {
			return fmt.Errorf("cable %d starts from outlet %d of %v, which has only %d outlets", i, c.JackFrom, from, len(from.OutTypes))
		}
		if c.JackTo < 0 || c.JackTo >= len(to.InTypes) {
			return fmt.Errorf("cable %d ends to inlet %d of %v, which has only %d inlets", i, c.JackTo, to, len(to.InTypes))
		}
		outRate, inRate := pch2csd.Rate(from.OutTypes[c.JackFrom]), pch2csd.Rate(to.InTypes[c.JackTo])
		if outRate != inRate {
			return errors.Wrapf(ErrUnsupportedRateConversion, "cable %d from %v outlet %d (%v) to %v inlet %d (%v)",
				i, from, c.JackFrom, outRate, to, c.JackTo, inRate)
		}
		loc, err := z.GetOrAllocate(outRate, PortKey{Module: c.From(), Port: c.JackFrom})
		if err != nil {
			return errors.Wrapf(err, "cable %d", i)
		}
		from.Outlets[c.JackFrom] = loc
		to.Inlets[c.JackTo] = loc
	}
	return nil
}

// Init returns the zakinit statement declaring the sizes of the spaces.
func (z *ZakSpace) Init() string {
	return fmt.Sprintf("zakinit %d, %d", z.ALoc, z.KLoc)
}

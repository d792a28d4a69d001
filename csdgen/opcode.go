package csdgen

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/zappfinger/pch2csd"
)

const (
	// ZeroBus is the zak location that is never written to. Unconnected
	// inlets read from it.
	ZeroBus = 0
	// TrashBus is the zak location that is never read from. Unconnected
	// outlets write to it.
	TrashBus = 1

	// InvalidParam replaces every parameter of a module whose parameter
	// count does not match its template.
	InvalidParam = -1
)

type (
	// Opcode is the instance of an user defined opcode for one module of the
	// patch. Inlets and Outlets hold the zak locations the opcode reads and
	// writes; they are filled by ZakSpace.Connect.
	Opcode struct {
		Module   pch2csd.Module
		Template *Template
		Variant  int
		InTypes  string
		OutTypes string
		Params   []float64
		Inlets   []int
		Outlets  []int
	}

	// ValueTables maps the names of global value tables to the tables. The
	// raw parameter values of modules are indices to these tables.
	ValueTables map[string][]float64
)

// NewOpcode builds the opcode instance of a module. The variant of the
// template is chosen based on the rates of the cables connected to the module
// and the parameters are mapped through the value tables.
func NewOpcode(patch *pch2csd.Patch, mod pch2csd.Module, tpl *Template, tables ValueTables, logger *log.Logger) (*Opcode, error) {
	if !tpl.Valid() {
		return nil, errors.Wrapf(tpl.Err(), "can't create an opcode for %v", mod)
	}
	variant, err := selectVariant(patch, mod, tpl)
	if err != nil {
		return nil, err
	}
	decl := tpl.Args[variant]
	op := &Opcode{
		Module:   mod,
		Template: tpl,
		Variant:  variant,
		InTypes:  decl.Inputs,
		OutTypes: decl.Outputs,
		Inlets:   make([]int, len(decl.Inputs)),
		Outlets:  make([]int, len(decl.Outputs)),
	}
	for i := range op.Inlets {
		op.Inlets[i] = ZeroBus
	}
	for i := range op.Outlets {
		op.Outlets[i] = TrashBus
	}
	if op.Params, err = op.resolveParams(patch, tables, logger); err != nil {
		return nil, err
	}
	return op, nil
}

// selectVariant chooses variant 1 if any connected inlet has a rate that does
// not match variant 0 but matches variant 1. Otherwise variant 0 is used.
func selectVariant(patch *pch2csd.Patch, mod pch2csd.Module, tpl *Template) (int, error) {
	if tpl.NumVariants() < 2 {
		return 0, nil
	}
	v0, v1 := tpl.Args[0].Inputs, tpl.Args[1].Inputs
	for _, c := range patch.IncomingCablesByInlet(mod.Ref()) {
		rate, err := c.Color.Rate()
		if err != nil {
			return 0, errors.Wrapf(ErrUnknownRate, "cable to %v inlet %d: %v", mod, c.JackTo, err)
		}
		if c.JackTo < 0 || c.JackTo >= len(v0) || c.JackTo >= len(v1) {
			return 0, fmt.Errorf("cable to %v connects to inlet %d, but %v declares only %d/%d inputs", mod, c.JackTo, tpl, len(v0), len(v1))
		}
		if v0[c.JackTo] != byte(rate) && v1[c.JackTo] == byte(rate) {
			return 1, nil
		}
	}
	return 0, nil
}

func (op *Opcode) resolveParams(patch *pch2csd.Patch, tables ValueTables, logger *log.Logger) ([]float64, error) {
	decl := op.Template.Args[op.Variant].Params
	raw := patch.ModuleParams(op.Module.Ref()).Values
	ret := make([]float64, len(raw))
	if len(decl) != len(raw) {
		logger.Printf("%v: template %v declares %d parameters, but module %v has %d; using %v for all of them",
			ErrParameterCountMismatch, op.Template, len(decl), op.Module, len(raw), InvalidParam)
		for i := range ret {
			ret[i] = InvalidParam
		}
		return ret, nil
	}
	for i := range raw {
		v, err := op.mapValue(i, raw, tables)
		if err != nil {
			return nil, errors.Wrapf(err, "%v parameter %d", op.Module, i)
		}
		ret[i] = v
	}
	return ret, nil
}

func (op *Opcode) mapValue(index int, raw []int, tables ValueTables) (float64, error) {
	if index >= len(op.Template.Maps) {
		return 0, errors.Wrapf(ErrUnsupportedMapping, "%v has no 'map' annotation for parameter %d", op.Template, index)
	}
	m := op.Template.Maps[index]
	var tableName string
	switch m.Kind {
	case MapDirect:
		if len(m.Args) < 1 {
			return 0, errors.Wrap(ErrUnsupportedMapping, "direct mapping without a table name")
		}
		tableName = m.Args[0]
	case MapSelect:
		if len(m.Args) < 2 {
			return 0, errors.Wrap(ErrUnsupportedMapping, "select mapping needs a parameter number and at least one table")
		}
		n, err := strconv.Atoi(m.Args[0])
		if err != nil || n < 1 || n > len(raw) {
			return 0, errors.Wrapf(ErrUnsupportedMapping, "select mapping refers to invalid parameter %q", m.Args[0])
		}
		sel := raw[n-1]
		if sel < 0 || sel+1 >= len(m.Args) {
			return 0, errors.Wrapf(ErrUnsupportedMapping, "parameter %d value %d does not select any of the tables %v", n, sel, m.Args[1:])
		}
		tableName = m.Args[sel+1]
	default:
		return 0, errors.Wrapf(ErrUnsupportedMapping, "mapping type %q is not supported", m.Kind)
	}
	table, ok := tables[tableName]
	if !ok {
		return 0, errors.Wrapf(ErrUnsupportedMapping, "value table %q does not exist", tableName)
	}
	v := raw[index]
	if v < 0 || v >= len(table) {
		return 0, fmt.Errorf("value %d is out of range of value table %q (%d entries)", v, tableName, len(table))
	}
	return table[v], nil
}

// Name returns the name of the opcode. Alternate variants of a template get
// the variant number as suffix, so that every variant can be defined in the
// same program.
func (op *Opcode) Name() string {
	if op.Variant == 0 {
		return op.Module.TypeName
	}
	return fmt.Sprintf("%v_v%d", op.Module.TypeName, op.Variant)
}

// Statement returns the code calling the opcode: parameters first, then the
// zak locations of inlets and outlets.
func (op *Opcode) Statement() string {
	var groups []string
	add := func(comment string, values []string) {
		if len(values) > 0 {
			groups = append(groups, comment+" "+strings.Join(values, ", "))
		}
	}
	params := make([]string, len(op.Params))
	for i, p := range op.Params {
		params[i] = strconv.FormatFloat(p, 'g', -1, 64)
	}
	add("/* Params */", params)
	add("/* Inlets */", itoas(op.Inlets))
	add("/* Outlets */", itoas(op.Outlets))
	return op.Name() + "(" + strings.Join(groups, ", ") + ")"
}

// Source returns the definition of the opcode, renamed to Name.
func (op *Opcode) Source() string {
	body := op.Template.Body(op.Variant)
	if len(body) == 0 {
		return ""
	}
	src := make([]string, len(body))
	copy(src, body)
	if op.Module.TypeName != "" {
		src[0] = strings.Replace(src[0], op.Module.TypeName, op.Name(), 1)
	}
	return strings.Join(src, "\n")
}

func (op *Opcode) String() string {
	return op.Name()
}

func itoas(values []int) []string {
	ret := make([]string, len(values))
	for i, v := range values {
		ret[i] = strconv.Itoa(v)
	}
	return ret
}

package csdgen

import (
	"bufio"
	"fmt"
	"log"
	"strings"

	"github.com/pkg/errors"
)

const (
	argsPrefix = ";@ args"
	mapPrefix  = ";@ map"
	endOfUdo   = "endop"
)

type (
	// Template is the opcode template of one module type. The template is
	// Csound code defining one or more user defined opcodes (variants), with
	// annotations telling the signature of each variant and how the raw
	// parameter values of the module are mapped to real values.
	//
	// A template is immutable after parsing. If the annotations were invalid,
	// Args and Maps are empty and building an opcode from it fails.
	Template struct {
		Type     int
		TypeName string
		Lines    []string
		Args     []ArgsDecl
		Maps     []MapDecl
		problems []string
	}

	// ArgsDecl declares the signature of one variant of the opcode: one rate
	// character per parameter, input and output. Line is the index of the
	// annotation line; the opcode body starts on the next line.
	ArgsDecl struct {
		Line    int
		Params  string
		Inputs  string
		Outputs string
	}

	// MapDecl tells how the raw value of one parameter is mapped to a real
	// value. With MapDirect, Args[0] names the value table. With MapSelect,
	// Args[0] is the 1-based number of the parameter whose raw value selects
	// the table from Args[1:].
	MapDecl struct {
		Kind MapKind
		Args []string
	}

	MapKind string

	// annotation is either an ArgsDecl or a MapDecl
	annotation interface {
		annotation()
	}

	// malformedArgs is an args annotation with wrong number of components
	malformedArgs struct {
		Line  int
		Parts []string
	}
)

const (
	MapDirect MapKind = "d"
	MapSelect MapKind = "s"
)

func (ArgsDecl) annotation()      {}
func (MapDecl) annotation()       {}
func (malformedArgs) annotation() {}

// ParseTemplate parses the annotations of a module template. Problems in the
// annotations are logged; a template with errors is returned without
// annotations, see Valid.
func ParseTemplate(modType int, typeName string, text string, logger *log.Logger) *Template {
	t := &Template{Type: modType, TypeName: typeName}
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		t.Lines = append(t.Lines, strings.TrimSpace(scanner.Text()))
	}
	var args []ArgsDecl
	var maps []MapDecl
	for i, line := range t.Lines {
		switch a := parseAnnotation(i, line).(type) {
		case ArgsDecl:
			args = append(args, a)
		case MapDecl:
			maps = append(maps, a)
		case malformedArgs:
			t.problems = append(t.problems, fmt.Sprintf("%v:%d the 'args' annotation should have exactly three arguments, got %d", t, a.Line, len(a.Parts)))
		}
	}
	if len(args) == 0 && len(t.problems) == 0 {
		t.problems = append(t.problems, fmt.Sprintf("%v: no opcode 'args' annotations were found in the template", t))
	}
	for _, p := range t.problems {
		logger.Print(p)
	}
	if len(t.problems) > 0 {
		return t
	}
	if len(args[0].Params) != len(maps) {
		logger.Printf("%v: the number of 'map' annotations (%d) should be equal to the number of module parameters (%d)", t, len(maps), len(args[0].Params))
	}
	t.Args, t.Maps = args, maps
	return t
}

func parseAnnotation(lineNo int, line string) annotation {
	switch {
	case strings.HasPrefix(line, argsPrefix):
		parts := strings.Split(strings.TrimPrefix(line, argsPrefix), ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) != 3 {
			return malformedArgs{Line: lineNo, Parts: parts}
		}
		return ArgsDecl{Line: lineNo, Params: parts[0], Inputs: parts[1], Outputs: parts[2]}
	case strings.HasPrefix(line, mapPrefix):
		fields := strings.Fields(strings.TrimPrefix(line, mapPrefix))
		if len(fields) == 0 {
			return MapDecl{}
		}
		return MapDecl{Kind: MapKind(fields[0]), Args: fields[1:]}
	}
	return nil
}

// Valid tells if the annotations of the template were parsed without errors.
func (t *Template) Valid() bool {
	return len(t.Args) > 0
}

// Err returns ErrTemplateInvalid, with the parsing problems as context, if the
// template is not valid.
func (t *Template) Err() error {
	if t.Valid() {
		return nil
	}
	if len(t.problems) == 0 {
		return errors.Wrapf(ErrTemplateInvalid, "%v", t)
	}
	return errors.Wrap(ErrTemplateInvalid, strings.Join(t.problems, "; "))
}

// NumVariants returns the number of variants declared in the template.
func (t *Template) NumVariants() int {
	return len(t.Args)
}

// Body returns the lines of the opcode definition of a variant: from the line
// following its args annotation up to and including the first endop line.
func (t *Template) Body(variant int) []string {
	if variant < 0 || variant >= len(t.Args) {
		return nil
	}
	var body []string
	for _, l := range t.Lines[t.Args[variant].Line+1:] {
		body = append(body, l)
		if strings.HasPrefix(l, endOfUdo) {
			break
		}
	}
	return body
}

func (t *Template) String() string {
	return fmt.Sprintf("Template(%v, %d.txt)", t.TypeName, t.Type)
}

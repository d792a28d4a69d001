package csdgen

import (
	"sort"
	"strings"
)

// Csd assembles the final program from the library boilerplate, the zak space
// and the connected opcodes.
type Csd struct {
	Library *Library
	Zak     *ZakSpace
	Opcodes []*Opcode
}

// Code returns the whole program: header, zakinit, function tables, opcode
// definitions, voice area instrument, FX area instrument and footer.
func (c *Csd) Code() (string, error) {
	defs, err := c.opcodeDefinitions()
	if err != nil {
		return "", err
	}
	return strings.Join([]string{
		c.Library.Header + "\n",
		c.Zak.Init(),
		c.functionTables(),
		defs,
		c.voiceArea(),
		c.fxArea(),
		c.Library.Footer + "\n",
	}, "\n"), nil
}

func (c *Csd) functionTables() string {
	var b strings.Builder
	b.WriteString("\n")
	for _, ft := range c.Library.FunctionTables {
		b.WriteString(ft)
		b.WriteString("\n")
	}
	return b.String()
}

// opcodeDefinitions returns every distinct opcode definition once, sorted by
// the opcode name.
func (c *Csd) opcodeDefinitions() (string, error) {
	sources := map[string]string{}
	for _, op := range c.Opcodes {
		sources[op.Name()] = op.Source()
	}
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	defs := make([]string, len(names))
	for i, name := range names {
		src, err := c.Library.Preprocess(name, sources[name])
		if err != nil {
			return "", err
		}
		defs[i] = src
	}
	return strings.Join(defs, "\n\n") + "\n", nil
}

func (c *Csd) voiceArea() string {
	var b strings.Builder
	b.WriteString("instr 1 ; Voice area\n")
	statements := make([]string, len(c.Opcodes))
	for i, op := range c.Opcodes {
		statements[i] = op.Statement()
	}
	b.WriteString(strings.Join(statements, "\n"))
	b.WriteString("\nendin\n")
	return b.String()
}

func (c *Csd) fxArea() string {
	return "instr 2 ; FX area\nendin\n"
}

package csdgen

import (
	"bytes"
	"fmt"
	"io/fs"
	"log"
	"path"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/zappfinger/pch2csd"
	"gopkg.in/yaml.v2"
)

const (
	headerFile      = "csd_header.txt"
	footerFile      = "csd_footer.txt"
	ftPattern       = "csd_ft_*.txt"
	valueTablesFile = "value_maps.yaml"
	modulesDir      = "modules"
)

type (
	// Options are the global settings of the generated program. They are
	// available to the boilerplate texts and templates as template data,
	// e.g. {{.SampleRate}}.
	Options struct {
		SampleRate int
		KSmps      int
		Channels   int
		ZeroDBFS   float64
		Duration   float64 // length of the score, in seconds
	}

	// Library holds the resources needed for generating code: boilerplate
	// texts, value tables and module templates. Everything except the module
	// templates is loaded once, when the library is created; module templates
	// are loaded on first use and cached.
	Library struct {
		Options
		Header         string
		Footer         string
		FunctionTables []string
		ValueTables    ValueTables

		fsys      fs.FS
		templates map[int]*Template
		log       *log.Logger
	}
)

// DefaultOptions returns the options used when nothing else is specified.
func DefaultOptions() Options {
	return Options{SampleRate: 48000, KSmps: 16, Channels: 2, ZeroDBFS: 1, Duration: 3600}
}

// NewLibrary loads the resources from a file system. The file system should
// contain csd_header.txt, csd_footer.txt, value_maps.yaml, any number of
// csd_ft_*.txt files and the module templates as modules/<type>.txt.
func NewLibrary(fsys fs.FS, options Options, logger *log.Logger) (*Library, error) {
	l := &Library{Options: options, fsys: fsys, templates: map[int]*Template{}, log: logger}
	var err error
	if l.Header, err = l.loadText(headerFile); err != nil {
		return nil, err
	}
	if l.Footer, err = l.loadText(footerFile); err != nil {
		return nil, err
	}
	ftFiles, err := fs.Glob(fsys, ftPattern)
	if err != nil {
		return nil, fmt.Errorf("could not glob function table files: %v", err)
	}
	for _, f := range ftFiles {
		ft, err := l.loadText(f)
		if err != nil {
			return nil, err
		}
		l.FunctionTables = append(l.FunctionTables, ft)
	}
	data, err := fs.ReadFile(fsys, valueTablesFile)
	if err != nil {
		return nil, fmt.Errorf("could not read value tables: %v", err)
	}
	if err := yaml.Unmarshal(data, &l.ValueTables); err != nil {
		return nil, fmt.Errorf("could not parse %v: %v", valueTablesFile, err)
	}
	return l, nil
}

func (l *Library) loadText(name string) (string, error) {
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return "", fmt.Errorf("could not read %v: %v", name, err)
	}
	return l.Preprocess(name, string(data))
}

// Template returns the opcode template for the type of the module. The
// template file is read and parsed only the first time a type is requested.
func (l *Library) Template(mod pch2csd.Module) (*Template, error) {
	if t, ok := l.templates[mod.Type]; ok {
		return t, nil
	}
	name := path.Join(modulesDir, fmt.Sprintf("%d.txt", mod.Type))
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("no template for module %v: %v", mod, err)
	}
	t := ParseTemplate(mod.Type, mod.TypeName, string(data), l.log)
	l.templates[mod.Type] = t
	return t, nil
}

// Preprocess executes the code as a text/template, with sprig functions and
// the options as data, and then removes the template annotations and trailing
// whitespace.
func (l *Library) Preprocess(name string, code string) (string, error) {
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(code)
	if err != nil {
		return "", fmt.Errorf(`could not parse "%v": %v`, name, err)
	}
	var b bytes.Buffer
	if err := tmpl.Execute(&b, l.Options); err != nil {
		return "", fmt.Errorf(`could not execute "%v": %v`, name, err)
	}
	lines := strings.Split(b.String(), "\n")
	ret := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), ";@") {
			continue
		}
		ret = append(ret, strings.TrimRight(line, " \t\r"))
	}
	return strings.Trim(strings.Join(ret, "\n"), "\n"), nil
}

package csdgen

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/zappfinger/pch2csd"
)

type Compiler struct {
	Library *Library
	Log     *log.Logger
}

//go:embed resources
var resourceFS embed.FS

// New returns a new compiler using the default resources. Diagnostics are
// written to logger; nil means the standard logger.
func New(options Options, logger *log.Logger) (*Compiler, error) {
	sub, err := fs.Sub(resourceFS, "resources")
	if err != nil {
		return nil, fmt.Errorf("could not open the default resources: %v", err)
	}
	return NewFromFS(options, logger, sub)
}

// NewFromDirectory returns a new compiler reading the resources from a
// directory, laid out like the default resources.
func NewFromDirectory(options Options, logger *log.Logger, directory string) (*Compiler, error) {
	if info, err := os.Stat(directory); err != nil || !info.IsDir() {
		return nil, fmt.Errorf(`resource directory "%v" does not exist`, directory)
	}
	com, err := NewFromFS(options, logger, os.DirFS(directory))
	if err != nil {
		return nil, fmt.Errorf(`could not load resources from directory "%v": %v`, directory, err)
	}
	return com, nil
}

func NewFromFS(options Options, logger *log.Logger, fsys fs.FS) (*Compiler, error) {
	if logger == nil {
		logger = log.Default()
	}
	lib, err := NewLibrary(fsys, options, logger)
	if err != nil {
		return nil, err
	}
	return &Compiler{Library: lib, Log: logger}, nil
}

// Opcodes builds an opcode for every module of the patch, in the order of
// the modules. The opcodes are not connected yet.
func (com *Compiler) Opcodes(patch *pch2csd.Patch) ([]*Opcode, error) {
	opcodes := make([]*Opcode, 0, len(patch.Modules))
	for _, mod := range patch.Modules {
		tpl, err := com.Library.Template(mod)
		if err != nil {
			return nil, err
		}
		op, err := NewOpcode(patch, mod, tpl, com.Library.ValueTables, com.Log)
		if err != nil {
			return nil, err
		}
		opcodes = append(opcodes, op)
	}
	return opcodes, nil
}

// Patch compiles the patch into a Csound program.
func (com *Compiler) Patch(patch *pch2csd.Patch) (string, error) {
	if err := patch.Validate(); err != nil {
		return "", fmt.Errorf("invalid patch: %v", err)
	}
	opcodes, err := com.Opcodes(patch)
	if err != nil {
		return "", fmt.Errorf("could not create opcodes: %w", err)
	}
	zak := NewZakSpace()
	if err := zak.Connect(patch, opcodes); err != nil {
		return "", fmt.Errorf("could not connect the patch: %w", err)
	}
	csd := Csd{Library: com.Library, Zak: zak, Opcodes: opcodes}
	code, err := csd.Code()
	if err != nil {
		return "", fmt.Errorf("could not generate code: %w", err)
	}
	return code, nil
}

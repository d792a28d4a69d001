package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/zappfinger/pch2csd"
	"github.com/zappfinger/pch2csd/csdgen"
	"github.com/zappfinger/pch2csd/version"
)

var errorColor = color.New(color.FgRed)

func main() {
	defaults := csdgen.DefaultOptions()
	safe := flag.Bool("n", false, "Never overwrite files; if file already exists and would be overwritten, give an error.")
	list := flag.Bool("l", false, "Do not write files; just list files that would change instead.")
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	help := flag.Bool("h", false, "Show help.")
	summary := flag.Bool("p", false, "Print a summary of the modules and cables of each patch.")
	jsonOut := flag.Bool("j", false, "Output the patch as .json file instead of compiling.")
	yamlOut := flag.Bool("y", false, "Output the patch as .yml file instead of compiling.")
	resDir := flag.String("t", "", "When compiling, use the templates and resources in this directory instead of the standard ones.")
	outPath := flag.String("o", "", "Directory or filename where to write compiled code. Extension is ignored. Directory and its parents are created if needed. By default, everything is placed in the current working directory.")
	sampleRate := flag.Int("sr", defaults.SampleRate, "Sample rate of the generated program.")
	ksmps := flag.Int("ksmps", defaults.KSmps, "Number of audio samples in a control period.")
	channels := flag.Int("nchnls", defaults.Channels, "Number of output channels.")
	zeroDBFS := flag.Float64("dbfs", defaults.ZeroDBFS, "Amplitude of 0 dB full scale.")
	duration := flag.Float64("d", defaults.Duration, "Length of the score, in seconds.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash())
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	logger := log.New(os.Stderr, "pch2csd: ", 0)
	compile := !*jsonOut && !*yamlOut && !*summary
	var comp *csdgen.Compiler
	if compile {
		options := csdgen.Options{SampleRate: *sampleRate, KSmps: *ksmps, Channels: *channels, ZeroDBFS: *zeroDBFS, Duration: *duration}
		var err error
		if *resDir != "" {
			comp, err = csdgen.NewFromDirectory(options, logger, *resDir)
		} else {
			comp, err = csdgen.New(options, logger)
		}
		if err != nil {
			errorColor.Fprintf(os.Stderr, "error creating compiler: %v\n", err)
			os.Exit(1)
		}
	}
	output := func(filename string, extension string, contents []byte) error {
		if *stdout {
			fmt.Print(string(contents))
			return nil
		}
		_, name := filepath.Split(filename)
		var dir string
		if *outPath != "" {
			// check if it's an already existing directory and the user just forgot trailing slash
			if info, err := os.Stat(*outPath); err == nil && info.IsDir() {
				dir = *outPath
			} else {
				outdir, outname := filepath.Split(*outPath)
				if outdir != "" {
					dir = outdir
				}
				if outname != "" {
					name = outname
				}
			}
		}
		if dir == "" {
			var err error
			dir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
			}
		}
		name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
		f := filepath.Join(dir, name)
		original, err := os.ReadFile(f)
		if err == nil {
			if bytes.Equal(original, contents) {
				return nil // no need to update
			}
			if !*list && *safe {
				return fmt.Errorf("file %v would be overwritten by compiler", f)
			}
		}
		if *list {
			fmt.Println(f)
			return nil
		}
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %v", dir, err)
		}
		if err := os.WriteFile(f, contents, 0644); err != nil {
			return fmt.Errorf("could not write file %v: %v", f, err)
		}
		return nil
	}
	process := func(filename string) error {
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		patch, err := pch2csd.ReadPatch(inputBytes)
		if err != nil {
			return err
		}
		if *summary {
			fmt.Print(patch.Summary())
		}
		if compile {
			code, err := comp.Patch(patch)
			if err != nil {
				return fmt.Errorf("compiling patch failed: %v", err)
			}
			if err := output(filename, ".csd", []byte(code)); err != nil {
				return fmt.Errorf("error outputting .csd file: %v", err)
			}
		}
		if *jsonOut {
			jsonPatch, err := json.Marshal(patch)
			if err != nil {
				return fmt.Errorf("could not marshal the patch as json file: %v", err)
			}
			if err := output(filename, ".json", jsonPatch); err != nil {
				return fmt.Errorf("error outputting json file: %v", err)
			}
		}
		if *yamlOut {
			yamlPatch, err := yaml.Marshal(patch)
			if err != nil {
				return fmt.Errorf("could not marshal the patch as yaml file: %v", err)
			}
			if err := output(filename, ".yml", yamlPatch); err != nil {
				return fmt.Errorf("error outputting yaml file: %v", err)
			}
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			var files []string
			for _, pattern := range []string{"*.yml", "*.yaml", "*.json"} {
				matches, err := filepath.Glob(filepath.Join(param, pattern))
				if err != nil {
					errorColor.Fprintf(os.Stderr, "could not glob the path %v for %v files: %v\n", param, pattern, err)
					retval = 1
					continue
				}
				files = append(files, matches...)
			}
			for _, file := range files {
				if err := process(file); err != nil {
					errorColor.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
					retval = 1
				}
			}
		} else {
			if err := process(param); err != nil {
				errorColor.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
				retval = 1
			}
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "pch2csd compiler. Input .yml or .json patches, outputs Csound programs (.csd files).\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}

package pch2csd_test

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/zappfinger/pch2csd"
	"gopkg.in/yaml.v3"
)

const patchYaml = `name: test
modules:
  - {id: 1, type: 7, typename: OscB, location: va}
  - {id: 2, type: 4, typename: Out2, location: va}
  - {id: 1, type: 4, typename: Out2, location: fx}
cables:
  - {location: va, color: red, modulefrom: 1, jackfrom: 0, moduleto: 2, jackto: 1}
  - {location: va, color: blue, modulefrom: 1, jackfrom: 0, moduleto: 2, jackto: 0}
  - {location: fx, color: red, modulefrom: 1, jackfrom: 0, moduleto: 1, jackto: 0}
parameters:
  - {location: va, moduleid: 1, values: [64, 127, 0]}
`

func TestReadPatchYaml(t *testing.T) {
	patch, err := pch2csd.ReadPatch([]byte(patchYaml))
	if err != nil {
		t.Fatalf("ReadPatch failed: %v", err)
	}
	if patch.Name != "test" || len(patch.Modules) != 3 || len(patch.Cables) != 3 {
		t.Fatalf("unexpected patch: %+v", patch)
	}
	expected := pch2csd.Module{ID: 1, Type: 4, TypeName: "Out2", Location: pch2csd.FX}
	if patch.Modules[2] != expected {
		t.Fatalf("got %v, expected %v", patch.Modules[2], expected)
	}
	if patch.Cables[1].Color != pch2csd.Blue {
		t.Fatalf("expected a blue cable, got %v", patch.Cables[1].Color)
	}
}

func TestPatchRoundTrip(t *testing.T) {
	patch, err := pch2csd.ReadPatch([]byte(patchYaml))
	if err != nil {
		t.Fatalf("ReadPatch failed: %v", err)
	}
	jsonData, err := json.Marshal(patch)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	if !strings.Contains(string(jsonData), `"Color":"red"`) {
		t.Fatalf("colors should be marshaled by name: %s", jsonData)
	}
	fromJSON, err := pch2csd.ReadPatch(jsonData)
	if err != nil {
		t.Fatalf("ReadPatch failed for json: %v", err)
	}
	if !reflect.DeepEqual(patch, fromJSON) {
		t.Fatalf("json round trip changed the patch. got: %+v expected: %+v", fromJSON, patch)
	}
	yamlData, err := yaml.Marshal(patch)
	if err != nil {
		t.Fatalf("yaml.Marshal failed: %v", err)
	}
	fromYaml, err := pch2csd.ReadPatch(yamlData)
	if err != nil {
		t.Fatalf("ReadPatch failed for yaml: %v", err)
	}
	if !reflect.DeepEqual(patch, fromYaml) {
		t.Fatalf("yaml round trip changed the patch. got: %+v expected: %+v", fromYaml, patch)
	}
}

func TestReadPatchErrors(t *testing.T) {
	for _, data := range []string{"modules: [", "cables:\n  - {color: magenta}\n", "modules:\n  - {location: nowhere}\n"} {
		if _, err := pch2csd.ReadPatch([]byte(data)); err == nil {
			t.Fatalf("reading %q should fail", data)
		}
	}
}

func TestIncomingCables(t *testing.T) {
	patch, err := pch2csd.ReadPatch([]byte(patchYaml))
	if err != nil {
		t.Fatalf("ReadPatch failed: %v", err)
	}
	ref := pch2csd.ModuleRef{Location: pch2csd.VA, ID: 2}
	inPatchOrder := patch.IncomingCables(ref)
	if len(inPatchOrder) != 2 || inPatchOrder[0].JackTo != 1 || inPatchOrder[1].JackTo != 0 {
		t.Fatalf("unexpected incoming cables: %v", inPatchOrder)
	}
	byInlet := patch.IncomingCablesByInlet(ref)
	if len(byInlet) != 2 || byInlet[0].JackTo != 0 || byInlet[1].JackTo != 1 {
		t.Fatalf("cables should be ordered by inlet: %v", byInlet)
	}
	if cables := patch.IncomingCables(pch2csd.ModuleRef{Location: pch2csd.FX, ID: 1}); len(cables) != 1 {
		t.Fatalf("expected one cable in the FX area, got %v", cables)
	}
	if cables := patch.IncomingCables(pch2csd.ModuleRef{Location: pch2csd.VA, ID: 1}); len(cables) != 0 {
		t.Fatalf("expected no cables, got %v", cables)
	}
}

func TestModuleParams(t *testing.T) {
	patch, err := pch2csd.ReadPatch([]byte(patchYaml))
	if err != nil {
		t.Fatalf("ReadPatch failed: %v", err)
	}
	params := patch.ModuleParams(pch2csd.ModuleRef{Location: pch2csd.VA, ID: 1})
	if !reflect.DeepEqual(params.Values, []int{64, 127, 0}) {
		t.Fatalf("unexpected parameters: %v", params.Values)
	}
	if params := patch.ModuleParams(pch2csd.ModuleRef{Location: pch2csd.FX, ID: 1}); len(params.Values) != 0 {
		t.Fatalf("module without parameters should have none, got %v", params.Values)
	}
	if _, ok := patch.Module(pch2csd.ModuleRef{Location: pch2csd.FX, ID: 2}); ok {
		t.Fatalf("module FX:2 should not exist")
	}
}

func TestValidate(t *testing.T) {
	patch, err := pch2csd.ReadPatch([]byte(patchYaml))
	if err != nil {
		t.Fatalf("ReadPatch failed: %v", err)
	}
	if err := patch.Validate(); err != nil {
		t.Fatalf("patch should be valid: %v", err)
	}
	broken := *patch
	broken.Cables = append([]pch2csd.Cable{{Location: pch2csd.FX, ModuleFrom: 1, ModuleTo: 5}}, patch.Cables...)
	if err := broken.Validate(); err == nil {
		t.Fatalf("cable to a non-existing module should fail validation")
	}
	broken = *patch
	broken.Modules = append(broken.Modules[:3:3], pch2csd.Module{ID: 2, Location: pch2csd.VA})
	if err := broken.Validate(); err == nil {
		t.Fatalf("duplicate module should fail validation")
	}
}

func TestCableRates(t *testing.T) {
	cases := []struct {
		color pch2csd.CableColor
		rate  pch2csd.Rate
		ok    bool
	}{
		{pch2csd.Red, pch2csd.AudioRate, true},
		{pch2csd.Orange, pch2csd.AudioRate, true},
		{pch2csd.Blue, pch2csd.ControlRate, true},
		{pch2csd.Yellow, pch2csd.ControlRate, true},
		{pch2csd.Green, 0, false},
		{pch2csd.Purple, 0, false},
		{pch2csd.White, 0, false},
	}
	for _, c := range cases {
		rate, err := c.color.Rate()
		if (err == nil) != c.ok || rate != c.rate {
			t.Fatalf("%v: expected rate %q (ok %v), got %q (%v)", c.color, c.rate, c.ok, rate, err)
		}
	}
}

func TestSummary(t *testing.T) {
	patch, err := pch2csd.ReadPatch([]byte(patchYaml))
	if err != nil {
		t.Fatalf("ReadPatch failed: %v", err)
	}
	s := patch.Summary()
	for _, expected := range []string{"Patch test: 3 modules, 3 cables", "OscB(1, type 7, va), 3 parameters", "cable va:1:0 -> va:2:1 (red, a)"} {
		if !strings.Contains(s, expected) {
			t.Fatalf("summary should contain %q, got:\n%v", expected, s)
		}
	}
}

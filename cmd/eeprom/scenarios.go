package main

import (
	"bytes"
	"fmt"

	"github.com/chanceme/emueeprom/engine"
	"github.com/chanceme/emueeprom/flash"
)

// ScenarioResult records one seed scenario's outcome.
type ScenarioResult struct {
	Name string
	Err  error
}

// RunScenarios runs the seed scenario suite (S1-S6) against a fresh
// scratch engine backed by in-memory flash, leaving the caller's live
// engine untouched.
func RunScenarios() []ScenarioResult {
	scenarios := []struct {
		name string
		run  func(*engine.Engine) error
	}{
		{"S1 single-byte write/read", scenarioSingleByte},
		{"S2 multi-page payload", scenarioMultiPage},
		{"S3 block transfer preserves data", scenarioBlockTransfer},
		{"S4 erase removes data", scenarioErase},
		{"S5 overwrite", scenarioOverwrite},
		{"S6 partial coverage", scenarioPartialCoverage},
	}

	results := make([]ScenarioResult, 0, len(scenarios))
	for _, sc := range scenarios {
		dev, err := flash.NewMemory(flash.DefaultGeometry)
		if err != nil {
			results = append(results, ScenarioResult{sc.name, err})
			continue
		}
		eng := engine.New(dev)
		if err := eng.Init(); err != nil {
			results = append(results, ScenarioResult{sc.name, err})
			continue
		}
		results = append(results, ScenarioResult{sc.name, sc.run(eng)})
	}
	return results
}

func scenarioSingleByte(e *engine.Engine) error {
	n, err := e.Write(1, []byte{0x01})
	if err != nil {
		return err
	}
	if n < 1 {
		return fmt.Errorf("write returned %d, want >= 1", n)
	}
	out := make([]byte, 1)
	n, err = e.Read(1, out)
	if err != nil {
		return err
	}
	if n != 1 || out[0] != 0x01 {
		return fmt.Errorf("read returned (%d, %v), want (1, [0x01])", n, out)
	}
	return nil
}

func scenarioMultiPage(e *engine.Engine) error {
	payload := bytes.Repeat([]byte{0x01}, 32)
	if _, err := e.Write(50, payload); err != nil {
		return err
	}
	out := make([]byte, 32)
	n, err := e.Read(50, out)
	if err != nil {
		return err
	}
	if n != 32 || !bytes.Equal(out, payload) {
		return fmt.Errorf("read returned (%d, %v), want (32, %v)", n, out, payload)
	}
	return nil
}

func scenarioBlockTransfer(e *engine.Engine) error {
	initial := e.Info().CurrBlock
	addrs := []uint16{0, 32, 64, 96}
	counter := 0
	for i := 0; e.Info().CurrBlock == initial; i++ {
		payload := make([]byte, 32)
		for j := range payload {
			payload[j] = byte(counter % 128)
			counter++
		}
		if _, err := e.Write(addrs[i%len(addrs)], payload); err != nil {
			return err
		}
	}
	for a := 0; a < 128; a++ {
		out := make([]byte, 1)
		n, err := e.Read(uint16(a), out)
		if err != nil {
			return err
		}
		if n != 1 || out[0] != byte(a) {
			return fmt.Errorf("address %d: read returned (%d, %v), want (1, [%d])", a, n, out, a)
		}
	}
	return nil
}

func scenarioErase(e *engine.Engine) error {
	if err := scenarioMultiPage(e); err != nil {
		return err
	}
	if _, err := e.Erase(50, 1); err != nil {
		return err
	}
	if _, err := e.Flush(); err != nil {
		return err
	}
	out := make([]byte, 1)
	n, err := e.Read(50, out)
	if err != nil {
		return err
	}
	if n != 0 {
		return fmt.Errorf("read after erase returned %d, want 0", n)
	}
	return nil
}

func scenarioOverwrite(e *engine.Engine) error {
	if _, err := e.Write(10, []byte{0xAA}); err != nil {
		return err
	}
	if _, err := e.Write(10, []byte{0xBB}); err != nil {
		return err
	}
	if _, err := e.Flush(); err != nil {
		return err
	}
	out := make([]byte, 1)
	n, err := e.Read(10, out)
	if err != nil {
		return err
	}
	if n != 1 || out[0] != 0xBB {
		return fmt.Errorf("read returned (%d, %v), want (1, [0xBB])", n, out)
	}
	return nil
}

func scenarioPartialCoverage(e *engine.Engine) error {
	if _, err := e.Write(5, []byte{0xAA, 0xAA, 0xAA}); err != nil {
		return err
	}
	out := bytes.Repeat([]byte{0x42}, 7)
	n, err := e.Read(3, out)
	if err != nil {
		return err
	}
	want := []byte{0x42, 0x42, 0xAA, 0xAA, 0xAA, 0x42, 0x42}
	if n != 3 || !bytes.Equal(out, want) {
		return fmt.Errorf("read returned (%d, %v), want (3, %v)", n, out, want)
	}
	return nil
}

func formatScenarioResults(results []ScenarioResult) string {
	var b bytes.Buffer
	pass := 0
	for _, r := range results {
		if r.Err == nil {
			pass++
			fmt.Fprintf(&b, "  ok  %s\n", r.Name)
		} else {
			fmt.Fprintf(&b, "FAIL  %s: %v\n", r.Name, r.Err)
		}
	}
	fmt.Fprintf(&b, "%d/%d scenarios passed", pass, len(results))
	return b.String()
}

// Command eeprom is a REPL over the emulation engine, grounded on
// original_source/src/main.c's scanf-driven command loop and the teacher's
// cpu.Debug bubbletea TUI.
package main

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/chanceme/emueeprom/engine"
)

// Session wraps a live engine with the command dispatch shared by the plain
// REPL (repl.go) and the TUI (tui.go). main.c's commands operated on a
// single C int (4 bytes); Session follows that precedent so the CLI stays a
// thin wrapper over Write/Read/Erase rather than a hex-byte editor.
type Session struct {
	eng *engine.Engine
}

func NewSession(eng *engine.Engine) *Session {
	return &Session{eng: eng}
}

// Dispatch parses and runs one command line, returning its output text.
func (s *Session) Dispatch(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}

	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "help", "?":
		return helpText

	case "write":
		return s.cmdWrite(args)
	case "read":
		return s.cmdRead(args)
	case "erase":
		return s.cmdErase(args)
	case "flush":
		return s.cmdFlush()
	case "destroy":
		return s.cmdDestroy(args)
	case "info":
		return s.cmdInfo()
	case "dump":
		return spew.Sdump(s.eng.Info())
	case "test":
		return formatScenarioResults(RunScenarios())

	case "exit", "quit":
		return quitSentinel

	default:
		return fmt.Sprintf("unknown command %q. type 'help' for a list.", cmd)
	}
}

const helpText = `'write'   - write a value to a virtual address
'read'    - read the value stored at a virtual address
'erase'   - erase the value at a virtual address
'flush'   - write the current buffer to flash
'destroy' - erase the emulated EEPROM from flash
'info'    - show current block/page/buffer state
'dump'    - dump the full RAM-state snapshot
'test'    - run the seed scenario suite against a scratch engine
'exit'    - leave the shell`

const quitSentinel = "\x00quit"

func (s *Session) cmdWrite(args []string) string {
	if len(args) != 2 {
		return "usage: write <vaddr> <value>"
	}
	vAddr, err := parseVAddr(args[0])
	if err != nil {
		return err.Error()
	}
	value, err := strconv.ParseInt(args[1], 10, 32)
	if err != nil {
		return fmt.Sprintf("bad value %q: %v", args[1], err)
	}

	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(int32(value)))

	n, err := s.eng.Write(vAddr, buf)
	if err != nil {
		return fmt.Sprintf("error writing: %v", err)
	}
	return fmt.Sprintf("wrote %d to %d (%d bytes accepted)", value, vAddr, n)
}

func (s *Session) cmdRead(args []string) string {
	if len(args) != 1 {
		return "usage: read <vaddr>"
	}
	vAddr, err := parseVAddr(args[0])
	if err != nil {
		return err.Error()
	}

	buf := make([]byte, 4)
	n, err := s.eng.Read(vAddr, buf)
	if err != nil {
		return fmt.Sprintf("error reading: %v", err)
	}
	if n == 0 {
		return "not found."
	}
	value := int32(binary.LittleEndian.Uint32(buf))
	if n < len(buf) {
		return fmt.Sprintf("partial read (%d/%d bytes): %d", n, len(buf), value)
	}
	return fmt.Sprintf("value: %d", value)
}

func (s *Session) cmdErase(args []string) string {
	if len(args) != 1 {
		return "usage: erase <vaddr>"
	}
	vAddr, err := parseVAddr(args[0])
	if err != nil {
		return err.Error()
	}
	if _, err := s.eng.Erase(vAddr, 4); err != nil {
		return fmt.Sprintf("error erasing: %v", err)
	}
	return fmt.Sprintf("%d erased.", vAddr)
}

func (s *Session) cmdFlush() string {
	n, err := s.eng.Flush()
	if err != nil {
		return fmt.Sprintf("error flushing: %v", err)
	}
	if n == 0 {
		return "nothing to flush."
	}
	return "flushed."
}

func (s *Session) cmdDestroy(args []string) string {
	if len(args) != 1 || (args[0] != "y" && args[0] != "Y") {
		return "are you sure? run 'destroy y' to confirm."
	}
	if err := s.eng.Destroy(); err != nil {
		return fmt.Sprintf("error destroying: %v", err)
	}
	if err := s.eng.Init(); err != nil {
		return fmt.Sprintf("destroyed, but re-init failed: %v", err)
	}
	return "destroyed and re-initialized."
}

func (s *Session) cmdInfo() string {
	info := s.eng.Info()
	return fmt.Sprintf("block=%d page=%d buffer_pos=%d", info.CurrBlock, info.CurrPage, info.BufferPos)
}

func parseVAddr(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("bad virtual address %q: %w", s, err)
	}
	return uint16(v), nil
}

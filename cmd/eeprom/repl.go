package main

import (
	"bufio"
	"fmt"
	"io"
)

// RunPlain runs the scriptable, non-interactive REPL: one command per line
// of in, each command's reply (one or more lines) printed after it. Grounded directly on
// original_source/src/main.c's scanf loop.
func RunPlain(s *Session, in io.Reader, out io.Writer) {
	fmt.Fprintln(out, "Limited functionality.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return
		}
		reply := s.Dispatch(scanner.Text())
		if reply == quitSentinel {
			return
		}
		if reply != "" {
			fmt.Fprintln(out, reply)
		}
	}
}

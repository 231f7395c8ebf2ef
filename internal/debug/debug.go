// Package debug renders compiled chunks for human inspection. Nothing in
// here runs unless the -debug flag or the disassemble config option is set.
package debug

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"ochre/internal/object"
)

// Banner prints a one-line trace header with a fresh correlation id, so
// interleaved debug traces from multiple invocations can be told apart
// when piped through another tool.
func Banner(w io.Writer, label string) {
	fmt.Fprintf(w, "-- trace %s (%s) --\n", uuid.NewString(), label)
}

// DumpFunction disassembles fn's chunk and, recursively, every function
// found in its constant pool, each followed by a size trailer.
func DumpFunction(w io.Writer, fn *object.FunctionObj) {
	name := "<script>"
	if fn.Name != nil {
		name = fn.Name.Chars
	}
	fn.Chunk.Disassemble(w, name)
	fmt.Fprintf(w, "-- %s of code, %s constants --\n",
		humanize.Bytes(uint64(len(fn.Chunk.Code))),
		humanize.Comma(int64(len(fn.Chunk.Constants))))

	for _, c := range fn.Chunk.Constants {
		if !c.IsObj() {
			continue
		}
		if nested, ok := c.AsObj().(*object.FunctionObj); ok {
			DumpFunction(w, nested)
		}
	}
}

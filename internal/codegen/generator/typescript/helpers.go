package typescript

import (
	"strings"

	"github.com/Alia5/interopgen/internal/codegen/common"
)

const indentUnit = "    "

func writeFileHeaderTS() string { return common.FileHeader("//", "TypeScript") }

// block accumulates indented lines.
type block struct {
	b     strings.Builder
	depth int
}

func (w *block) line(s string) {
	for i := 0; i < w.depth; i++ {
		w.b.WriteString(indentUnit)
	}
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

func (w *block) open(s string) {
	w.line(s)
	w.depth++
}

func (w *block) close(s string) {
	w.depth--
	w.line(s)
}

func (w *block) String() string { return w.b.String() }

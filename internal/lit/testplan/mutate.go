// Package testplan mutates and executes lit test plans.
package testplan

import (
	"fmt"

	"github.com/signalnine/benchlit/internal/lit"
)

// LineMutator rewrites one script line.
type LineMutator func(c *lit.Context, line string) (string, error)

// MutateScript applies fn to every line of script. When the script has more
// than one line, c.TmpBase is suffixed with "-<index>" while line <index> is
// mutated, so each line gets its own output files; TmpBase is restored
// afterwards.
func MutateScript(c *lit.Context, script []string, fn LineMutator) ([]string, error) {
	base := c.TmpBase
	defer func() { c.TmpBase = base }()

	out := make([]string, 0, len(script))
	for i, line := range script {
		c.TmpBase = base
		if len(script) > 1 {
			c.TmpBase = fmt.Sprintf("%s-%d", base, i)
		}
		mutated, err := fn(c, line)
		if err != nil {
			return nil, err
		}
		out = append(out, mutated)
	}
	return out, nil
}

package result

import (
	"time"

	"github.com/signalnine/benchlit/internal/lit"
)

// TestMeta is stored per test as result.json.
type TestMeta struct {
	Test    string   `json:"test"`
	Modules []string `json:"modules,omitempty"`
	Image   string   `json:"image,omitempty"`
	// Error explains an UNRESOLVED result.
	Error  string      `json:"error,omitempty"`
	Result *lit.Result `json:"result"`
}

// RunMeta is stored per run as run.json.
type RunMeta struct {
	StartedAt time.Time `json:"started_at"`
	Config    string    `json:"config"`
	Revision  string    `json:"revision,omitempty"`
	Tests     []string  `json:"tests"`
}

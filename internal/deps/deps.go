package deps

import (
	"context"
	"fmt"
	"os/exec"
	"slices"
	"strings"
)

// Requirement is an external executable geotag shells out to.
type Requirement struct {
	Name    string
	Command string
	// Why completes "geotag needs it to ...".
	Why      string
	Optional bool
}

// Status is the outcome of checking one Requirement.
type Status struct {
	Requirement
	Available bool
	// Path is the resolved executable; set even when the version check fails.
	Path    string
	Version string
	// Detail explains why the binary is unavailable.
	Detail string
}

// VersionFunc asks a resolved executable for its version.
type VersionFunc func(ctx context.Context, path string) (string, error)

// Check resolves the command on PATH and, when version is non-nil, asks
// it for its version. A binary that cannot report its version counts as unavailable.
func (r Requirement) Check(ctx context.Context, version VersionFunc) Status {
	r.Command = strings.TrimSpace(r.Command)
	st := Status{Requirement: r}
	if r.Command == "" {
		st.Detail = "command not configured"
		return st
	}
	path, err := exec.LookPath(r.Command)
	if err != nil {
		st.Detail = fmt.Sprintf("binary %q not found", r.Command)
		return st
	}
	st.Path = path
	if version != nil {
		if st.Version, err = version(ctx, path); err != nil {
			st.Detail = fmt.Sprintf("version check failed: %v", err)
			return st
		}
	}
	st.Available = true
	return st
}

// CheckBinaries checks every requirement in order.
func CheckBinaries(ctx context.Context, reqs []Requirement, version VersionFunc) []Status {
	out := make([]Status, len(reqs))
	for i, r := range reqs {
		out[i] = r.Check(ctx, version)
	}
	return out
}

// Missing returns the required dependencies that are unavailable.
func Missing(statuses []Status) []Status {
	return slices.DeleteFunc(slices.Clone(statuses), func(s Status) bool {
		return s.Available || s.Optional
	})
}

// Package prerequisites checks that the client tools deployctl shells out
// to are installed.
package prerequisites

import (
	"fmt"
	"os/exec"
	"strings"
)

// Tool is a binary deployctl may run on the operator's machine.
type Tool struct {
	Name        string
	Required    bool
	Description string
	// VersionArgs, when set, are passed to the tool to print its version.
	VersionArgs []string
}

// DefaultTools returns the tools every deployment needs.
func DefaultTools() []Tool {
	return []Tool{
		{
			Name:        "sh",
			Required:    true,
			Description: "Runs operator commands",
		},
		{
			Name:        "ssh",
			Required:    true,
			Description: "Reaches deployment nodes",
			VersionArgs: []string{"-V"},
		},
	}
}

// OptionalTools returns tools that enable extra workflows.
func OptionalTools() []Tool {
	return []Tool{
		{
			Name:        "scp",
			Required:    false,
			Description: "Copies files to deployment nodes",
		},
		{
			Name:        "rsync",
			Required:    false,
			Description: "Synchronises directories with deployment nodes",
			VersionArgs: []string{"--version"},
		},
	}
}

// CheckResult is the outcome for a single tool.
type CheckResult struct {
	Tool    Tool
	Found   bool
	Path    string
	Version string
}

// CheckResults aggregates the outcome for several tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors reports whether a required tool is missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error lists the missing required tools, or returns nil.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, tool.Name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// LookPath is exec.LookPath, replaceable in tests.
var LookPath = exec.LookPath

// Check looks every tool up in PATH.
func Check(tools []Tool) *CheckResults {
	results := &CheckResults{}
	for _, tool := range tools {
		result := CheckResult{Tool: tool}
		path, err := LookPath(tool.Name)
		if err == nil {
			result.Found = true
			result.Path = path
			result.Version = toolVersion(path, tool.VersionArgs)
		} else {
			results.Missing = append(results.Missing, tool)
		}
		results.Results = append(results.Results, result)
	}
	return results
}

// CheckAll checks the default and optional tools.
func CheckAll() *CheckResults {
	return Check(append(DefaultTools(), OptionalTools()...))
}

// toolVersion returns the first output line of the version command, or ""
// when the tool has none or it fails.
func toolVersion(path string, args []string) string {
	if len(args) == 0 {
		return ""
	}
	// #nosec G204 -- path and args come from the fixed tool list
	out, err := exec.Command(path, args...).CombinedOutput()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line)
}

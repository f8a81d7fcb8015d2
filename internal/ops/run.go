package ops

import (
	"bytes"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Sv443/WHDL/internal/api"
	"github.com/Sv443/WHDL/internal/logger"
)

var runLog = logger.New("run")

// scriptExts is the fixed extension allow-list for Run. It applies in
// addition to the policy's file patterns; both gates must pass.
var scriptExts = map[string]bool{
	".bat": true,
	".cmd": true,
	".sh":  true,
}

// RunResult carries the captured output of an executed script.
type RunResult struct {
	Stdout string
	Stderr string
}

// Run executes the script at rawPath with no arguments, capturing stdout
// and stderr in full. Output buffering is unbounded; acceptable for a
// trusted-operator tool, not for hostile scripts.
func (o *Ops) Run(rawPath, clientIP string) (*RunResult, error) {
	path, err := o.policy.Resolve(rawPath)
	if err != nil {
		return nil, fromPolicy(err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !scriptExts[ext] {
		return nil, badRequest("Wrong file type")
	}

	cmd := scriptCommand(path, ext)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, internal(err)
	}

	if o.opts.LogRequests {
		runLog.Info("%s ran %s", api.MaskIP(clientIP), path)
	}
	return &RunResult{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

// scriptCommand picks the interpreter for the script's extension.
func scriptCommand(path, ext string) *exec.Cmd {
	switch {
	case ext == ".sh":
		return exec.Command("sh", path)
	case runtime.GOOS == "windows":
		return exec.Command("cmd", "/C", path)
	default:
		return exec.Command(path)
	}
}

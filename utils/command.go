package utils

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Cmd is a gofrog CmdConfig bound to a context, so that a caller-supplied timeout kills the external process.
type Cmd struct {
	Ctx       context.Context
	ExecPath  string
	Command   []string
	Dir       string
	Env       map[string]string
	Stdin     string
	StrWriter io.WriteCloser
	ErrWriter io.WriteCloser
}

func NewCmd(ctx context.Context, executable string, cmdArgs []string) (*Cmd, error) {
	execPath, err := exec.LookPath(executable)
	if err != nil {
		return nil, err
	}
	return &Cmd{Ctx: ctx, ExecPath: execPath, Command: cmdArgs}, nil
}

func (config *Cmd) GetCmd() (cmd *exec.Cmd) {
	ctx := config.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	cmd = exec.CommandContext(ctx, config.ExecPath, config.Command...)
	cmd.Dir = config.Dir
	if len(config.Env) > 0 {
		cmd.Env = os.Environ()
		for key, value := range config.Env {
			cmd.Env = append(cmd.Env, key+"="+value)
		}
	}
	if config.Stdin != "" {
		cmd.Stdin = strings.NewReader(config.Stdin)
	}
	return
}

// The environment is set on the exec.Cmd itself rather than on the process.
func (config *Cmd) GetEnv() map[string]string {
	return map[string]string{}
}

func (config *Cmd) GetStdWriter() io.WriteCloser {
	return config.StrWriter
}

func (config *Cmd) GetErrWriter() io.WriteCloser {
	return config.ErrWriter
}

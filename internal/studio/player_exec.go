package studio

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/lukasbauer/voicelab/internal/tts"
)

var errEmptyCommand = errors.New("empty player command")

// ExecPlayer plays a source by running an external command with the source
// appended as the last argument. Pause stops the process, so the next Play
// starts the sample from the beginning.
type ExecPlayer struct {
	command []string
	source  string

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
}

func NewExecPlayer(command []string, source string) *ExecPlayer {
	return &ExecPlayer{command: command, source: source}
}

// ExecPlayerFactory returns a PlayerFactory that plays preview URLs with command.
func ExecPlayerFactory(command []string) PlayerFactory {
	return func(v tts.Voice) (Player, error) {
		if len(command) == 0 {
			return nil, errEmptyCommand
		}
		if v.PreviewURL == "" {
			return nil, ErrNoPreview
		}
		return NewExecPlayer(command, v.PreviewURL), nil
	}
}

func (p *ExecPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd != nil {
		return nil
	}
	if len(p.command) == 0 {
		return errEmptyCommand
	}

	args := append(append([]string{}, p.command[1:]...), p.source)
	cmd := exec.Command(p.command[0], args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.command[0], err)
	}
	done := make(chan struct{})
	p.cmd = cmd
	p.done = done

	go func() {
		_ = cmd.Wait()
		p.mu.Lock()
		if p.cmd == cmd {
			p.cmd = nil
		}
		p.mu.Unlock()
		close(done)
	}()
	return nil
}

func (p *ExecPlayer) Pause() error {
	p.mu.Lock()
	cmd := p.cmd
	p.cmd = nil
	p.mu.Unlock()
	if cmd == nil {
		return nil
	}
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

func (p *ExecPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cmd != nil
}

// Done is closed when the most recently started playback exits.
func (p *ExecPlayer) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return p.done
}

func (p *ExecPlayer) Close() error {
	return p.Pause()
}

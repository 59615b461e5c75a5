package treelog

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/wayneeseguin/treelog/pkg/types"
)

// Pipe reads r line by line and logs each line at the given level, with an
// optional "prefix: " on every line. It returns the reader's terminal error,
// if any.
func (l *Logger) Pipe(level types.Level, prefix string, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if prefix != "" {
			line = fmt.Sprintf("%s: %s", prefix, line)
		}
		l.log(level, "", nil, "%s", []interface{}{line})
	}
	return scanner.Err()
}

// PipeCmd runs cmd, streaming its stdout into the logger at outLevel and
// its stderr at errLevel, and returns the command's exit error. The
// emitting goroutine's context state does not follow the pipe goroutines;
// use prefix to label the output instead.
func (l *Logger) PipeCmd(cmd *exec.Cmd, outLevel, errLevel types.Level, prefix string) error {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("opening stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("opening stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting command: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = l.Pipe(outLevel, prefix, stdout)
	}()
	go func() {
		defer wg.Done()
		_ = l.Pipe(errLevel, prefix, stderr)
	}()
	wg.Wait()

	return cmd.Wait()
}

package utils

import (
	"errors"
	"io"
	"runtime"
	"sync"
)

var ErrShortWrite = errors.New("short write")

type asyncMultiWriter struct {
	writers []io.Writer
}

// AsyncMultiWriter creates a writer that duplicates its writes to all the
// provided writers asynchronous
func AsyncMultiWriter(writers ...io.Writer) io.Writer {
	w := make([]io.Writer, len(writers))
	copy(w, writers)
	return &asyncMultiWriter{w}
}

// Writes data asynchronously to each writer and waits for all of them to complete.
// In case of an error, the writing will not complete.
func (t *asyncMultiWriter) Write(p []byte) (int, error) {
	var wg sync.WaitGroup
	wg.Add(len(t.writers))
	// Each writer reports at most one error, so the buffer never blocks a writer goroutine.
	errChannel := make(chan error, len(t.writers))
	for _, w := range t.writers {
		go writeData(p, w, &wg, errChannel)
	}
	wg.Wait()
	close(errChannel)
	for err := range errChannel {
		if err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func writeData(p []byte, w io.Writer, wg *sync.WaitGroup, errChan chan error) {
	defer wg.Done()
	n, err := w.Write(p)
	if err != nil {
		errChan <- err
		return
	}
	if n != len(p) {
		errChan <- ErrShortWrite
	}
}

func IsWindows() bool {
	return runtime.GOOS == "windows"
}

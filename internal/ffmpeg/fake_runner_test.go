package ffmpeg

import (
	"context"
	"os"
	"sync"
)

type call struct {
	name string
	args []string
}

// fakeRunner records invocations and delegates the outcome to fn. When fn
// is nil every command succeeds and writes its last argument as a file.
type fakeRunner struct {
	mu    sync.Mutex
	calls []call
	fn    func(ctx context.Context, name string, args []string) (Result, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{name: name, args: append([]string(nil), args...)})
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(ctx, name, args)
	}
	return writeOutput(args)
}

func (f *fakeRunner) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func writeOutput(args []string) (Result, error) {
	if len(args) == 0 {
		return Result{}, nil
	}
	out := args[len(args)-1]
	if out == "-" {
		return Result{}, nil
	}
	return Result{}, os.WriteFile(out, []byte("media"), 0o644)
}

func argValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func touch(t interface {
	Helper()
	Fatalf(string, ...any)
}, path string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

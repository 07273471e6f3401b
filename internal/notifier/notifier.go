package notifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// Notifier publishes human-readable status text.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// WriterNotifier prints status text to a writer, stdout by default.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewStdoutNotifier() *WriterNotifier { return &WriterNotifier{w: os.Stdout} }

func NewWriterNotifier(w io.Writer) *WriterNotifier { return &WriterNotifier{w: w} }

func (n *WriterNotifier) Notify(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := fmt.Fprintln(n.w, text)
	return err
}

// Multi fans text out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, text string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package safe_close

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSafeClose_WaitClosed(t *testing.T) {
	sc := NewSafeClose()

	var order []string
	sc.AttachCloser(func(ctx context.Context) error {
		order = append(order, "first")
		return nil
	})
	sc.AttachCloser(func(ctx context.Context) error {
		order = append(order, "second")
		return nil
	})

	stopped := make(chan struct{})
	sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
		close(stopped)
	})

	cause := errors.New("signal")
	sc.SendCloseSignal(cause)
	sc.SendCloseSignal(errors.New("ignored"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.NoError(t, sc.WaitClosed(ctx))
	<-stopped
	assert.Equal(t, []string{"second", "first"}, order)
	assert.Equal(t, cause, sc.Err())
}

func TestSafeClose_Timeout(t *testing.T) {
	sc := NewSafeClose()
	sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		// never calls done
	})
	sc.SendCloseSignal(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, sc.WaitClosed(ctx), context.DeadlineExceeded)
}

package platform

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRuntimeSource_Subscribe(t *testing.T) {
	t.Run("accepts first subscriber", func(t *testing.T) {
		src := NewRuntimeSource()
		err := src.Subscribe(func(err error, origin Origin) {})
		assert.NoError(t, err)
	})

	t.Run("rejects second subscriber", func(t *testing.T) {
		src := NewRuntimeSource()
		assert.NoError(t, src.Subscribe(func(err error, origin Origin) {}))

		err := src.Subscribe(func(err error, origin Origin) {})
		assert.ErrorIs(t, err, ErrAlreadySubscribed)
	})
}

func TestRuntimeSource_Go(t *testing.T) {
	t.Run("converts panic to failure report", func(t *testing.T) {
		src := NewRuntimeSource()
		received := make(chan error, 1)
		origins := make(chan Origin, 1)

		src.Subscribe(func(err error, origin Origin) {
			received <- err
			origins <- origin
		})

		src.Go(func() error {
			panic("marker layer exploded")
		})

		select {
		case err := <-received:
			assert.Contains(t, err.Error(), "marker layer exploded")
			assert.Equal(t, OriginPanic, <-origins)
		case <-time.After(time.Second):
			t.Fatal("no failure delivered")
		}
	})

	t.Run("forwards returned errors as async failures", func(t *testing.T) {
		src := NewRuntimeSource()
		received := make(chan error, 1)
		origins := make(chan Origin, 1)

		src.Subscribe(func(err error, origin Origin) {
			received <- err
			origins <- origin
		})

		boom := errors.New("background refresh failed")
		src.Go(func() error {
			return boom
		})

		select {
		case err := <-received:
			assert.Equal(t, boom, err)
			assert.Equal(t, OriginAsync, <-origins)
		case <-time.After(time.Second):
			t.Fatal("no failure delivered")
		}
	})

	t.Run("successful work delivers nothing", func(t *testing.T) {
		src := NewRuntimeSource()
		received := make(chan error, 1)

		src.Subscribe(func(err error, origin Origin) {
			received <- err
		})

		done := make(chan struct{})
		src.Go(func() error {
			close(done)
			return nil
		})

		<-done
		select {
		case err := <-received:
			t.Fatalf("unexpected failure delivered: %v", err)
		case <-time.After(50 * time.Millisecond):
		}
	})
}

func TestRuntimeSource_Report(t *testing.T) {
	t.Run("delivers to subscriber", func(t *testing.T) {
		src := NewRuntimeSource()
		received := make(chan error, 1)

		src.Subscribe(func(err error, origin Origin) {
			assert.Equal(t, OriginAsync, origin)
			received <- err
		})

		boom := errors.New("tile prefetch failed")
		src.Report(boom)

		assert.Equal(t, boom, <-received)
	})

	t.Run("ignores nil errors", func(t *testing.T) {
		src := NewRuntimeSource()
		called := false
		src.Subscribe(func(err error, origin Origin) {
			called = true
		})

		src.Report(nil)
		assert.False(t, called)
	})

	t.Run("does not panic without subscriber", func(t *testing.T) {
		src := NewRuntimeSource()
		assert.NotPanics(t, func() {
			src.Report(errors.New("orphan failure"))
		})
	})
}

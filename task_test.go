package async_test

import (
	"errors"
	"testing"

	async "github.com/b97tsk/asynchandle"
)

func TestSpawn(t *testing.T) {
	h := async.Spawn(func() (int, error) {
		return 6 * 7, nil
	})
	if v, err := h.Await(); v != 42 || err != nil {
		t.FailNow()
	}
}

func TestTaskErrorPropagation(t *testing.T) {
	t.Run("ReturnedError", func(t *testing.T) {
		myErr := errors.New("boom")
		h := async.Spawn(func() (int, error) {
			return 0, myErr
		})
		if _, err := h.Await(); !errors.Is(err, myErr) {
			t.FailNow()
		}
	})
	t.Run("Panic", func(t *testing.T) {
		h := async.Spawn(func() (int, error) {
			panic("kaboom")
		})
		_, err := h.Await()
		if err == nil {
			t.Fatal("panic did not surface as an error")
		}
	})
	t.Run("ErrorViaCallback", func(t *testing.T) {
		myErr := errors.New("boom")
		done := make(chan async.Unit)
		h := async.Spawn(func() (int, error) {
			return 0, myErr
		})
		h.AttachCallback(func(h *async.Handle[int]) {
			if _, err := h.TryValue(); !errors.Is(err, myErr) {
				t.Error("consumer did not observe the task's error:", err)
			}
			close(done)
		}).Resume()
		<-done
	})
}

func TestDetachedTaskHook(t *testing.T) {
	myErr := errors.New("boom")
	hooked := make(chan error, 1)
	async.SetErrorHook(func(err error) { hooked <- err })
	defer async.SetErrorHook(nil)

	h := async.Spawn(func() (int, error) {
		return 0, myErr
	})
	h.Detach()

	if err := <-hooked; !errors.Is(err, myErr) {
		t.Fatal("hook received the wrong error:", err)
	}
	select {
	case err := <-hooked:
		t.Fatal("hook invoked more than once:", err)
	default:
	}
}

func TestDetachedTaskSuccessSkipsHook(t *testing.T) {
	hooked := make(chan error, 1)
	async.SetErrorHook(func(err error) { hooked <- err })
	defer async.SetErrorHook(nil)

	ran := make(chan async.Unit)
	h := async.NewTaskHandle(async.NewTask(func() (int, error) {
		defer close(ran)
		return 1, nil
	}))
	h.Detach()
	<-ran

	select {
	case err := <-hooked:
		t.Fatal("hook invoked for a successful detached task:", err)
	default:
	}
}

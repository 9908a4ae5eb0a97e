package async_test

import (
	"errors"
	"testing"

	async "github.com/b97tsk/asynchandle"
)

func TestHandleReady(t *testing.T) {
	t.Run("Value", func(t *testing.T) {
		h := async.NewValue(42)
		if !h.IsReady() {
			t.FailNow()
		}
		if v, err := h.TryValue(); v != 42 || err != nil {
			t.FailNow()
		}
	})
	t.Run("Error", func(t *testing.T) {
		myErr := errors.New("boom")
		h := async.NewError[int](myErr)
		if _, err := h.TryValue(); !errors.Is(err, myErr) {
			t.FailNow()
		}
	})
	t.Run("Empty", func(t *testing.T) {
		h := async.NewEmpty[int]()
		if _, err := h.TryValue(); !errors.Is(err, async.ErrCanceled) {
			t.FailNow()
		}
	})
	t.Run("NotReady", func(t *testing.T) {
		h := async.NewFunc(func(rc async.ResultChannel[int]) *async.PreparedTask {
			return nil
		})
		if h.IsReady() {
			t.FailNow()
		}
		if _, err := h.TryValue(); !errors.Is(err, async.ErrInvalidState) {
			t.FailNow()
		}
	})
}

func TestHandleProducer(t *testing.T) {
	t.Run("SynchronousSet", func(t *testing.T) {
		h := async.NewFunc(func(rc async.ResultChannel[string]) *async.PreparedTask {
			return rc.Set("hello")
		})
		if v, err := h.Await(); v != "hello" || err != nil {
			t.FailNow()
		}
	})
	t.Run("AutoDrop", func(t *testing.T) {
		// A producer that returns without writing its channel drops it.
		h := async.NewFunc(func(rc async.ResultChannel[int]) *async.PreparedTask {
			return nil
		})
		if _, err := h.Await(); !errors.Is(err, async.ErrCanceled) {
			t.FailNow()
		}
	})
	t.Run("PanicBecomesError", func(t *testing.T) {
		h := async.NewFunc(func(rc async.ResultChannel[int]) *async.PreparedTask {
			panic("kaboom")
		})
		_, err := h.Await()
		if err == nil || errors.Is(err, async.ErrCanceled) {
			t.Fatal("expected the panic as an error, got", err)
		}
	})
	t.Run("AsynchronousSet", func(t *testing.T) {
		var rc async.ResultChannel[int]
		h := async.NewFunc(func(c async.ResultChannel[int]) *async.PreparedTask {
			rc = c.Park()
			return nil
		})
		done := make(chan async.Unit)
		pt := h.AttachCallback(func(h *async.Handle[int]) {
			if v, err := h.TryValue(); v != 7 || err != nil {
				t.Error("bad resolution:", v, err)
			}
			close(done)
		})
		pt.Resume()
		rc.Set(7).Resume()
		<-done
	})
}

func TestHandleSingleConsumer(t *testing.T) {
	h := async.NewValue(1)
	if _, err := h.Await(); err != nil {
		t.FailNow()
	}
	defer func() {
		if recover() == nil {
			t.Fatal("second attach did not panic")
		}
	}()
	h.Await()
}

func TestHandleCopyValue(t *testing.T) {
	t.Run("Value", func(t *testing.T) {
		h := async.NewValue(3)
		c := h.CopyValue()
		if v, err := c.TryValue(); v != 3 || err != nil {
			t.FailNow()
		}
	})
	t.Run("Error", func(t *testing.T) {
		myErr := errors.New("boom")
		c := async.NewError[int](myErr).CopyValue()
		if _, err := c.TryValue(); !errors.Is(err, myErr) {
			t.FailNow()
		}
	})
	t.Run("NotReadyCopiesEmpty", func(t *testing.T) {
		h := async.NewFunc(func(rc async.ResultChannel[int]) *async.PreparedTask {
			return nil
		})
		c := h.CopyValue()
		if _, err := c.TryValue(); !errors.Is(err, async.ErrCanceled) {
			t.FailNow()
		}
	})
}

func TestResultChannelDiscipline(t *testing.T) {
	t.Run("DoubleUsePanics", func(t *testing.T) {
		h := async.NewFunc(func(rc async.ResultChannel[int]) *async.PreparedTask {
			rc.Set(1).Resume()
			defer func() {
				if recover() == nil {
					t.Error("second write did not panic")
				}
			}()
			rc.Set(2)
			return nil
		})
		if v, err := h.Await(); v != 1 || err != nil {
			t.FailNow()
		}
	})
	t.Run("AttachCallbackOnReady", func(t *testing.T) {
		ran := false
		pt := async.NewValue(9).AttachCallback(func(h *async.Handle[int]) {
			ran = true
		})
		if pt != nil || !ran {
			t.FailNow()
		}
	})
}

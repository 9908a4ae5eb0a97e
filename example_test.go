package async_test

import (
	"fmt"

	async "github.com/b97tsk/asynchandle"
)

func ExampleSpawn() {
	h := async.Spawn(func() (int, error) {
		return 6 * 7, nil
	})

	v, err := h.Await()
	fmt.Println(v, err)
	// Output:
	// 42 <nil>
}

func ExampleMutex() {
	var m async.Mutex

	own, _ := m.TryLock()

	// Three contenders queue up while the mutex is held; ownership passes
	// through them in order on release.
	for i := 1; i <= 3; i++ {
		m.Lock().AttachCallback(func(h *async.Handle[async.Ownership]) {
			own, _ := h.TryValue()
			fmt.Println(i)
			own.Unlock()
		}).Resume()
	}

	own.Unlock()
	// Output:
	// 1
	// 2
	// 3
}

func ExampleGenerator() {
	g := async.NewGenerator(func(y *async.Yield[int, async.Unit]) error {
		a, b := 1, 1
		for {
			if _, err := y.Send(a); err != nil {
				return err
			}
			a, b = b, a+b
		}
	})

	for i := 0; i < 5; i++ {
		v, _ := g.Invoke(async.Unit{}).Await()
		fmt.Println(v)
	}
	g.Stop()
	// Output:
	// 1
	// 1
	// 2
	// 3
	// 5
}

func ExampleBoundedQueue() {
	q := async.NewBoundedQueue[string](2)

	q.Push("a").Await()
	q.Push("b").Await()

	for i := 0; i < 2; i++ {
		v, _ := q.Pop().Await()
		fmt.Println(v)
	}
	// Output:
	// a
	// b
}

// Package vango provides the reactive core used by the resource, suspense
// and hydration packages.
//
// Reactive state lives in a Runtime. Each Runtime owns a single-threaded
// loop on which effect re-runs and async settlements are applied, and a
// root Owner from which component scopes are derived.
//
// Every read and write takes an explicit *Cx handle. The handle carries
// the runtime, the current owner, the listener that a read subscribes, the
// innermost suspense boundary, and the batch in progress:
//
//	rt := NewRuntime(ClientSide)
//	defer rt.Close()
//
//	count := NewSignal(0)
//	rt.Do(func(cx *Cx) {
//	    CreateEffect(cx, func(cx *Cx) Cleanup {
//	        fmt.Println("count:", count.Get(cx))
//	        return nil
//	    })
//	})
//	count.Set(nil, 5) // the effect re-runs on the loop
//
// # Batching
//
// Writes inside Cx.Batch are collected and each affected listener is
// notified once when the outermost batch completes:
//
//	cx.Batch(func() {
//	    first.Set(cx, "Ada")
//	    last.Set(cx, "Lovelace")
//	})
//
// # Thread Safety
//
// Signals may be written from any goroutine. A write never runs listener
// code: it marks listeners dirty and they re-run as tasks on the runtime
// loop, so notifications are serialized through a single writer.
package vango

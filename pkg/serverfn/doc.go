// Package serverfn implements typed server functions: named operations
// that execute on the server and are callable from either side.
//
// A function is defined once and shared by both sides:
//
//	var Kill = serverfn.Define(reg, "kill", func(ctx context.Context, _ struct{}) (AsciiDeath, error) {
//	    return AsciiDeath{Killer: "€a", After: true}, nil
//	})
//
// On the server Kill.Invoke runs the implementation in-process. On the
// client the same definition is bound to a Transport:
//
//	kill := Kill.Remote(serverfn.NewHTTPTransport("http://localhost:3000", "/_fn"))
//	death, err := kill.Invoke(ctx, struct{}{})
//
// Every failure is an *Error whose Kind says where it happened:
// KindSerialize (arguments could not be encoded), KindTransport (no
// response frame arrived), KindDeserialize (the response frame or payload
// is malformed) or KindExecution (the implementation failed, panicked or
// timed out, or the server could not decode the arguments). A malformed
// response is never reported as a transport failure.
//
// Arguments and results cross the wire through a codec.Codec, which
// rejects invalid UTF-8 instead of substituting U+FFFD.
package serverfn

// Package resource loads asynchronous, server-originated values into the
// reactive tree.
//
// A Resource pairs a reactive source with a loader. Whenever the source
// value changes a new generation starts: the state becomes Pending, the
// loader runs in its own goroutine, and its result is applied on the
// runtime loop only if the generation is still current. Results of
// superseded generations, and of disposed resources, are dropped.
//
//	user := resource.New(cx,
//	    func(cx *vango.Cx) int { return userID.Get(cx) },
//	    func(ctx context.Context, id int) (*User, error) { return getUser.Invoke(ctx, id) },
//	)
//
//	return user.Match(cx,
//	    resource.OnLoading[*User](func() *vdom.VNode { return vdom.Text("…") }),
//	    resource.OnErrored[*User](func(err error) *vdom.VNode { return vdom.Text(err.Error()) }),
//	    resource.OnResolved(func(u *User) *vdom.VNode { return UserCard(u) }),
//	)
//
// New is a hook: called again during a later render of the same owner it
// returns the resource created the first time.
//
// On a server runtime every applied settlement is recorded in the
// runtime's hydrate.Collector. On a client runtime with a
// hydrate.Synchronizer the resource first looks for the server's envelope
// at its creation index and, if present, adopts it instead of loading.
package resource

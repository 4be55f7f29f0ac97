package timeutil

import "time"

var nowFunc = time.Now

// Now returns the current time in UTC. Store timestamps (review dates,
// progress updates, backup names) all go through here so tests can pin them.
func Now() time.Time {
	return nowFunc().UTC()
}

// SetNowFunc overrides the function used by Now. Passing nil resets it.
func SetNowFunc(fn func() time.Time) {
	if fn == nil {
		nowFunc = time.Now
		return
	}
	nowFunc = fn
}

// Freeze pins Now to t and returns a function restoring the real clock.
func Freeze(t time.Time) func() {
	SetNowFunc(func() time.Time { return t })
	return func() { SetNowFunc(nil) }
}

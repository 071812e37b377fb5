package tracker

// NavigationObserver stands in for the page's History so that programmatic
// navigation reaches the tracker the same way browser-driven navigation does.
// Calls are forwarded unchanged; the callback runs only after the original
// call returns.
type NavigationObserver struct {
	env      Environment
	original History
	onChange func()
}

func ObserveHistory(env Environment, onChange func()) *NavigationObserver {
	o := &NavigationObserver{
		env:      env,
		original: env.History(),
		onChange: onChange,
	}
	env.SetHistory(o)
	return o
}

func (o *NavigationObserver) PushState(state any, title, url string) {
	o.original.PushState(state, title, url)
	o.onChange()
}

func (o *NavigationObserver) ReplaceState(state any, title, url string) {
	o.original.ReplaceState(state, title, url)
	o.onChange()
}

// Restore reinstalls the original History unless someone wrapped it again since.
func (o *NavigationObserver) Restore() {
	if current, ok := o.env.History().(*NavigationObserver); ok && current == o {
		o.env.SetHistory(o.original)
	}
}

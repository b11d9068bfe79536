package combo

import "sync"

// Lazy defers building a parser until it is first run and reuses the result
// afterwards. It lets grammar rules refer to each other, or to themselves,
// before they are defined.
func Lazy[S Source](thunk func() *Parser[S]) *Parser[S] {
	if thunk == nil {
		configPanic("lazy", "thunk must be a valid function")
	}
	var (
		once  sync.Once
		built *Parser[S]
	)
	return New[S](func(s State[S]) State[S] {
		once.Do(func() {
			built = thunk()
		})
		mustParser("lazy", built)
		return built.Run(s)
	})
}

// LazyUncached is Lazy without memoization: thunk runs on every invocation.
func LazyUncached[S Source](thunk func() *Parser[S]) *Parser[S] {
	if thunk == nil {
		configPanic("lazy", "thunk must be a valid function")
	}
	return New[S](func(s State[S]) State[S] {
		p := thunk()
		mustParser("lazy", p)
		return p.Run(s)
	})
}

package combo

import "iter"

// Procedure drives a contextual parser. Each call to yield runs the given
// parser from the current position and returns its result; the value the
// procedure returns becomes the result of the whole parser.
//
// If a yielded parser fails, yield does not return: the procedure is unwound
// (its deferred calls run) and the contextual parser fails with that
// parser's failure.
type Procedure[S Source] func(yield func(*Parser[S]) any) any

// abortSignal unwinds a procedure whose parse has already failed.
type abortSignal struct{}

// Contextual builds a parser out of imperative-looking code that picks each
// next parser based on earlier results.
//
// The procedure runs as a coroutine. Every yielded parser is bound with Chain
// to a step that resumes the procedure with its result, so the whole parse is
// a trampoline of binds starting from Success(nil).
//
//	p := Contextual(func(yield func(*Parser[string]) any) any {
//		kind := yield(keyword).(string)
//		if kind == "int" {
//			return yield(number)
//		}
//		return yield(word)
//	})
func Contextual[S Source](proc Procedure[S]) *Parser[S] {
	if proc == nil {
		configPanic("contextual", "procedure must be a valid function")
	}
	return New[S](func(s State[S]) State[S] {
		d := startDriver(proc)
		defer d.stop()
		return Success[S](nil).Chain(func(any, int, S) *Parser[S] {
			return d.step(nil)
		}).Run(s)
	})
}

type driver[S Source] struct {
	next  func() (*Parser[S], bool)
	stop  func()
	inbox any
	final any
}

func startDriver[S Source](proc Procedure[S]) *driver[S] {
	d := &driver[S]{}
	seq := func(emit func(*Parser[S]) bool) {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(abortSignal); !ok {
					panic(r)
				}
			}
		}()
		d.final = proc(func(p *Parser[S]) any {
			if !emit(p) {
				panic(abortSignal{})
			}
			return d.inbox
		})
	}
	d.next, d.stop = iter.Pull[*Parser[S]](seq)
	return d
}

// step resumes the procedure with the previous result and returns the parser
// to run next.
func (d *driver[S]) step(prev any) *Parser[S] {
	d.inbox = prev
	p, ok := d.next()
	if !ok {
		return Success[S](d.final)
	}
	if p == nil {
		configPanic("contextual", "yielded values must always be parsers")
	}
	return p.Chain(func(v any, _ int, _ S) *Parser[S] {
		return d.step(v)
	})
}

package table

import "github.com/embedlua/luatable/value"

// Iterate walks every (key, value) pair in t by repeatedly calling
// Next, invoking fn for each. It stops early if fn returns false.
// Because Next is stateless, Iterate itself holds no cursor beyond
// the last key returned — a concurrent Set on an existing key is
// safe to observe mid-walk, but inserting new keys during iteration
// has unspecified effect on which of them are visited, same as Next.
func Iterate(t *Table, fn func(key, val value.Value) bool) {
	key := value.Nil
	for {
		n := t.Next(key)
		switch n.Kind {
		case NextFound:
			if !fn(n.Key, n.Value) {
				return
			}
			key = n.Key
		case NextLast, NextNotFound:
			return
		}
	}
}

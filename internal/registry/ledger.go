package registry

import "fmt"

// Token identifies one keyed registration. Keyed distinguishes the absent
// key from an explicit key, so Token{Key: ""} and Token{Key: "", Keyed: true}
// are different registrations.
type Token struct {
	Kind  Kind
	Key   string
	Keyed bool
}

// String returns "kind[key]" or "kind[<default>]".
func (t Token) String() string {
	if !t.Keyed {
		return fmt.Sprintf("%s[<default>]", t.Kind)
	}
	return fmt.Sprintf("%s[%q]", t.Kind, t.Key)
}

// Ledger records completed keyed registrations.
// It is not safe for concurrent use.
type Ledger struct {
	done  map[Token]struct{}
	order []Token
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{done: make(map[Token]struct{})}
}

// Has reports whether t has been recorded.
func (l *Ledger) Has(t Token) bool {
	_, ok := l.done[t]
	return ok
}

// Record marks t as registered. Recording twice is a no-op.
func (l *Ledger) Record(t Token) {
	if l.Has(t) {
		return
	}
	l.done[t] = struct{}{}
	l.order = append(l.order, t)
}

// Len returns the number of recorded tokens.
func (l *Ledger) Len() int { return len(l.order) }

// Tokens returns the recorded tokens in recording order.
func (l *Ledger) Tokens() []Token {
	return append([]Token(nil), l.order...)
}

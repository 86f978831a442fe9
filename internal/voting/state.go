// Package voting holds the per (post, user) vote state machine.
package voting

import "fmt"

// State is a user's current stance on a post.
type State int

const (
	None State = 0
	Up   State = 1
	Down State = -1
)

func (s State) String() string {
	switch s {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "none"
	}
}

// Value is the ledger value stored for the state. None has no row.
func (s State) Value() int {
	return int(s)
}

// StateFromValue converts a stored ledger value back into a state.
func StateFromValue(v int) (State, error) {
	switch v {
	case 1:
		return Up, nil
	case -1:
		return Down, nil
	default:
		return None, fmt.Errorf("invalid stored vote value %d", v)
	}
}

// Op is the ledger write a transition requires.
type Op int

const (
	OpInsert Op = iota
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	default:
		return "delete"
	}
}

// Transition is one row of the vote table.
type Transition struct {
	From  State
	Next  State
	Delta int
	Op    Op
}

// Name identifies the transition for metrics, e.g. "none->up".
func (t Transition) Name() string {
	return t.From.String() + "->" + t.Next.String()
}

type key struct {
	from      State
	requested int
}

var table = map[key]Transition{
	{None, 1}:  {From: None, Next: Up, Delta: 1, Op: OpInsert},
	{None, -1}: {From: None, Next: Down, Delta: -1, Op: OpInsert},
	{Up, 1}:    {From: Up, Next: None, Delta: -1, Op: OpDelete},
	{Up, -1}:   {From: Up, Next: Down, Delta: -2, Op: OpUpdate},
	{Down, -1}: {From: Down, Next: None, Delta: 1, Op: OpDelete},
	{Down, 1}:  {From: Down, Next: Up, Delta: 2, Op: OpUpdate},
}

// ValidValue reports whether v is an acceptable requested vote.
func ValidValue(v int) bool {
	return v == 1 || v == -1
}

// Next looks up the transition for the current state and requested value.
func Next(current State, requested int) (Transition, bool) {
	t, ok := table[key{current, requested}]
	return t, ok
}

// Transitions returns every row of the table.
func Transitions() []Transition {
	out := make([]Transition, 0, len(table))
	for _, from := range []State{None, Up, Down} {
		for _, v := range []int{1, -1} {
			out = append(out, table[key{from, v}])
		}
	}
	return out
}

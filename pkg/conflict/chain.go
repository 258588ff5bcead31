package conflict

import (
	"github.com/protounify/protounify/pkg/contract"
)

// Chain dispatches a merged contract to the single handler that owns it.
// Handler predicates are mutually exclusive over reachable contracts, so
// selection order carries no semantics; matching zero or more than one
// handler is an internal invariant violation surfaced as a ChainError.
type Chain struct {
	handlers []Handler
}

// NewChain builds the full dispatch chain.
func NewChain() *Chain {
	return &Chain{handlers: []Handler{
		mapFieldHandler{},
		repeatedSingleHandler{},
		repeatedConflictHandler{},
		primitiveMessageHandler{},
		scalarHandler{handler: HandlerIntEnum, conflict: contract.ConflictIntEnum},
		scalarHandler{handler: HandlerEnumEnum, conflict: contract.ConflictEnumEnum},
		scalarHandler{handler: HandlerStringBytes, conflict: contract.ConflictStringBytes},
		scalarHandler{handler: HandlerWidening, conflict: contract.ConflictWidening},
		scalarHandler{handler: HandlerFloatDouble, conflict: contract.ConflictFloatDouble},
		scalarHandler{handler: HandlerSignedUnsigned, conflict: contract.ConflictSignedUnsigned},
		defaultHandler{},
	}}
}

// Handlers returns the chain's handlers in registration order.
func (c *Chain) Handlers() []Handler {
	return append([]Handler(nil), c.handlers...)
}

// Select finds the single handler matching the contract.
func (c *Chain) Select(fieldRef string, mc *contract.MergedFieldContract) (Handler, error) {
	var (
		selected Handler
		matched  []HandlerType
	)
	for _, h := range c.handlers {
		if h.Matches(mc) {
			selected = h
			matched = append(matched, h.Type())
		}
	}
	if len(matched) != 1 {
		return nil, &ChainError{Field: fieldRef, Matched: matched, Contract: mc.Describe()}
	}
	return selected, nil
}

// Resolve selects the handler for the field's contract and resolves the
// field's unified type and converter.
func (c *Chain) Resolve(f *Field) (*Resolution, error) {
	h, err := c.Select(f.ref(), f.Contract)
	if err != nil {
		return nil, err
	}
	return h.Resolve(f)
}

package entity

import "context"

// ParentRef identifies one ancestor in the navigational chain at call
// time, e.g. {Entity: "bots", ID: "b1"}.
type ParentRef struct {
	Entity string
	ID     string
}

// ParentContext is the ordered ancestry of entities at the current
// navigational position, outermost first.
type ParentContext []ParentRef

// Last returns the innermost parent.
func (pc ParentContext) Last() (ParentRef, bool) {
	if len(pc) == 0 {
		return ParentRef{}, false
	}
	return pc[len(pc)-1], true
}

// Entities returns the entity names of the chain in order.
func (pc ParentContext) Entities() []string {
	if len(pc) == 0 {
		return nil
	}
	out := make([]string, len(pc))
	for i, ref := range pc {
		out[i] = ref.Entity
	}
	return out
}

type parentsContextKey struct{}

// WithParents attaches a parent chain to the context. Manager operations
// use it when no explicit chain is passed, so call sites several layers
// removed from navigation state can still route correctly.
func WithParents(ctx context.Context, parents ...ParentRef) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(parents) == 0 {
		return ctx
	}
	return context.WithValue(ctx, parentsContextKey{}, ParentContext(parents))
}

// ParentsFromContext returns the chain attached with WithParents, if any.
func ParentsFromContext(ctx context.Context) ParentContext {
	if ctx == nil {
		return nil
	}
	if pc, ok := ctx.Value(parentsContextKey{}).(ParentContext); ok {
		return append(ParentContext(nil), pc...)
	}
	return nil
}

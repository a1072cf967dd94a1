package core

import "context"

// PutState sets m[key] to value, or deletes key when keep is false, and
// registers the reverse step on the transaction carried by ctx.
func PutState[K comparable, V any](ctx context.Context, m map[K]V, key K, value V, keep bool) error {
	prev, existed := m[key]
	if err := OnRevert(ctx, func() {
		if existed {
			m[key] = prev
			return
		}
		delete(m, key)
	}); err != nil {
		return err
	}
	if keep {
		m[key] = value
		return nil
	}
	delete(m, key)
	return nil
}

// SetState assigns value to target and registers the reverse step.
func SetState[T any](ctx context.Context, target *T, value T) error {
	prev := *target
	if err := OnRevert(ctx, func() {
		*target = prev
	}); err != nil {
		return err
	}
	*target = value
	return nil
}

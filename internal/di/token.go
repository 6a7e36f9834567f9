package di

import "fmt"

// Token is a typed handle for a service in the container.
type Token[T any] struct {
	name string
}

// NewToken creates a token for a service of type T.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// Name returns the registration key.
func (t Token[T]) Name() string {
	return t.name
}

// RegisterToken registers a lazy factory for the token.
func RegisterToken[T any](c Container, token Token[T], factory func(ServiceRegistry) T) {
	c.RegisterFactory(token.name, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// GetToken resolves the token's service with its static type.
func GetToken[T any](sr ServiceRegistry, token Token[T]) T {
	v := sr.Get(token.name)
	svc, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has type %T", token.name, v))
	}
	return svc
}

// LookupToken resolves the token's service if it has been registered.
func LookupToken[T any](sr ServiceRegistry, token Token[T]) (T, bool) {
	if !sr.Has(token.name) {
		var zero T
		return zero, false
	}
	return GetToken(sr, token), true
}

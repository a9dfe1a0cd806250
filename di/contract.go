package di

import (
	"fmt"
	"reflect"
)

// Unnamed is the name of the default registration of a contract.
const Unnamed = ""

// Contract identifies the abstract type a consumer depends on.
type Contract struct {
	t reflect.Type
}

// ContractOf returns the contract identity of T. Interface types are allowed.
func ContractOf[T any]() Contract {
	return Contract{t: reflect.TypeOf((*T)(nil)).Elem()}
}

// ContractFor wraps an existing reflect.Type.
func ContractFor(t reflect.Type) Contract {
	return Contract{t: t}
}

// Type returns the underlying reflect.Type.
func (c Contract) Type() reflect.Type { return c.t }

// IsZero reports whether c identifies no type.
func (c Contract) IsZero() bool { return c.t == nil }

func (c Contract) String() string {
	if c.t == nil {
		return "<nil>"
	}
	return c.t.String()
}

// Key is the registration table key: a contract plus an optional name.
type Key struct {
	Contract Contract
	Name     string
}

// KeyOf returns the key of T under name.
func KeyOf[T any](name string) Key {
	return Key{Contract: ContractOf[T](), Name: name}
}

func (k Key) String() string {
	if k.Name == Unnamed {
		return k.Contract.String()
	}
	return fmt.Sprintf("%s[%s]", k.Contract, k.Name)
}

package domain

import "fmt"

// Namespace identifies one of the fixed settings scopes on a device
type Namespace string

const (
	NamespaceSystem Namespace = "system"
	NamespaceSecure Namespace = "secure"
	NamespaceGlobal Namespace = "global"
)

// namespaces is the dump order. It is the complete set.
var namespaces = [...]Namespace{NamespaceSystem, NamespaceSecure, NamespaceGlobal}

// Namespaces returns every namespace in dump order
func Namespaces() []Namespace {
	out := make([]Namespace, len(namespaces))
	copy(out, namespaces[:])
	return out
}

// ParseNamespace converts a string to a Namespace, rejecting unknown names
func ParseNamespace(s string) (Namespace, error) {
	ns := Namespace(s)
	if !ns.Valid() {
		return "", fmt.Errorf("unknown namespace %q", s)
	}
	return ns, nil
}

// Valid reports whether n is one of the fixed namespaces
func (n Namespace) Valid() bool {
	switch n {
	case NamespaceSystem, NamespaceSecure, NamespaceGlobal:
		return true
	default:
		return false
	}
}

func (n Namespace) String() string {
	return string(n)
}

package accessor

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formbind/pkg/control"
)

var (
	// ErrNoAccessor reports that no accessor could be selected.
	ErrNoAccessor = errors.New("accessor: no value accessor for form control")
	// ErrMultipleAccessors reports an ambiguous binding.
	ErrMultipleAccessors = errors.New("accessor: more than one value accessor matches form control")
)

// Kind is the selection bucket of an accessor.
type Kind int

const (
	KindCustom Kind = iota
	KindBuiltin
	KindDefault
)

func (k Kind) String() string {
	switch k {
	case KindDefault:
		return "default"
	case KindBuiltin:
		return "builtin"
	default:
		return "custom"
	}
}

// Classify places a into its bucket by concrete type. Only the accessors
// defined in this package are default or built-in; a type embedding one of
// them is custom.
func Classify(a ValueAccessor) Kind {
	if _, ok := a.(*DefaultAccessor); ok {
		return KindDefault
	}
	if _, ok := BuiltinKindOf(a); ok {
		return KindBuiltin
	}
	return KindCustom
}

// BuiltinKindOf returns the built-in kind of a, if any.
func BuiltinKindOf(a ValueAccessor) (BuiltinKind, bool) {
	switch a.(type) {
	case *CheckboxAccessor:
		return BuiltinCheckbox, true
	case *NumberAccessor:
		return BuiltinNumber, true
	case *RangeAccessor:
		return BuiltinRange, true
	case *SelectAccessor:
		return BuiltinSelect, true
	case *SelectMultipleAccessor:
		return BuiltinSelectMultiple, true
	case *RadioAccessor:
		return BuiltinRadio, true
	}
	return "", false
}

// Select picks one accessor for the control at path. Custom wins over
// built-in, built-in over default. Two custom or two built-in accessors are
// ambiguous.
func Select(path []string, accessors []ValueAccessor) (ValueAccessor, error) {
	if len(accessors) == 0 {
		return nil, control.NewPathError(path, ErrNoAccessor)
	}

	var def, builtin, custom ValueAccessor
	for _, a := range accessors {
		if a == nil {
			continue
		}
		switch Classify(a) {
		case KindDefault:
			def = a
		case KindBuiltin:
			if builtin != nil {
				return nil, control.NewPathError(path, fmt.Errorf("%w: built-in", ErrMultipleAccessors))
			}
			builtin = a
		default:
			if custom != nil {
				return nil, control.NewPathError(path, fmt.Errorf("%w: custom", ErrMultipleAccessors))
			}
			custom = a
		}
	}

	switch {
	case custom != nil:
		return custom, nil
	case builtin != nil:
		return builtin, nil
	case def != nil:
		return def, nil
	}
	return nil, control.NewPathError(path, ErrNoAccessor)
}

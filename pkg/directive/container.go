package directive

// ContainerKind identifies what sort of container a parent is.
type ContainerKind int

const (
	// KindForm is the template-driven root form.
	KindForm ContainerKind = iota
	// KindModelGroup is a template-driven nested group.
	KindModelGroup
	// KindGroupName is a reactive nested group.
	KindGroupName
	// KindReactiveForm is a reactive root form.
	KindReactiveForm
)

// Container is a parent that directives register with.
type Container interface {
	Path() []string
	FormDirective() *Form
	ContainerKind() ContainerKind
}

// checkParent validates that parent can host a template-driven binding.
func checkParent(parent Container) error {
	switch parent.ContainerKind() {
	case KindForm, KindModelGroup:
		return nil
	case KindGroupName:
		return ErrFormGroupName
	default:
		return ErrStructuralBinding
	}
}

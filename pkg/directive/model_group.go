package directive

import (
	"github.com/goliatone/go-formbind/pkg/binding"
	"github.com/goliatone/go-formbind/pkg/control"
)

// ModelGroup nests Models under a name inside a Form or another ModelGroup.
type ModelGroup struct {
	parent     Container
	name       string
	validators []control.Validator
	async      []control.AsyncValidator
}

var (
	_ Container                  = (*ModelGroup)(nil)
	_ binding.ContainerDirective = (*ModelGroup)(nil)
)

// NewModelGroup creates a group named name under parent.
func NewModelGroup(parent Container, name string, validators []control.Validator, async []control.AsyncValidator) *ModelGroup {
	return &ModelGroup{parent: parent, name: name, validators: validators, async: async}
}

// Name returns the group name.
func (g *ModelGroup) Name() string { return g.name }

// Path returns the names from the root to this group.
func (g *ModelGroup) Path() []string {
	if g.parent == nil {
		return []string{g.name}
	}
	return control.ControlPath(g.name, g.parent.Path())
}

// FormDirective returns the root form.
func (g *ModelGroup) FormDirective() *Form {
	if g.parent == nil {
		return nil
	}
	return g.parent.FormDirective()
}

// ContainerKind implements Container.
func (g *ModelGroup) ContainerKind() ContainerKind { return KindModelGroup }

// Validators returns the raw group validators.
func (g *ModelGroup) Validators() []control.Validator { return g.validators }

// AsyncValidators returns the raw group async validators.
func (g *ModelGroup) AsyncValidators() []control.AsyncValidator { return g.async }

// Control returns the registered group, once the registration has run.
func (g *ModelGroup) Control() *control.FormGroup {
	if form := g.FormDirective(); form != nil {
		return form.GetModelGroup(g)
	}
	return nil
}

// OnInit validates the parent and schedules registration.
func (g *ModelGroup) OnInit() error {
	if g.parent == nil {
		return ErrStructuralBinding
	}
	if err := checkParent(g.parent); err != nil {
		return err
	}
	form := g.FormDirective()
	if form == nil {
		return ErrStructuralBinding
	}
	form.AddModelGroup(g)
	return nil
}

// OnDestroy schedules removal of the group.
func (g *ModelGroup) OnDestroy() {
	if form := g.FormDirective(); form != nil {
		form.RemoveModelGroup(g)
	}
}

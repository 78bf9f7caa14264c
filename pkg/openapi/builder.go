package openapi

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbind/pkg/model"
)

// Builder converts OpenAPI operations into form models.
type Builder interface {
	Build(op Operation) (model.FormModel, error)
}

// BuilderOption configures the builder.
type BuilderOption func(*builder)

// WithLabeler overrides the default label generation function.
func WithLabeler(labeler func(string) string) BuilderOption {
	return func(b *builder) {
		if labeler != nil {
			b.labeler = labeler
		}
	}
}

// WithDecorators appends decorators run after the model is built.
func WithDecorators(decorators ...model.Decorator) BuilderOption {
	return func(b *builder) {
		b.decorators = append(b.decorators, decorators...)
	}
}

type builder struct {
	labeler    func(string) string
	decorators []model.Decorator
}

// NewBuilder returns a Builder using DefaultLabeler unless overridden.
func NewBuilder(options ...BuilderOption) Builder {
	b := &builder{labeler: DefaultLabeler}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *builder) Build(op Operation) (model.FormModel, error) {
	if op.ID == "" {
		return model.FormModel{}, errors.New("model builder: operation id is required")
	}
	if err := op.RequestBody.Validate(); err != nil {
		return model.FormModel{}, fmt.Errorf("model builder: %s: %w", op.ID, err)
	}

	form := model.FormModel{
		OperationID: op.ID,
		Endpoint:    op.Path,
		Method:      strings.ToUpper(op.Method),
		Summary:     op.Summary,
		Description: op.Description,
		Metadata:    make(map[string]string),
	}
	maps.Copy(form.Metadata, model.ExtensionMetadata(ExtensionNamespace, op.Extensions))
	maps.Copy(form.Metadata, model.ExtensionMetadata(ExtensionNamespace, op.RequestBody.Extensions))
	if len(form.Metadata) == 0 {
		form.Metadata = nil
	}

	fields, err := b.fieldsFromSchema("", op.RequestBody, true)
	if err != nil {
		return model.FormModel{}, err
	}
	form.Fields = fields

	for _, decorator := range b.decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(&form); err != nil {
			return model.FormModel{}, fmt.Errorf("model builder: decorate %s: %w", op.ID, err)
		}
	}
	return form, nil
}

func (b *builder) fieldsFromSchema(name string, schema Schema, required bool) ([]model.Field, error) {
	if schema.Ref != "" && schema.Type == "" && len(schema.Properties) == 0 {
		field := b.baseField(name, model.FieldTypeObject, schema, required)
		field.Metadata = withMetadata(field.Metadata, "$ref", schema.Ref)
		return []model.Field{field}, nil
	}

	switch schema.Type {
	case "object", "":
		return b.fieldsFromObject(name, schema, required)
	case "array":
		field, err := b.fieldFromArray(name, schema, required)
		if err != nil {
			return nil, err
		}
		return []model.Field{field}, nil
	default:
		return []model.Field{b.fieldFromPrimitive(name, schema, required)}, nil
	}
}

func (b *builder) fieldsFromObject(name string, schema Schema, required bool) ([]model.Field, error) {
	var fields []model.Field
	for _, propName := range slices.Sorted(maps.Keys(schema.Properties)) {
		converted, err := b.fieldsFromSchema(propName, schema.Properties[propName], slices.Contains(schema.Required, propName))
		if err != nil {
			return nil, err
		}
		fields = append(fields, converted...)
	}

	if name == "" {
		return fields, nil
	}
	parent := b.baseField(name, model.FieldTypeObject, schema, required)
	parent.Nested = fields
	return []model.Field{parent}, nil
}

func (b *builder) fieldFromArray(name string, schema Schema, required bool) (model.Field, error) {
	if schema.Items == nil {
		return model.Field{}, fmt.Errorf("model builder: array field %q missing items", name)
	}
	nested, err := b.fieldsFromSchema(name+"Item", *schema.Items, false)
	if err != nil {
		return model.Field{}, err
	}

	field := b.baseField(name, model.FieldTypeArray, schema, required)
	if len(nested) > 0 {
		item := nested[0]
		field.Items = &item
	}
	return field, nil
}

func (b *builder) fieldFromPrimitive(name string, schema Schema, required bool) model.Field {
	field := b.baseField(name, mapType(schema.Type), schema, required)
	field.Format = schema.Format
	if schema.Format == "email" {
		field.Validations = append(field.Validations, model.ValidationRule{Kind: model.ValidationRuleEmail})
	}
	return field
}

func (b *builder) baseField(name string, kind model.FieldType, schema Schema, required bool) model.Field {
	field := model.Field{
		Name:        name,
		Type:        kind,
		Label:       b.labeler(name),
		Description: schema.Description,
		Required:    required,
		Default:     schema.Default,
	}
	if len(schema.Enum) > 0 {
		field.Enum = append([]any(nil), schema.Enum...)
	}
	applyValidations(&field, schema)
	field.Metadata = model.ExtensionMetadata(ExtensionNamespace, schema.Extensions)
	if label := field.Metadata[model.MetadataLabel]; label != "" {
		field.Label = label
	}
	return field
}

func withMetadata(metadata map[string]string, key, value string) map[string]string {
	if metadata == nil {
		metadata = make(map[string]string, 1)
	}
	metadata[key] = value
	return metadata
}

func mapType(schemaType string) model.FieldType {
	switch schemaType {
	case "integer":
		return model.FieldTypeInteger
	case "number":
		return model.FieldTypeNumber
	case "boolean":
		return model.FieldTypeBoolean
	case "array":
		return model.FieldTypeArray
	case "object":
		return model.FieldTypeObject
	default:
		return model.FieldTypeString
	}
}

func applyValidations(field *model.Field, schema Schema) {
	if schema.Minimum != nil {
		field.Validations = append(field.Validations, boundRule(model.ValidationRuleMin, *schema.Minimum, schema.ExclusiveMinimum))
	}
	if schema.Maximum != nil {
		field.Validations = append(field.Validations, boundRule(model.ValidationRuleMax, *schema.Maximum, schema.ExclusiveMaximum))
	}
	if schema.MinLength != nil {
		field.Validations = append(field.Validations, model.ValidationRule{
			Kind:   model.ValidationRuleMinLength,
			Params: map[string]string{"value": strconv.Itoa(*schema.MinLength)},
		})
	}
	if schema.MaxLength != nil {
		field.Validations = append(field.Validations, model.ValidationRule{
			Kind:   model.ValidationRuleMaxLength,
			Params: map[string]string{"value": strconv.Itoa(*schema.MaxLength)},
		})
	}
	if schema.Pattern != "" {
		field.Validations = append(field.Validations, model.ValidationRule{
			Kind:   model.ValidationRulePattern,
			Params: map[string]string{"pattern": schema.Pattern},
		})
	}
}

func boundRule(kind string, bound float64, exclusive bool) model.ValidationRule {
	params := map[string]string{"value": strconv.FormatFloat(bound, 'f', -1, 64)}
	if exclusive {
		params["exclusive"] = "true"
	}
	return model.ValidationRule{Kind: kind, Params: params}
}

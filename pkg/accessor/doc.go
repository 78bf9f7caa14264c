// Package accessor adapts view surfaces to a uniform value contract. A
// ValueAccessor writes model values into a view element through a Renderer
// and reports view edits and blurs through single-slot callbacks.
//
// Accessors fall into three buckets used by Select: the default text
// accessor, the closed set of built-in accessors defined in this package
// (checkbox, number, range, select, select-multiple, radio) and custom
// accessors, which is anything else.
package accessor

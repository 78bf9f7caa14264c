package model

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var extensionKeys = []string{
	MetadataHelp,
	MetadataDisabled,
	MetadataLabel,
	MetadataPlaceholder,
	MetadataSanitize,
	MetadataStandalone,
	MetadataUpdateOn,
	MetadataWidget,
}

// AllowedExtensionKeys lists the metadata keys fields may carry through the
// vendor extension namespace, sorted.
func AllowedExtensionKeys() []string {
	keys := slices.Clone(extensionKeys)
	slices.Sort(keys)
	return keys
}

// IsAllowedExtensionKey reports whether key is understood by the binder.
func IsAllowedExtensionKey(key string) bool {
	return slices.Contains(extensionKeys, key)
}

// ExtensionMetadata flattens a vendor extension namespace into field metadata.
// Both the nested form ({namespace: {key: value}}) and the prefixed form
// (namespace-key: value) are accepted; prefixed keys win on conflict.
func ExtensionMetadata(namespace string, ext map[string]any) map[string]string {
	if len(ext) == 0 || namespace == "" {
		return nil
	}

	result := make(map[string]string)
	if nested, ok := ext[namespace].(map[string]any); ok {
		for key, value := range nested {
			if str, ok := CanonicalizeExtensionValue(value); ok {
				result[key] = str
			}
		}
	}
	prefix := namespace + "-"
	for key, value := range ext {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if str, ok := CanonicalizeExtensionValue(value); ok {
			result[strings.TrimPrefix(key, prefix)] = str
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// CanonicalizeExtensionValue renders scalar extension values as strings.
// Empty strings, nil, maps and slices are rejected.
func CanonicalizeExtensionValue(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case fmt.Stringer:
		s := v.String()
		return s, s != ""
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case map[string]any, []any:
		return "", false
	default:
		return fmt.Sprint(v), true
	}
}

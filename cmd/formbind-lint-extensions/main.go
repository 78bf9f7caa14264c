package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbind/pkg/control"
	"github.com/goliatone/go-formbind/pkg/model"
	"github.com/goliatone/go-formbind/pkg/openapi"
)

type violation struct {
	file     string
	location string
	message  string
}

var booleanKeys = map[string]bool{
	model.MetadataDisabled:   true,
	model.MetadataSanitize:   true,
	model.MetadataStandalone: true,
}

func main() {
	flag.Usage = func() {
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [paths...]\n", filepath.Base(os.Args[0])); err != nil {
			panic(err)
		}
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "\nLint OpenAPI documents for unsupported %s extensions.\n", openapi.ExtensionNamespace); err != nil {
			panic(err)
		}
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	parser := openapi.NewParser(
		openapi.WithPartialDocuments(true),
		openapi.WithReferenceResolution(false),
	)

	var violations []violation
	for _, path := range paths {
		linted, err := lintFile(ctx, parser, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lint %s: %v\n", path, err)
			os.Exit(1)
		}
		violations = append(violations, linted...)
	}

	if len(violations) > 0 {
		sort.Slice(violations, func(i, j int) bool {
			if violations[i].file == violations[j].file {
				if violations[i].location == violations[j].location {
					return violations[i].message < violations[j].message
				}
				return violations[i].location < violations[j].location
			}
			return violations[i].file < violations[j].file
		})
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "%s: %s -> %s\n", v.file, v.location, v.message)
		}
		os.Exit(1)
	}
}

func lintFile(ctx context.Context, parser openapi.Parser, path string) ([]violation, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	doc, err := openapi.NewDocument(openapi.SourceFromFile(path), raw)
	if err != nil {
		return nil, fmt.Errorf("construct document: %w", err)
	}

	operations, err := parser.Operations(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("parse operations: %w", err)
	}

	ids := make([]string, 0, len(operations))
	for id := range operations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var result []violation
	for _, id := range ids {
		op := operations[id]
		base := []string{"operation", id}
		result = append(result, lintExtensions(path, base, op.Extensions)...)
		result = append(result, lintSchema(path, appendPath(base, "requestBody"), op.RequestBody)...)
	}
	return result, nil
}

func lintSchema(file string, path []string, schema openapi.Schema) []violation {
	result := lintExtensions(file, path, schema.Extensions)

	keys := make([]string, 0, len(schema.Properties))
	for key := range schema.Properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		result = append(result, lintSchema(file, appendPath(path, "properties."+key), schema.Properties[key])...)
	}

	if schema.Items != nil {
		result = append(result, lintSchema(file, appendPath(path, "items"), *schema.Items)...)
	}
	return result
}

func lintExtensions(file string, path []string, extensions map[string]any) []violation {
	if len(extensions) == 0 {
		return nil
	}

	namespace := openapi.ExtensionNamespace
	sortedKeys := make([]string, 0, len(extensions))
	for key := range extensions {
		sortedKeys = append(sortedKeys, key)
	}
	sort.Strings(sortedKeys)

	var result []violation
	for _, key := range sortedKeys {
		value := extensions[key]
		switch {
		case key == namespace:
			nested, ok := value.(map[string]any)
			if !ok {
				result = append(result, violation{
					file:     file,
					location: formatLocation(path),
					message:  fmt.Sprintf("%s must be an object, found %T", namespace, value),
				})
				continue
			}
			nestedKeys := make([]string, 0, len(nested))
			for nestedKey := range nested {
				nestedKeys = append(nestedKeys, nestedKey)
			}
			sort.Strings(nestedKeys)
			for _, nestedKey := range nestedKeys {
				result = append(result, validateHint(file, appendPath(path, nestedKey), nestedKey, nested[nestedKey])...)
			}
		case strings.HasPrefix(key, namespace+"-"):
			result = append(result, validateHint(file, path, strings.TrimPrefix(key, namespace+"-"), value)...)
		}
	}
	return result
}

func validateHint(file string, path []string, key string, value any) []violation {
	fail := func(format string, args ...any) []violation {
		return []violation{{file: file, location: formatLocation(path), message: fmt.Sprintf(format, args...)}}
	}

	if key == "" {
		return fail("extension key is empty")
	}
	if !model.IsAllowedExtensionKey(key) {
		return fail("unsupported extension key %q (supported: %s)", key, strings.Join(model.AllowedExtensionKeys(), ", "))
	}

	str, ok := model.CanonicalizeExtensionValue(value)
	if !ok {
		return fail("value for %q must be a string, number, or boolean (got %T)", key, value)
	}
	switch {
	case key == model.MetadataUpdateOn:
		if _, err := control.ParseUpdateOn(str); err != nil {
			return fail("%v", err)
		}
	case booleanKeys[key]:
		if _, err := strconv.ParseBool(str); err != nil {
			return fail("value for %q must be a boolean (got %q)", key, str)
		}
	}
	return nil
}

func appendPath(path []string, segment string) []string {
	next := append([]string(nil), path...)
	return append(next, segment)
}

func formatLocation(path []string) string {
	return strings.Join(path, " > ")
}

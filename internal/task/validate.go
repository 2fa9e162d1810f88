package task

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaURL identifies the embedded task file schema.
const SchemaURL = "https://github.com/nibzard/tasktracker/tasks.schema.json"

//go:embed tasks.schema.json
var schemaJSON string

// Schema returns the JSON Schema the current task file shape conforms to.
func Schema() string {
	return schemaJSON
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // dotted path to the offending value, e.g. "[2].status"
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid  bool
	Errors []error
}

func (r *ValidationResult) add(err error) {
	r.Valid = false
	r.Errors = append(r.Errors, err)
}

// ValidateFile checks a raw task file body against the embedded schema.
// It returns an error only when the body is not JSON at all or the schema
// fails to compile; schema violations are reported in the result.
func ValidateFile(data []byte) (*ValidationResult, error) {
	result := &ValidationResult{Valid: true}
	if len(bytes.TrimSpace(data)) == 0 {
		return result, nil
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(SchemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	schema, err := compiler.Compile(SchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse task file: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			result.add(err)
			return result, nil
		}
		collectSchemaErrors(result, ve)
	}
	return result, nil
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		result.add(&ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

// CheckCollection reports problems the loader tolerates: missing or
// duplicate ids, statuses outside the accepted set, empty descriptions and
// timestamps in an unknown layout.
func CheckCollection(tasks []Task) *ValidationResult {
	result := &ValidationResult{Valid: true}
	first := make(map[ID]int, len(tasks))
	for i, t := range tasks {
		path := fmt.Sprintf("[%d]", i)
		if t.ID.IsZero() {
			result.add(&ValidationError{
				Path: path + ".id",
				Err:  fmt.Errorf("missing id"),
			})
		} else if j, dup := first[t.ID]; dup {
			result.add(&ValidationError{
				Path: path + ".id",
				Err:  fmt.Errorf("duplicate id %s (first at [%d]); later copies are hidden from listings", t.ID, j),
			})
		} else {
			first[t.ID] = i
		}
		if !t.Status.Valid() {
			result.add(&ValidationError{
				Path: path + ".status",
				Err:  fmt.Errorf("invalid status %q, must be one of: %s", t.Status, StatusList()),
			})
		}
		if strings.TrimSpace(t.Description) == "" {
			result.add(&ValidationError{
				Path: path + ".description",
				Err:  fmt.Errorf("empty description"),
			})
		}
		if t.RawCreatedAt != "" {
			result.add(&ValidationError{
				Path: path + ".createdAt",
				Err:  fmt.Errorf("unrecognized timestamp %q", t.RawCreatedAt),
			})
		}
		if t.RawUpdatedAt != "" {
			result.add(&ValidationError{
				Path: path + ".updatedAt",
				Err:  fmt.Errorf("unrecognized timestamp %q", t.RawUpdatedAt),
			})
		}
	}
	return result
}

// jsonPointerToPath converts "/2/status" into "[2].status".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

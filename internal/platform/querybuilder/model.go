package querybuilder

import (
	"errors"
	"reflect"
	"strings"
)

// InsertModel builds a single-row INSERT from the db tags of a struct.
// suffix is appended verbatim, e.g. an ON CONFLICT clause.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	if strings.TrimSpace(table) == "" {
		return "", nil, errors.New("insert needs a table")
	}
	columns, values, err := taggedFields(model)
	if err != nil {
		return "", nil, err
	}

	var (
		sql strings.Builder
		b   binder
	)
	sql.WriteString("INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES (")
	for i, value := range values {
		if i > 0 {
			sql.WriteString(", ")
		}
		sql.WriteString(b.bind(value))
	}
	sql.WriteString(")")
	if suffix = strings.TrimSpace(suffix); suffix != "" {
		sql.WriteString(" " + suffix)
	}
	return sql.String(), b.values, nil
}

func taggedFields(model any) ([]string, []any, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil, errors.New("insert model is nil")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, nil, errors.New("insert model must be a struct")
	}

	var (
		columns []string
		values  []any
	)
	for _, field := range reflect.VisibleFields(v.Type()) {
		if !field.IsExported() || field.Anonymous {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		if name = strings.TrimSpace(name); name == "" || name == "-" {
			continue
		}
		columns = append(columns, name)
		values = append(values, v.FieldByIndex(field.Index).Interface())
	}
	if len(columns) == 0 {
		return nil, nil, errors.New("insert model has no db columns")
	}
	return columns, values, nil
}

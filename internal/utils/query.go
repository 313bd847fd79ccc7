package utils

import "strings"

// taskColumns maps the JSON field names accepted in sort and field-selection
// parameters onto task table columns. Unknown names are dropped.
var taskColumns = map[string]string{
	"id":          "id",
	"code":        "code",
	"title":       "title",
	"description": "description",
	"status":      "status",
	"priority":    "priority",
	"dueDate":     "due_date",
	"due_date":    "due_date",
	"labels":      "labels",
	"createdAt":   "created_at",
	"created_at":  "created_at",
	"updatedAt":   "updated_at",
	"updated_at":  "updated_at",
}

// requiredColumns must always be selected so relation loading and
// authorization checks keep working under partial field selection.
var requiredColumns = []string{"id", "creator_id", "client_id"}

// ParseSortSpec converts a comma-joined sort specification such as
// "-createdAt,priority" into ORDER BY clauses. A leading '-' selects
// descending order. The default is newest-created first.
func ParseSortSpec(spec string) []string {
	if strings.TrimSpace(spec) == "" {
		return []string{"tasks.created_at DESC"}
	}

	var clauses []string
	for _, field := range strings.Split(spec, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		direction := "ASC"
		if strings.HasPrefix(field, "-") {
			direction = "DESC"
			field = field[1:]
		}

		column, ok := taskColumns[field]
		if !ok {
			continue
		}
		clauses = append(clauses, "tasks."+column+" "+direction)
	}

	if len(clauses) == 0 {
		return []string{"tasks.created_at DESC"}
	}
	return clauses
}

// ParseFieldSelection converts a comma-joined field list into selected
// columns. An empty list selects everything. Identifier and reference
// columns are always included.
func ParseFieldSelection(spec string) []string {
	if strings.TrimSpace(spec) == "" {
		return nil
	}

	selected := make(map[string]struct{})
	for _, field := range strings.Split(spec, ",") {
		field = strings.TrimSpace(field)
		if column, ok := taskColumns[field]; ok {
			selected[column] = struct{}{}
		}
	}

	if len(selected) == 0 {
		return nil
	}

	for _, column := range requiredColumns {
		selected[column] = struct{}{}
	}

	columns := make([]string, 0, len(selected))
	for column := range selected {
		columns = append(columns, column)
	}
	return columns
}

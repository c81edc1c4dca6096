package laravel

// RelationKind is the Eloquent relationship builder used by a relation method.
type RelationKind string

const (
	HasMany       RelationKind = "hasMany"
	BelongsTo     RelationKind = "belongsTo"
	HasOne        RelationKind = "hasOne"
	BelongsToMany RelationKind = "belongsToMany"
)

// RelationKinds lists the builders the scanner recognises, in matching order.
var RelationKinds = []RelationKind{HasMany, BelongsTo, HasOne, BelongsToMany}

// IsRelationKind reports whether name is one of the recognised builders.
func IsRelationKind(name string) bool {
	for _, k := range RelationKinds {
		if string(k) == name {
			return true
		}
	}
	return false
}

// ModelDescriptor describes one Eloquent model file found in app/Models.
type ModelDescriptor struct {
	Name      string     `json:"name"`
	TableName string     `json:"tableName"`
	Columns   []string   `json:"columns"`
	Relations []Relation `json:"relations"`
	Methods   []string   `json:"methods"`
}

// Relation is a relationship method declared on a model.
// TargetModel is kept verbatim from the first builder argument and may
// reference a model that is not part of the scan result.
type Relation struct {
	Method      string       `json:"method"`
	Kind        RelationKind `json:"type"`
	TargetModel string       `json:"model"`
}

// TableSchema maps table names to column names collected from migrations.
type TableSchema map[string][]string

// Record stores columns for table, replacing any earlier migration's entry.
func (s TableSchema) Record(table string, columns []string) {
	s[table] = columns
}

// Columns returns the columns of table, or an empty slice when unknown.
func (s TableSchema) Columns(table string) []string {
	if cols, ok := s[table]; ok {
		return cols
	}
	return []string{}
}

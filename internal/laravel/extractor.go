package laravel

import (
	"regexp"
	"strings"
)

// SourceModelExtractor turns the text of a migration or model file into
// scanner data. Implementations must not perform I/O.
type SourceModelExtractor interface {
	// ExtractTable finds a Schema::create call and the columns defined in the
	// same file. ok is false when the file creates no table.
	ExtractTable(content string) (table string, columns []string, ok bool)

	// ExtractModel builds a descriptor for the model called name. Columns are
	// left empty; the scanner fills them from the table schema.
	ExtractModel(name, content string) ModelDescriptor
}

var (
	createTableRe   = regexp.MustCompile(`Schema::create\(['"](.+?)['"]`)
	columnRe        = regexp.MustCompile(`\$table->\w+\(['"](\w+)['"]`)
	tableOverrideRe = regexp.MustCompile(`protected \$table = ['"](.+?)['"];`)
	relationRe      = regexp.MustCompile(`public function (\w+)\(\)(?:\s*:\s*[?\w\\]+)?\s*\{\s*return \$this->(hasMany|belongsTo|hasOne|belongsToMany)\(([^)]+)\)`)
	publicMethodRe  = regexp.MustCompile(`public function (\w+)\(`)

	quoteStripper = strings.NewReplacer(`'`, "", `"`, "")
)

const constructorName = "__construct"

// RegexExtractor matches PHP source text with regular expressions. It does
// not understand PHP: reformatted or multi-line calls can be missed.
type RegexExtractor struct{}

// NewRegexExtractor creates the default text-matching extractor
func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{}
}

// ExtractTable implements SourceModelExtractor
func (e *RegexExtractor) ExtractTable(content string) (string, []string, bool) {
	m := createTableRe.FindStringSubmatch(content)
	if m == nil {
		return "", nil, false
	}

	columns := []string{}
	for _, col := range columnRe.FindAllStringSubmatch(content, -1) {
		if col[1] != "" {
			columns = append(columns, col[1])
		}
	}

	return m[1], columns, true
}

// ExtractModel implements SourceModelExtractor
func (e *RegexExtractor) ExtractModel(name, content string) ModelDescriptor {
	model := ModelDescriptor{
		Name:      name,
		TableName: DefaultTableName(name),
		Columns:   []string{},
		Relations: []Relation{},
	}

	if m := tableOverrideRe.FindStringSubmatch(content); m != nil && m[1] != "" {
		model.TableName = m[1]
	}

	for _, m := range relationRe.FindAllStringSubmatch(content, -1) {
		model.Relations = append(model.Relations, Relation{
			Method:      m[1],
			Kind:        RelationKind(m[2]),
			TargetModel: RelationTarget(m[3]),
		})
	}

	var names []string
	for _, m := range publicMethodRe.FindAllStringSubmatch(content, -1) {
		names = append(names, m[1])
	}
	model.Methods = FilterMethods(names, model.Relations)

	return model
}

// DefaultTableName is Laravel's conventional table name, pluralised naively
// by appending "s". Irregular plurals are not handled.
func DefaultTableName(modelName string) string {
	return strings.ToLower(modelName) + "s"
}

// RelationTarget keeps the first builder argument (before any foreign key
// arguments) with quote characters removed.
func RelationTarget(args string) string {
	first, _, _ := strings.Cut(args, ",")
	return quoteStripper.Replace(strings.TrimSpace(first))
}

// FilterMethods drops magic methods, the constructor and relation methods,
// keeping source order.
func FilterMethods(names []string, relations []Relation) []string {
	skip := map[string]bool{constructorName: true}
	for _, r := range relations {
		skip[r.Method] = true
	}

	methods := []string{}
	for _, name := range names {
		if strings.HasPrefix(name, "__") || skip[name] {
			continue
		}
		methods = append(methods, name)
	}
	return methods
}

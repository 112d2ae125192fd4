package apidoc

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/net/http/httpguts"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vitalvas/automd/endpoint"
)

// LocationGroup holds the fields sent in one request location.
type LocationGroup struct {
	Location endpoint.Location
	Name     string
	Fields   []endpoint.Field
}

// ParameterSchema is the composite of all location groups of an endpoint.
// Groups are ordered by first appearance of their location; fields keep
// their declaration order within a group.
type ParameterSchema struct {
	Name   string
	Groups []LocationGroup
}

// Group returns the group for loc.
func (p *ParameterSchema) Group(loc endpoint.Location) (LocationGroup, bool) {
	for _, g := range p.Groups {
		if g.Location == loc {
			return g, true
		}
	}
	return LocationGroup{}, false
}

// Fields returns the fields of all groups, group by group.
func (p *ParameterSchema) Fields() []endpoint.Field {
	var fields []endpoint.Field
	for _, g := range p.Groups {
		fields = append(fields, g.Fields...)
	}
	return fields
}

// GroupFields partitions set by request location. A nil set yields a
// parameter schema without groups.
//
// Group components are named after the path, verb and location:
// "/status" GET query fields form "StatusGetQuerySchema" inside
// "StatusGetParameterSchema".
func GroupFields(set endpoint.FieldSet, path, verb string) (*ParameterSchema, error) {
	return groupFields(set, schemaPrefix(path, verb))
}

func groupFields(set endpoint.FieldSet, prefix string) (*ParameterSchema, error) {
	ps := &ParameterSchema{Name: prefix + "ParameterSchema"}

	if set == nil {
		return ps, nil
	}

	index := make(map[endpoint.Location]int)
	seen := make(map[string]struct{})

	for _, field := range set.Fields() {
		if err := checkField(field, seen); err != nil {
			return nil, &fieldError{field: field.Name, err: err}
		}

		loc := field.In()
		i, ok := index[loc]
		if !ok {
			i = len(ps.Groups)
			index[loc] = i
			ps.Groups = append(ps.Groups, LocationGroup{
				Location: loc,
				Name:     prefix + titleWords(string(loc)) + "Schema",
			})
		}
		ps.Groups[i].Fields = append(ps.Groups[i].Fields, field)
	}

	return ps, nil
}

func checkField(field endpoint.Field, seen map[string]struct{}) error {
	if field.Name == "" {
		return ErrInvalidFieldName
	}
	if !field.Location.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLocation, field.Location)
	}
	if _, dup := seen[field.Name]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateField, field.Name)
	}
	seen[field.Name] = struct{}{}

	if field.In() == endpoint.LocationHeader && !httpguts.ValidHeaderFieldName(field.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidHeaderName, field.Name)
	}
	return nil
}

// schemaPrefix returns the title cased path followed by the verb:
// ("/users/{id}", "GET") -> "UsersIdGet".
func schemaPrefix(path, verb string) string {
	return titleWords(path) + titleWords(verb)
}

// titleWords title cases every alphanumeric run of s and joins them.
func titleWords(s string) string {
	caser := cases.Title(language.Und)

	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var b strings.Builder
	for _, w := range words {
		b.WriteString(caser.String(w))
	}
	return b.String()
}

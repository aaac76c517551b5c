package analysis

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// Schema names the three columns a census needs under one naming convention.
type Schema struct {
	Name       string
	Occupation string
	Status     string
	State      string
}

func (s Schema) String() string {
	return fmt.Sprintf("%s{%s, %s, %s}", s.Name, s.Occupation, s.Status, s.State)
}

// DefaultSchemas lists the known column conventions in lookup order.
var DefaultSchemas = []Schema{
	{Name: "lca", Occupation: "LCA_CASE_SOC_NAME", Status: "STATUS", State: "LCA_CASE_WORKLOC1_STATE"},
	{Name: "soc", Occupation: "SOC_NAME", Status: "CASE_STATUS", State: "WORKSITE_STATE"},
}

// ResolveSchema returns the first schema whose columns all appear in header.
func ResolveSchema(header []string, candidates []Schema) (Schema, error) {
	cols := mapset.NewThreadUnsafeSet[string](header...)
	for _, s := range candidates {
		if cols.Contains(s.Occupation, s.Status, s.State) {
			return s, nil
		}
	}
	return Schema{}, &SchemaResolutionError{Tried: candidates, Header: header}
}

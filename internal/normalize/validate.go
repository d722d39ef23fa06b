package normalize

import (
	"fmt"

	clierrors "github.com/salmonumbrella/notion-normalize/internal/errors"
	"github.com/salmonumbrella/notion-normalize/internal/notion"
)

// Validate reports the first property that has no type.
// Normalize only calls it in strict mode; otherwise such properties become nil.
func Validate(pages []notion.Page) error {
	for i := range pages {
		if err := validateProperties(i, pages[i].Properties); err != nil {
			return err
		}
	}
	return nil
}

func validateProperties(index int, props *notion.Properties) error {
	if props == nil {
		return nil
	}
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Type == "" {
			return &clierrors.ValidationError{
				Field:   fmt.Sprintf("results[%d].properties[%q].type", index, pair.Key),
				Message: "property has no type",
			}
		}
	}
	return nil
}

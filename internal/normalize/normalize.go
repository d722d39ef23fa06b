// Package normalize flattens Notion page properties into plain values.
//
// Each property is reduced by Value according to its type, each property name is
// renamed by TransformKey, and Normalize assembles one ordered Record per page.
// All functions are pure and safe for concurrent use.
package normalize

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	clierrors "github.com/salmonumbrella/notion-normalize/internal/errors"
	"github.com/salmonumbrella/notion-normalize/internal/notion"
)

// Record is one normalized page: output key to plain value, in source order.
type Record = orderedmap.OrderedMap[string, interface{}]

// NewRecord returns an empty Record.
func NewRecord() *Record {
	return orderedmap.New[string, interface{}]()
}

// CollisionPolicy decides what happens when two property names of one page
// rename to the same output key.
type CollisionPolicy string

const (
	// CollisionLast keeps the later value at the position of the first key.
	CollisionLast CollisionPolicy = "last"
	// CollisionFirst keeps the first value and ignores later ones.
	CollisionFirst CollisionPolicy = "first"
	// CollisionError fails the normalization.
	CollisionError CollisionPolicy = "error"
)

// ParseCollisionPolicy converts a string to a CollisionPolicy.
// Empty string defaults to CollisionLast.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch CollisionPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case CollisionLast, "":
		return CollisionLast, nil
	case CollisionFirst:
		return CollisionFirst, nil
	case CollisionError:
		return CollisionError, nil
	default:
		return "", clierrors.NewUserError(
			fmt.Sprintf("invalid collision policy %q", s),
			"Use one of: last, first, error",
		)
	}
}

// Collision describes two property names that renamed to the same key.
type Collision struct {
	Page   int
	Key    string
	First  string
	Second string
}

// Config controls a normalization run. The zero value keeps raw names and
// resolves collisions with CollisionLast.
type Config struct {
	CamelCase bool
	Collision CollisionPolicy
	// Strict rejects properties that carry no type instead of mapping them to nil.
	Strict bool
	// OnCollision is called for every collision, whatever the policy.
	// NormalizeConcurrent may call it from several goroutines.
	OnCollision func(Collision)
}

// Normalize flattens every page, keeping page order.
// An empty input yields an empty, non-nil slice. The error is non-nil only in
// strict mode or with CollisionError.
func Normalize(pages []notion.Page, cfg Config) ([]*Record, error) {
	if cfg.Strict {
		if err := Validate(pages); err != nil {
			return nil, err
		}
	}

	out := make([]*Record, 0, len(pages))
	for i := range pages {
		rec, err := normalizePage(i, pages[i].Properties, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// NormalizeResponse flattens the results of a query response.
func NormalizeResponse(resp *notion.QueryResponse, cfg Config) ([]*Record, error) {
	if resp == nil {
		return []*Record{}, nil
	}
	return Normalize(resp.Results, cfg)
}

// NormalizeProperties flattens a single page's properties.
func NormalizeProperties(props *notion.Properties, cfg Config) (*Record, error) {
	if cfg.Strict {
		if err := validateProperties(0, props); err != nil {
			return nil, err
		}
	}
	return normalizePage(0, props, cfg)
}

func normalizePage(index int, props *notion.Properties, cfg Config) (*Record, error) {
	if props == nil {
		return NewRecord(), nil
	}

	rec := orderedmap.New[string, interface{}](props.Len())
	sources := make(map[string]string, props.Len())
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		key := TransformKey(pair.Key, cfg.CamelCase)
		value := Value(pair.Value)

		if first, seen := sources[key]; seen {
			c := Collision{Page: index, Key: key, First: first, Second: pair.Key}
			if cfg.OnCollision != nil {
				cfg.OnCollision(c)
			}
			switch cfg.Collision {
			case CollisionError:
				return nil, &clierrors.ValidationError{
					Field:   fmt.Sprintf("results[%d].properties", index),
					Message: fmt.Sprintf("properties %q and %q both map to key %q", c.First, c.Second, c.Key),
				}
			case CollisionFirst:
				continue
			}
		} else {
			sources[key] = pair.Key
		}

		rec.Set(key, value)
	}
	return rec, nil
}

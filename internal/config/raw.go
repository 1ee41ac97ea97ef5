package config

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// SetRawField patches a single dotted path in c.Raw, the JSON escape
// hatch for power-user overrides the typed struct doesn't model
// (SPEC_FULL.md §13). An empty c.Raw starts from "{}".
func (c *Config) SetRawField(path string, value any) error {
	base := c.Raw
	if base == "" {
		base = "{}"
	}
	patched, err := sjson.Set(base, path, value)
	if err != nil {
		return err
	}
	c.Raw = patched
	return nil
}

// RawField reads a single dotted path out of c.Raw.
func (c Config) RawField(path string) gjson.Result {
	return gjson.Get(c.Raw, path)
}

// PrintConfig renders the merged configuration as pretty-printed JSON
// for the CLI's --print-config debug flag: the typed fields plus the
// raw overlay, patched in field by field so Raw overrides never get
// silently dropped.
func (c Config) PrintConfig() string {
	doc := "{}"
	doc, _ = sjson.Set(doc, "source", c.Source)
	doc, _ = sjson.Set(doc, "query", c.Query)
	doc, _ = sjson.Set(doc, "case", c.Case)
	doc, _ = sjson.Set(doc, "preview", c.Preview)
	doc, _ = sjson.Set(doc, "multi", c.Multi)
	doc, _ = sjson.Set(doc, "height", c.Height)
	doc, _ = sjson.Set(doc, "min_height", c.MinHeight)
	doc, _ = sjson.Set(doc, "mouse", c.Mouse)
	doc, _ = sjson.Set(doc, "select_1", c.Select1)
	doc, _ = sjson.Set(doc, "watch", c.Watch)
	doc, _ = sjson.Set(doc, "log_level", c.LogLevel)
	doc, _ = sjson.Set(doc, "score_script", c.ScoreScript)
	for k, v := range c.Bindings {
		doc, _ = sjson.Set(doc, "bind."+k, v)
	}

	if c.Raw != "" {
		gjson.Parse(c.Raw).ForEach(func(key, value gjson.Result) bool {
			doc, _ = sjson.SetRaw(doc, "raw."+key.String(), value.Raw)
			return true
		})
	}

	return string(pretty.Pretty([]byte(doc)))
}

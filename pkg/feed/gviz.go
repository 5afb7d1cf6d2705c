package feed

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// stripGvizEnvelope removes the XSSI guard and the
// google.visualization.Query.setResponse(...) wrapper around a gviz payload,
// leaving bare JSON.
func stripGvizEnvelope(body []byte) ([]byte, error) {
	s := string(body)
	start := strings.Index(s, "(")
	end := strings.LastIndex(s, ")")
	if start < 0 || end <= start {
		// Some endpoints return bare JSON when tqx=out:json is explicit.
		if gjson.Valid(s) {
			return body, nil
		}
		return nil, errors.New("no gviz response envelope")
	}
	return []byte(s[start+1 : end]), nil
}

// ParseGviz decodes the JSON flavor of a published sheet into the same Table
// the CSV path produces. Cells prefer the formatted value ("f") over the raw
// one so dates keep the sheet's M/D/YYYY rendering.
func ParseGviz(body []byte) (*Table, error) {
	payload, err := stripGvizEnvelope(body)
	if err != nil {
		return nil, err
	}
	root := gjson.ParseBytes(payload)
	if root.Get("status").String() == "error" {
		msg := root.Get("errors.0.detailed_message").String()
		if msg == "" {
			msg = root.Get("errors.0.reason").String()
		}
		return nil, fmt.Errorf("gviz error response: %s", msg)
	}

	cols := root.Get("table.cols")
	if !cols.Exists() {
		return nil, errors.New("gviz payload has no table")
	}

	table := &Table{}
	cols.ForEach(func(_, col gjson.Result) bool {
		table.Header = append(table.Header, col.Get("label").String())
		return true
	})

	root.Get("table.rows").ForEach(func(_, row gjson.Result) bool {
		cells := make([]string, 0, len(table.Header))
		row.Get("c").ForEach(func(_, c gjson.Result) bool {
			if f := c.Get("f"); f.Exists() {
				cells = append(cells, f.String())
			} else {
				cells = append(cells, c.Get("v").String())
			}
			return true
		})
		if !blankRow(cells) {
			table.Rows = append(table.Rows, cells)
		}
		return true
	})
	return table, nil
}

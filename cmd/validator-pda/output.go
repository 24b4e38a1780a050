package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v2"
)

// result is anything a command prints: text lines by default, the JSON
// encoding of the value with --json.
type result interface {
	text() []string
}

type output struct {
	w    io.Writer
	json bool
	jq   *gojq.Code
}

func newOutput(c *cli.Context) (*output, error) {
	out := &output{
		w:    c.App.Writer,
		json: c.Bool("json"),
	}
	if filter := c.String("jq"); filter != "" {
		query, err := gojq.Parse(filter)
		if err != nil {
			return nil, fmt.Errorf("failed to parse jq filter %q: %w", filter, err)
		}
		out.jq, err = gojq.Compile(query)
		if err != nil {
			return nil, fmt.Errorf("failed to compile jq filter %q: %w", filter, err)
		}
		out.json = true
	}
	return out, nil
}

func (o *output) print(r result) error {
	if !o.json {
		for _, line := range r.text() {
			fmt.Fprintln(o.w, line)
		}
		return nil
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	if o.jq == nil {
		fmt.Fprintln(o.w, string(data))
		return nil
	}

	// Numbers stay exact; lamport amounts can exceed float64 precision.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var input any
	if err := dec.Decode(&input); err != nil {
		return fmt.Errorf("failed to decode output: %w", err)
	}

	iter := o.jq.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, isErr := v.(error); isErr {
			return fmt.Errorf("jq filter failed: %w", err)
		}
		// Strings print raw, like jq -r.
		if s, isString := v.(string); isString {
			fmt.Fprintln(o.w, s)
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode jq result: %w", err)
		}
		fmt.Fprintln(o.w, string(b))
	}
}

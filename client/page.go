package client

import (
	"bytes"
	"encoding/json"

	"equiprental/model"
)

// decodePage accepts both the paged envelope and a bare JSON array, so
// callers always get a Page.
func decodePage[T any](raw []byte) (model.Page[T], error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var rows []T
		if err := json.Unmarshal(raw, &rows); err != nil {
			return model.Page[T]{}, err
		}
		if rows == nil {
			rows = []T{}
		}
		return model.Page[T]{Results: rows, Count: int64(len(rows)), Page: 1, PageSize: len(rows)}, nil
	}
	var p model.Page[T]
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, err
	}
	if p.Results == nil {
		p.Results = []T{}
	}
	return p, nil
}

type pageDecoder interface {
	decode(raw []byte) error
}

type pageOut[T any] struct{ p *model.Page[T] }

func (o pageOut[T]) decode(raw []byte) error {
	p, err := decodePage[T](raw)
	if err != nil {
		return err
	}
	*o.p = p
	return nil
}

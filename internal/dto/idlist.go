package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// IDList accepts either a single JSON number/string or an array of them and
// always resolves to a list. Request payloads are normalized through this
// type once at the boundary so business logic only ever sees a slice.
type IDList []uint64

// UnmarshalJSON implements json.Unmarshaler.
func (l *IDList) UnmarshalJSON(data []byte) error {
	var arr []json.Number
	if err := json.Unmarshal(data, &arr); err == nil {
		return l.fromNumbers(arr)
	}

	var single json.Number
	if err := json.Unmarshal(data, &single); err == nil {
		return l.fromNumbers([]json.Number{single})
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		return l.fromNumbers([]json.Number{json.Number(str)})
	}

	var strs []string
	if err := json.Unmarshal(data, &strs); err == nil {
		numbers := make([]json.Number, len(strs))
		for i, s := range strs {
			numbers[i] = json.Number(s)
		}
		return l.fromNumbers(numbers)
	}

	return fmt.Errorf("id list: expected an id or an array of ids")
}

func (l *IDList) fromNumbers(numbers []json.Number) error {
	ids := make([]uint64, 0, len(numbers))
	for _, n := range numbers {
		id, err := strconv.ParseUint(n.String(), 10, 64)
		if err != nil {
			return fmt.Errorf("id list: invalid id %q", n.String())
		}
		ids = append(ids, id)
	}
	*l = ids
	return nil
}

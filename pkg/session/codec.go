package session

import (
	"errors"

	"github.com/vmihailenco/msgpack/v5"
)

// encodeValues packs attributes for the values column of SQL stores.
func encodeValues(v map[string]string) ([]byte, error) {
	if len(v) == 0 {
		return nil, nil
	}
	b, err := msgpack.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrEncodeValues, err)
	}
	return b, nil
}

func decodeValues(b []byte) (map[string]string, error) {
	v := make(map[string]string)
	if len(b) == 0 {
		return v, nil
	}
	if err := msgpack.Unmarshal(b, &v); err != nil {
		return nil, errors.Join(ErrDecodeValues, err)
	}
	return v, nil
}
